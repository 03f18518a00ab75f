package storefront

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/craftlane/personalizer-backend/internal/geometry"
	"github.com/craftlane/personalizer-backend/internal/template"
)

// Input field identifiers accepted by the preview engine. TextField inputs
// additionally carry the element id they belong to.
const (
	InputName            = "name"
	InputTextField       = "textField"
	InputFontFamily      = "fontFamily"
	InputFontSize        = "fontSize"
	InputFontBold        = "fontBold"
	InputFontItalic      = "fontItalic"
	InputFontUnderline   = "fontUnderline"
	InputTextColor       = "textColor"
	InputBackgroundColor = "backgroundColor"
	InputTextAlign       = "textAlign"
	InputVerticalAlign   = "verticalAlign"
	InputLogoSize        = "logoSize"
	InputTextXPosition   = "textXPosition"
	InputTextYPosition   = "textYPosition"
	InputLogoXPosition   = "logoXPosition"
	InputLogoYPosition   = "logoYPosition"
)

// UploadKind names which customer asset an upload targets.
type UploadKind string

const (
	UploadLogo       UploadKind = "logo"
	UploadBackground UploadKind = "background"
)

// Input is one customer interaction with a personalization control.
type Input struct {
	Field     string `json:"field"`
	ElementID string `json:"element_id,omitempty"`
	Value     string `json:"value"`
}

// TextFieldValue is one secondary text field's current value, kept in element
// order so the joined display text is deterministic.
type TextFieldValue struct {
	ElementID string
	Value     string
}

// View is the rendered preview state after a recompute.
type View struct {
	DisplayText     string  `json:"display_text"`
	FontFamily      string  `json:"font_family"`
	FontSizePx      float64 `json:"font_size_px"`
	Bold            bool    `json:"bold"`
	Italic          bool    `json:"italic"`
	Underline       bool    `json:"underline"`
	TextColor       string  `json:"text_color"`
	BackgroundColor string  `json:"background_color"`
	TextAlign       string  `json:"text_align"`
	VerticalAlign   string  `json:"vertical_align"`
	TextLeftPct     float64 `json:"text_left_pct"`
	TextTopPct      float64 `json:"text_top_pct"`
	LogoLeftPct     float64 `json:"logo_left_pct"`
	LogoTopPct      float64 `json:"logo_top_pct"`
	LogoSizePct     float64 `json:"logo_size_pct"`
	LogoVisible     bool    `json:"logo_visible"`
	LogoURL         string  `json:"logo_url,omitempty"`
	BackgroundSet   bool    `json:"background_set"`
	BackgroundURL   string  `json:"background_url,omitempty"`
	CharCount       int     `json:"char_count"`
	CharLimit       int     `json:"char_limit"`
	PendingUploads  int     `json:"pending_uploads"`
}

// EngineOptions configures a preview engine.
type EngineOptions struct {
	DebounceWindow time.Duration
	Schedule       func(d time.Duration, fn func()) *time.Timer
	// Scale shrinks the rendered text, e.g. 0.4 for thumbnails. Zero means
	// full size.
	Scale       float64
	OnRecompute func(View)
}

// Engine holds live preview state for one customer session over one template.
// All methods are safe for concurrent use.
type Engine struct {
	mu             sync.Mutex
	tmpl           template.Template
	sub            Submission
	fields         []TextFieldValue
	pendingUploads int
	scale          float64
	view           View
	debouncer      *Debouncer
	onRecompute    func(View)
}

// NewEngine builds an engine over a decoded template with stock submission
// values and an initial placeholder view.
func NewEngine(tmpl template.Template, opts EngineOptions) *Engine {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	e := &Engine{
		tmpl:        tmpl,
		sub:         NewSubmission(),
		scale:       scale,
		debouncer:   NewDebouncer(opts.DebounceWindow, opts.Schedule),
		onRecompute: opts.OnRecompute,
	}
	for _, el := range tmpl.TextElements() {
		e.fields = append(e.fields, TextFieldValue{ElementID: el.ID})
	}
	e.mu.Lock()
	e.recomputeLocked()
	e.mu.Unlock()
	return e
}

// HandleInput applies a keystroke-style input. The recompute is debounced so
// a burst of keystrokes renders once with the final values.
func (e *Engine) HandleInput(in Input) {
	e.mu.Lock()
	e.applyLocked(in)
	e.mu.Unlock()
	e.debouncer.Trigger(func() {
		e.mu.Lock()
		e.recomputeLocked()
		e.mu.Unlock()
	})
}

// HandleChange applies a committed control change (select, color picker,
// slider release) and recomputes immediately.
func (e *Engine) HandleChange(in Input) {
	e.mu.Lock()
	e.applyLocked(in)
	e.recomputeLocked()
	e.mu.Unlock()
}

// Flush runs any debounced recompute now.
func (e *Engine) Flush() {
	e.debouncer.Flush()
}

// Stop cancels any queued recompute.
func (e *Engine) Stop() {
	e.debouncer.Stop()
}

// View returns the most recently computed preview.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// BeginUpload records that a file upload of the given kind has started. The
// preview keeps the previous asset until the upload completes.
func (e *Engine) BeginUpload(kind UploadKind) {
	e.mu.Lock()
	e.pendingUploads++
	e.recomputeLocked()
	e.mu.Unlock()
}

// CompleteUpload installs the uploaded asset as the custom logo or the
// background image.
func (e *Engine) CompleteUpload(kind UploadKind, url string) {
	e.mu.Lock()
	if e.pendingUploads > 0 {
		e.pendingUploads--
	}
	if kind == UploadBackground {
		e.sub.BackgroundImage = &url
	} else {
		e.sub.CustomLogo = &url
	}
	e.recomputeLocked()
	e.mu.Unlock()
}

// FailUpload abandons an in-flight upload, leaving the previous asset state
// untouched.
func (e *Engine) FailUpload(kind UploadKind) {
	e.mu.Lock()
	if e.pendingUploads > 0 {
		e.pendingUploads--
	}
	e.recomputeLocked()
	e.mu.Unlock()
}

// RemoveUpload clears the asset of the given kind.
func (e *Engine) RemoveUpload(kind UploadKind) {
	e.mu.Lock()
	if kind == UploadBackground {
		e.sub.BackgroundImage = nil
	} else {
		e.sub.CustomLogo = nil
	}
	e.recomputeLocked()
	e.mu.Unlock()
}

// Submission returns the current submission with text fields folded in.
func (e *Engine) Submission() Submission {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submissionLocked()
}

// Serialize renders the current submission as the cart property value.
func (e *Engine) Serialize(now time.Time) (string, error) {
	e.mu.Lock()
	sub := e.submissionLocked()
	e.mu.Unlock()
	return sub.Serialize(now)
}

// PendingUploads reports how many uploads are still in flight. A non-zero
// count at add-to-cart time means the serialized submission may lack the
// logo the customer expects.
func (e *Engine) PendingUploads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pendingUploads
}

func (e *Engine) applyLocked(in Input) {
	switch in.Field {
	case InputName:
		e.sub.Name = in.Value
	case InputTextField:
		for i := range e.fields {
			if e.fields[i].ElementID == in.ElementID {
				e.fields[i].Value = clampFieldValue(e.tmpl, in.ElementID, in.Value)
				return
			}
		}
	case InputFontFamily:
		e.sub.FontFamily = in.Value
	case InputFontSize:
		e.sub.FontSize = parseIntOr(in.Value, 18)
	case InputFontBold:
		e.sub.FontBold = parseBool(in.Value)
	case InputFontItalic:
		e.sub.FontItalic = parseBool(in.Value)
	case InputFontUnderline:
		e.sub.FontUnderline = parseBool(in.Value)
	case InputTextColor:
		e.sub.TextColor = in.Value
	case InputBackgroundColor:
		e.sub.BackgroundColor = in.Value
	case InputTextAlign:
		e.sub.TextAlign = in.Value
	case InputVerticalAlign:
		e.sub.VerticalAlign = in.Value
	case InputLogoSize:
		e.sub.LogoSize = parseIntOr(in.Value, 100)
	case InputTextXPosition:
		e.sub.TextXPosition = parseIntOr(in.Value, e.sub.TextXPosition)
	case InputTextYPosition:
		e.sub.TextYPosition = parseIntOr(in.Value, e.sub.TextYPosition)
	case InputLogoXPosition:
		e.sub.LogoXPosition = parseIntOr(in.Value, e.sub.LogoXPosition)
	case InputLogoYPosition:
		e.sub.LogoYPosition = parseIntOr(in.Value, e.sub.LogoYPosition)
	}
}

// recomputeLocked rebuilds the rendered view from current state: resolve the
// display text, derive the styling, map canvas positions to percentages, and
// publish to the listener.
func (e *Engine) recomputeLocked() {
	canvas := e.tmpl.Canvas()
	if canvas.Width <= 0 || canvas.Height <= 0 {
		canvas = geometry.Canvas{Width: template.DefaultCanvasWidth, Height: template.DefaultCanvasHeight}
	}

	view := View{
		DisplayText:     e.displayTextLocked(),
		FontFamily:      e.sub.FontFamily,
		FontSizePx:      geometry.ScaleFontSize(e.sub.FontSize, e.scale),
		Bold:            e.sub.FontBold,
		Italic:          e.sub.FontItalic,
		Underline:       e.sub.FontUnderline,
		TextColor:       e.sub.TextColor,
		BackgroundColor: e.sub.BackgroundColor,
		TextAlign:       e.sub.TextAlign,
		VerticalAlign:   e.sub.VerticalAlign,
		TextLeftPct:     percentOf(e.sub.TextXPosition, canvas.Width),
		TextTopPct:      percentOf(e.sub.TextYPosition, canvas.Height),
		LogoLeftPct:     percentOf(e.sub.LogoXPosition, canvas.Width),
		LogoTopPct:      percentOf(e.sub.LogoYPosition, canvas.Height),
		LogoSizePct:     float64(e.sub.LogoSize),
		LogoVisible:     e.sub.CustomLogo != nil,
		BackgroundSet:   e.sub.BackgroundImage != nil,
		CharCount:       len([]rune(e.sub.Name)),
		CharLimit:       e.charLimitLocked(),
		PendingUploads:  e.pendingUploads,
	}
	if e.sub.CustomLogo != nil {
		view.LogoURL = *e.sub.CustomLogo
	}
	if e.sub.BackgroundImage != nil {
		view.BackgroundURL = *e.sub.BackgroundImage
	}

	e.view = view
	if e.onRecompute != nil {
		e.onRecompute(view)
	}
}

// displayTextLocked resolves what the preview shows: the name wins, then the
// secondary text fields joined in element order, then the placeholder.
func (e *Engine) displayTextLocked() string {
	if name := strings.TrimSpace(e.sub.Name); name != "" {
		return name
	}
	var parts []string
	for _, field := range e.fields {
		if v := strings.TrimSpace(field.Value); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return PlaceholderDisplayText
}

func (e *Engine) charLimitLocked() int {
	for _, el := range e.tmpl.TextElements() {
		if el.Text != nil && el.Text.MaxLength > 0 {
			return el.Text.MaxLength
		}
	}
	return 0
}

func (e *Engine) submissionLocked() Submission {
	sub := e.sub
	sub.TextFields = make(map[string]string, len(e.fields))
	for _, field := range e.fields {
		sub.TextFields[field.ElementID] = field.Value
	}
	sub.DisplayText = e.displayTextLocked()
	return sub
}

func clampFieldValue(tmpl template.Template, elementID, value string) string {
	el := tmpl.FindElement(elementID)
	if el == nil || el.Text == nil || el.Text.MaxLength <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) > el.Text.MaxLength {
		return string(runes[:el.Text.MaxLength])
	}
	return value
}

func percentOf(value, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(value) / float64(total) * 100
}

func parseIntOr(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return parsed
}
