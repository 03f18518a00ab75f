package template

import (
	"fmt"
	"time"

	"github.com/craftlane/personalizer-backend/internal/geometry"
	"github.com/craftlane/personalizer-backend/pkg/errors"
)

// EditorState tracks where an authoring session is in its lifecycle.
type EditorState string

const (
	// StateNotStarted is before the merchant opens the designer.
	StateNotStarted EditorState = "not_started"
	// StateDesigning is the canvas view with no element selected.
	StateDesigning EditorState = "designing"
	// StateEditingElement is the property panel for one selected element.
	StateEditingElement EditorState = "editing_element"
)

// Editor is a single-merchant authoring session over one template. It is not
// safe for concurrent use; each session owns its editor.
type Editor struct {
	state    EditorState
	template Template
	selected string
	now      func() time.Time
	lastID   time.Time
}

// NewEditor creates an idle editor. The now function defaults to time.Now.
func NewEditor(now func() time.Time) *Editor {
	if now == nil {
		now = time.Now
	}
	return &Editor{
		state: StateNotStarted,
		now:   now,
	}
}

// State returns the current lifecycle state.
func (e *Editor) State() EditorState {
	return e.state
}

// SelectedID returns the id of the element being edited, or empty.
func (e *Editor) SelectedID() string {
	return e.selected
}

// StartDesign opens the designer over the given template. Starting from an
// empty template is how a brand new design begins.
func (e *Editor) StartDesign(tmpl Template) error {
	if e.state != StateNotStarted {
		return errors.New(errors.CodeStateConflict, "design already started")
	}
	if tmpl.CanvasWidth <= 0 {
		tmpl.CanvasWidth = DefaultCanvasWidth
	}
	if tmpl.CanvasHeight <= 0 {
		tmpl.CanvasHeight = DefaultCanvasHeight
	}
	e.template = tmpl
	e.state = StateDesigning
	return nil
}

// AddElement creates an element of the given type at the stock position and
// selects it for editing. Element ids encode the creation instant; when two
// elements land on the same millisecond the second is nudged forward so ids
// stay unique.
func (e *Editor) AddElement(elementType ElementType) (*Element, error) {
	if e.state == StateNotStarted {
		return nil, errors.New(errors.CodeStateConflict, "design not started")
	}
	if elementType == ElementImage {
		return nil, errors.New(errors.CodeValidation, "image elements are not supported yet")
	}
	if !elementType.Valid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown element type %q", elementType))
	}

	stamp := e.now()
	if !stamp.After(e.lastID) {
		stamp = e.lastID.Add(time.Millisecond)
	}
	e.lastID = stamp

	el := NewElement(elementType, stamp)
	e.template.Elements = append(e.template.Elements, el)
	e.selected = el.ID
	e.state = StateEditingElement
	return e.template.FindElement(el.ID), nil
}

// SelectElement opens the property panel for an existing element.
func (e *Editor) SelectElement(id string) error {
	if e.state == StateNotStarted {
		return errors.New(errors.CodeStateConflict, "design not started")
	}
	if e.template.FindElement(id) == nil {
		return errors.New(errors.CodeNotFound, fmt.Sprintf("element %s not found", id))
	}
	e.selected = id
	e.state = StateEditingElement
	return nil
}

// CloseElement returns to the canvas view, keeping all edits.
func (e *Editor) CloseElement() error {
	if e.state != StateEditingElement {
		return errors.New(errors.CodeStateConflict, "no element open")
	}
	e.selected = ""
	e.state = StateDesigning
	return nil
}

// UpdateGeometry applies one position or size edit to the selected element,
// clamped so the element stays on the canvas.
func (e *Editor) UpdateGeometry(field geometry.Field, value int) error {
	el, err := e.selectedElement()
	if err != nil {
		return err
	}
	rect := el.Rect()
	clamped := geometry.ClampEdit(field, value, rect, e.template.Canvas())
	switch field {
	case geometry.FieldX:
		rect.X = clamped
	case geometry.FieldY:
		rect.Y = clamped
	case geometry.FieldWidth:
		rect.Width = clamped
	case geometry.FieldHeight:
		rect.Height = clamped
	default:
		return errors.New(errors.CodeValidation, fmt.Sprintf("unknown geometry field %q", field))
	}
	el.SetRect(rect)
	return nil
}

// UpdateTextProperties replaces the selected element's text properties.
func (e *Editor) UpdateTextProperties(props TextProperties) error {
	el, err := e.selectedElement()
	if err != nil {
		return err
	}
	if !el.Type.IsText() {
		return errors.New(errors.CodeValidation, fmt.Sprintf("element %s does not carry text properties", el.ID))
	}
	props.Multiline = el.Type == ElementText
	el.Text = &props
	return nil
}

// UpdateUploadProperties replaces the selected element's upload properties.
func (e *Editor) UpdateUploadProperties(props UploadProperties) error {
	el, err := e.selectedElement()
	if err != nil {
		return err
	}
	if el.Type != ElementUpload {
		return errors.New(errors.CodeValidation, fmt.Sprintf("element %s is not an upload element", el.ID))
	}
	el.Upload = &props
	return nil
}

// DeleteElement removes an element. Deleting the open element closes its
// property panel.
func (e *Editor) DeleteElement(id string) error {
	if e.state == StateNotStarted {
		return errors.New(errors.CodeStateConflict, "design not started")
	}
	idx := -1
	for i := range e.template.Elements {
		if e.template.Elements[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.New(errors.CodeNotFound, fmt.Sprintf("element %s not found", id))
	}
	e.template.Elements = append(e.template.Elements[:idx], e.template.Elements[idx+1:]...)
	if e.selected == id {
		e.selected = ""
		e.state = StateDesigning
	}
	return nil
}

// SetViewSettings updates the canvas-level settings.
func (e *Editor) SetViewSettings(viewName string, background Background, livePreview bool, additionalCharge string) error {
	if e.state == StateNotStarted {
		return errors.New(errors.CodeStateConflict, "design not started")
	}
	e.template.ViewName = viewName
	e.template.ViewBackground = background
	e.template.LivePreview = livePreview
	e.template.AdditionalCharge = parseCharge([]byte(additionalCharge))
	return nil
}

// Snapshot returns a copy of the template as currently designed.
func (e *Editor) Snapshot() Template {
	tmpl := e.template
	tmpl.Elements = append([]Element(nil), e.template.Elements...)
	return tmpl
}

// SavePayload serializes the current design for persistence.
func (e *Editor) SavePayload() ([]byte, error) {
	if e.state == StateNotStarted {
		return nil, errors.New(errors.CodeStateConflict, "design not started")
	}
	return Encode(e.Snapshot())
}

func (e *Editor) selectedElement() (*Element, error) {
	if e.state != StateEditingElement {
		return nil, errors.New(errors.CodeStateConflict, "no element open")
	}
	el := e.template.FindElement(e.selected)
	if el == nil {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("element %s not found", e.selected))
	}
	return el, nil
}
