package template

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/craftlane/personalizer-backend/internal/geometry"
	"github.com/shopspring/decimal"
)

// wireTemplate is the stored JSON shape. Field names match what the admin
// editor persists, so older rows decode without migration.
type wireTemplate struct {
	ViewName         string          `json:"viewName"`
	CanvasWidth      *int            `json:"canvasWidth"`
	CanvasHeight     *int            `json:"canvasHeight"`
	ViewBackground   string          `json:"viewBackground"`
	LivePreview      *bool           `json:"livePreview"`
	AdditionalCharge json.RawMessage `json:"additionalCharge"`
	Elements         []wireElement   `json:"elements"`
	ProductID        string          `json:"productId"`
}

type wireElement struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	X          int             `json:"x"`
	Y          int             `json:"y"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Properties json.RawMessage `json:"properties"`
}

// Decode parses stored template JSON, fills defaults for absent fields, and
// repairs out-of-range element geometry. Structural problems (bad JSON, an
// unknown element type, a non-positive canvas) return an error; the callers
// decide whether that means 404 or "no template".
func Decode(raw []byte) (*Template, error) {
	var wire wireTemplate
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}

	tmpl := Template{
		ViewName:         wire.ViewName,
		CanvasWidth:      DefaultCanvasWidth,
		CanvasHeight:     DefaultCanvasHeight,
		ViewBackground:   BackgroundProduct,
		LivePreview:      true,
		AdditionalCharge: parseCharge(wire.AdditionalCharge),
		ProductID:        wire.ProductID,
	}
	if wire.CanvasWidth != nil {
		tmpl.CanvasWidth = *wire.CanvasWidth
	}
	if wire.CanvasHeight != nil {
		tmpl.CanvasHeight = *wire.CanvasHeight
	}
	if tmpl.CanvasWidth <= 0 || tmpl.CanvasHeight <= 0 {
		return nil, fmt.Errorf("decode template: canvas %dx%d is not positive", tmpl.CanvasWidth, tmpl.CanvasHeight)
	}
	if wire.ViewBackground != "" {
		tmpl.ViewBackground = Background(wire.ViewBackground)
	}
	if wire.LivePreview != nil {
		tmpl.LivePreview = *wire.LivePreview
	}

	canvas := tmpl.Canvas()
	for _, we := range wire.Elements {
		el, err := decodeElement(we, canvas)
		if err != nil {
			return nil, err
		}
		tmpl.Elements = append(tmpl.Elements, el)
	}

	return &tmpl, nil
}

func decodeElement(wire wireElement, canvas geometry.Canvas) (Element, error) {
	elementType := ElementType(wire.Type)
	if !elementType.Valid() {
		return Element{}, fmt.Errorf("decode template: unknown element type %q", wire.Type)
	}

	el := Element{
		ID:   wire.ID,
		Type: elementType,
	}
	el.SetRect(geometry.ClampRect(geometry.Rect{
		X:      wire.X,
		Y:      wire.Y,
		Width:  wire.Width,
		Height: wire.Height,
	}, canvas))

	switch {
	case elementType.IsText():
		props := TextProperties{
			FontSize:   18,
			FontFamily: "Arial",
			Color:      "#000000",
			Multiline:  elementType == ElementText,
		}
		if len(wire.Properties) > 0 {
			if err := json.Unmarshal(wire.Properties, &props); err != nil {
				return Element{}, fmt.Errorf("decode element %s properties: %w", wire.ID, err)
			}
		}
		el.Text = &props
	case elementType == ElementUpload:
		props := UploadProperties{MaxSize: 5}
		if len(wire.Properties) > 0 {
			if err := json.Unmarshal(wire.Properties, &props); err != nil {
				return Element{}, fmt.Errorf("decode element %s properties: %w", wire.ID, err)
			}
		}
		el.Upload = &props
	}

	return el, nil
}

// Encode serializes a template to its stored JSON shape.
func Encode(tmpl Template) ([]byte, error) {
	wire := wireTemplate{
		ViewName:         tmpl.ViewName,
		CanvasWidth:      &tmpl.CanvasWidth,
		CanvasHeight:     &tmpl.CanvasHeight,
		ViewBackground:   string(tmpl.ViewBackground),
		LivePreview:      &tmpl.LivePreview,
		AdditionalCharge: json.RawMessage(tmpl.AdditionalCharge.String()),
		ProductID:        tmpl.ProductID,
	}
	for _, el := range tmpl.Elements {
		we := wireElement{
			ID:     el.ID,
			Type:   string(el.Type),
			X:      el.X,
			Y:      el.Y,
			Width:  el.Width,
			Height: el.Height,
		}
		var props any
		switch {
		case el.Text != nil:
			props = el.Text
		case el.Upload != nil:
			props = el.Upload
		}
		if props != nil {
			raw, err := json.Marshal(props)
			if err != nil {
				return nil, fmt.Errorf("encode element %s properties: %w", el.ID, err)
			}
			we.Properties = raw
		}
		wire.Elements = append(wire.Elements, we)
	}
	return json.Marshal(wire)
}

// parseCharge coerces the stored additional charge to a decimal. The value
// may be a JSON number, a numeric string, or missing entirely; anything that
// does not parse, and anything negative, is treated as zero rather than
// failing the whole template.
func parseCharge(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	text := strings.TrimSpace(string(raw))
	text = strings.Trim(text, `"`)
	if text == "" || text == "null" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(text)
	if err != nil || value.IsNegative() {
		return decimal.Zero
	}
	return value
}

// CleanProductID strips the Shopify GID prefix so stored product ids are the
// bare numeric form.
func CleanProductID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "gid://shopify/Product/")
}
