// Package template implements the personalization template domain: the
// element model merchants design in the admin editor, the wire codec for the
// stored JSON, the editor state machine, and persistence for option sets.
package template

import (
	"github.com/craftlane/personalizer-backend/internal/geometry"
	"github.com/shopspring/decimal"
)

// Background identifies what the designer canvas renders behind elements.
type Background string

const (
	BackgroundBlank   Background = "blank"
	BackgroundProduct Background = "product"
	BackgroundUpload  Background = "upload"
)

// ElementType discriminates the element tagged union.
type ElementType string

const (
	ElementText       ElementType = "text"
	ElementSingleText ElementType = "singletext"
	ElementUpload     ElementType = "upload"
	// ElementImage is reserved for static image overlays. Creation is
	// rejected until rendering support lands.
	ElementImage ElementType = "image"
)

// Valid reports whether the type is one merchants can author today.
func (t ElementType) Valid() bool {
	switch t {
	case ElementText, ElementSingleText, ElementUpload:
		return true
	}
	return false
}

// IsText reports whether the element carries text properties.
func (t ElementType) IsText() bool {
	return t == ElementText || t == ElementSingleText
}

// TextProperties configures a text or singletext element.
type TextProperties struct {
	Text        string `json:"text"`
	Placeholder string `json:"placeholder"`
	FontSize    int    `json:"fontSize"`
	FontFamily  string `json:"fontFamily"`
	Color       string `json:"color"`
	Bold        bool   `json:"bold"`
	Italic      bool   `json:"italic"`
	Underline   bool   `json:"underline"`
	MaxLength   int    `json:"maxLength"`
	Required    bool   `json:"required"`
	Multiline   bool   `json:"multiline"`
}

// UploadProperties configures an upload element. MaxSize is in megabytes.
type UploadProperties struct {
	MaxSize  int  `json:"maxSize"`
	Required bool `json:"required"`
}

// Element is one positioned item on the design canvas. Exactly one of Text or
// Upload is set, matching Type.
type Element struct {
	ID     string
	Type   ElementType
	X      int
	Y      int
	Width  int
	Height int
	Text   *TextProperties
	Upload *UploadProperties
}

// Rect returns the element's canvas geometry.
func (e Element) Rect() geometry.Rect {
	return geometry.Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// SetRect writes geometry back onto the element.
func (e *Element) SetRect(rect geometry.Rect) {
	e.X = rect.X
	e.Y = rect.Y
	e.Width = rect.Width
	e.Height = rect.Height
}

// Template is a complete personalization design for one product view.
type Template struct {
	ViewName         string
	CanvasWidth      int
	CanvasHeight     int
	ViewBackground   Background
	LivePreview      bool
	AdditionalCharge decimal.Decimal
	Elements         []Element
	ProductID        string
}

// Canvas returns the template's design surface.
func (t Template) Canvas() geometry.Canvas {
	return geometry.Canvas{Width: t.CanvasWidth, Height: t.CanvasHeight}
}

// FindElement returns the element with the given id, or nil.
func (t *Template) FindElement(id string) *Element {
	for i := range t.Elements {
		if t.Elements[i].ID == id {
			return &t.Elements[i]
		}
	}
	return nil
}

// HasUploadElement reports whether any element accepts a customer upload.
func (t Template) HasUploadElement() bool {
	for _, el := range t.Elements {
		if el.Type == ElementUpload {
			return true
		}
	}
	return false
}

// TextElements returns the text-bearing elements in authoring order.
func (t Template) TextElements() []Element {
	var out []Element
	for _, el := range t.Elements {
		if el.Type.IsText() {
			out = append(out, el)
		}
	}
	return out
}
