package template

import (
	"fmt"
	"time"
)

const (
	// DefaultCanvasWidth and DefaultCanvasHeight are used when a stored
	// template does not carry canvas dimensions.
	DefaultCanvasWidth  = 1000
	DefaultCanvasHeight = 1000

	defaultElementX = 300
	defaultElementY = 300
)

// NewTemplate returns an empty template with stock canvas settings.
func NewTemplate(viewName string) Template {
	return Template{
		ViewName:       viewName,
		CanvasWidth:    DefaultCanvasWidth,
		CanvasHeight:   DefaultCanvasHeight,
		ViewBackground: BackgroundProduct,
		LivePreview:    true,
	}
}

// NewElement builds an element of the given type at the stock position with
// type-specific dimensions and property defaults. The id encodes the type and
// creation instant; when two elements are created within the same millisecond
// the caller bumps the clock reading via nextID.
func NewElement(elementType ElementType, now time.Time) Element {
	el := Element{
		ID:   elementID(elementType, now),
		Type: elementType,
		X:    defaultElementX,
		Y:    defaultElementY,
	}

	switch elementType {
	case ElementText:
		el.Width = 200
		el.Height = 50
		el.Text = &TextProperties{
			Text:        "Sample Text",
			Placeholder: "Enter text...",
			FontSize:    18,
			FontFamily:  "Arial",
			Color:       "#000000",
			MaxLength:   50,
			Multiline:   true,
		}
	case ElementSingleText:
		el.Width = 200
		el.Height = 30
		el.Text = &TextProperties{
			Text:        "Single Line Text",
			Placeholder: "Enter single line text...",
			FontSize:    18,
			FontFamily:  "Arial",
			Color:       "#000000",
			MaxLength:   30,
		}
	case ElementUpload:
		el.Width = 150
		el.Height = 100
		el.Upload = &UploadProperties{
			MaxSize: 5,
		}
	default:
		el.Width = 150
		el.Height = 100
	}

	return el
}

func elementID(elementType ElementType, now time.Time) string {
	return fmt.Sprintf("%s_%d", elementType, now.UnixMilli())
}
