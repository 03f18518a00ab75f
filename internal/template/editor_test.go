package template

import (
	"fmt"
	"testing"
	"time"

	"github.com/craftlane/personalizer-backend/internal/geometry"
	"github.com/craftlane/personalizer-backend/pkg/errors"
)

func testClock(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func startedEditor(t *testing.T) *Editor {
	t.Helper()
	base := testClock(t)
	editor := NewEditor(func() time.Time { return base })
	if err := editor.StartDesign(NewTemplate("Front")); err != nil {
		t.Fatalf("start design: %v", err)
	}
	return editor
}

func TestEditorLifecycle(t *testing.T) {
	editor := NewEditor(nil)
	if editor.State() != StateNotStarted {
		t.Fatalf("expected not_started, got %s", editor.State())
	}

	if _, err := editor.AddElement(ElementText); err == nil {
		t.Fatalf("expected error adding element before start")
	}

	if err := editor.StartDesign(NewTemplate("Front")); err != nil {
		t.Fatalf("start design: %v", err)
	}
	if editor.State() != StateDesigning {
		t.Fatalf("expected designing, got %s", editor.State())
	}

	if err := editor.StartDesign(NewTemplate("Back")); err == nil {
		t.Fatalf("expected error starting twice")
	}
}

func TestEditorAddElementDefaults(t *testing.T) {
	tests := []struct {
		elementType ElementType
		width       int
		height      int
	}{
		{ElementText, 200, 50},
		{ElementSingleText, 200, 30},
		{ElementUpload, 150, 100},
	}

	for _, tc := range tests {
		t.Run(string(tc.elementType), func(t *testing.T) {
			editor := startedEditor(t)
			el, err := editor.AddElement(tc.elementType)
			if err != nil {
				t.Fatalf("add element: %v", err)
			}
			if el.X != 300 || el.Y != 300 {
				t.Fatalf("expected stock position (300,300), got (%d,%d)", el.X, el.Y)
			}
			if el.Width != tc.width || el.Height != tc.height {
				t.Fatalf("expected %dx%d, got %dx%d", tc.width, tc.height, el.Width, el.Height)
			}
			if el.Text != nil {
				if el.Text.FontSize != 18 || el.Text.FontFamily != "Arial" || el.Text.Color != "#000000" {
					t.Fatalf("unexpected font defaults: %+v", el.Text)
				}
			}
			if editor.State() != StateEditingElement {
				t.Fatalf("expected editing_element after add, got %s", editor.State())
			}
			if editor.SelectedID() != el.ID {
				t.Fatalf("expected new element selected")
			}
		})
	}
}

func TestEditorTextDefaultsPerType(t *testing.T) {
	editor := startedEditor(t)

	multi, err := editor.AddElement(ElementText)
	if err != nil {
		t.Fatalf("add text: %v", err)
	}
	if multi.Text == nil || !multi.Text.Multiline || multi.Text.MaxLength != 50 {
		t.Fatalf("unexpected text defaults: %+v", multi.Text)
	}
	if multi.Text.Text != "Sample Text" || multi.Text.Placeholder != "Enter text..." {
		t.Fatalf("unexpected text strings: %+v", multi.Text)
	}

	single, err := editor.AddElement(ElementSingleText)
	if err != nil {
		t.Fatalf("add singletext: %v", err)
	}
	if single.Text == nil || single.Text.Multiline || single.Text.MaxLength != 30 {
		t.Fatalf("unexpected singletext defaults: %+v", single.Text)
	}
	if single.Text.Text != "Single Line Text" || single.Text.Placeholder != "Enter single line text..." {
		t.Fatalf("unexpected singletext strings: %+v", single.Text)
	}

	upload, err := editor.AddElement(ElementUpload)
	if err != nil {
		t.Fatalf("add upload: %v", err)
	}
	if upload.Upload == nil || upload.Upload.MaxSize != 5 || upload.Upload.Required {
		t.Fatalf("unexpected upload defaults: %+v", upload.Upload)
	}
}

func TestEditorElementIDsUniqueWithinMillisecond(t *testing.T) {
	base := testClock(t)
	editor := NewEditor(func() time.Time { return base })
	if err := editor.StartDesign(NewTemplate("Front")); err != nil {
		t.Fatalf("start design: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		el, err := editor.AddElement(ElementText)
		if err != nil {
			t.Fatalf("add element %d: %v", i, err)
		}
		if seen[el.ID] {
			t.Fatalf("duplicate element id %s", el.ID)
		}
		seen[el.ID] = true
	}
}

func TestEditorElementIDFormat(t *testing.T) {
	base := testClock(t)
	editor := NewEditor(func() time.Time { return base })
	if err := editor.StartDesign(NewTemplate("Front")); err != nil {
		t.Fatalf("start design: %v", err)
	}
	el, err := editor.AddElement(ElementUpload)
	if err != nil {
		t.Fatalf("add element: %v", err)
	}
	want := fmt.Sprintf("upload_%d", base.UnixMilli())
	if el.ID != want {
		t.Fatalf("expected id %s, got %s", want, el.ID)
	}
}

func TestEditorRejectsImageElements(t *testing.T) {
	editor := startedEditor(t)
	_, err := editor.AddElement(ElementImage)
	if err == nil {
		t.Fatalf("expected error for image element")
	}
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEditorGeometryClamped(t *testing.T) {
	editor := startedEditor(t)
	el, err := editor.AddElement(ElementText)
	if err != nil {
		t.Fatalf("add element: %v", err)
	}

	if err := editor.UpdateGeometry(geometry.FieldX, 900); err != nil {
		t.Fatalf("update x: %v", err)
	}
	snap := editor.Snapshot()
	if el = snap.FindElement(el.ID); el.X != 800 {
		t.Fatalf("expected x clamped to 800, got %d", el.X)
	}

	// With the element against the right edge a width of 200 cannot fit.
	if err := editor.UpdateGeometry(geometry.FieldX, 900); err != nil {
		t.Fatalf("update x: %v", err)
	}
	if err := editor.UpdateGeometry(geometry.FieldWidth, 200); err != nil {
		t.Fatalf("update width: %v", err)
	}
	snap = editor.Snapshot()
	el = snap.FindElement(el.ID)
	if el.X+el.Width > 1000 {
		t.Fatalf("element escapes canvas: %+v", el)
	}
}

func TestEditorSelectCloseDelete(t *testing.T) {
	editor := startedEditor(t)
	el, err := editor.AddElement(ElementText)
	if err != nil {
		t.Fatalf("add element: %v", err)
	}

	if err := editor.CloseElement(); err != nil {
		t.Fatalf("close element: %v", err)
	}
	if editor.State() != StateDesigning || editor.SelectedID() != "" {
		t.Fatalf("expected designing with no selection")
	}

	if err := editor.SelectElement("missing"); err == nil {
		t.Fatalf("expected error selecting missing element")
	}
	if err := editor.SelectElement(el.ID); err != nil {
		t.Fatalf("select element: %v", err)
	}

	// Deleting the open element closes its panel.
	if err := editor.DeleteElement(el.ID); err != nil {
		t.Fatalf("delete element: %v", err)
	}
	if editor.State() != StateDesigning || editor.SelectedID() != "" {
		t.Fatalf("expected designing after deleting open element")
	}
	if len(editor.Snapshot().Elements) != 0 {
		t.Fatalf("expected no elements after delete")
	}
}

func TestEditorPropertyUpdates(t *testing.T) {
	editor := startedEditor(t)
	el, err := editor.AddElement(ElementText)
	if err != nil {
		t.Fatalf("add element: %v", err)
	}

	if err := editor.UpdateTextProperties(TextProperties{
		Text:      "Engraving",
		MaxLength: 40,
		Multiline: false,
	}); err != nil {
		t.Fatalf("update text properties: %v", err)
	}
	snap := editor.Snapshot()
	got := snap.FindElement(el.ID)
	if got.Text.Text != "Engraving" || got.Text.MaxLength != 40 {
		t.Fatalf("unexpected text properties: %+v", got.Text)
	}
	// Multiline follows the element type, not the payload.
	if !got.Text.Multiline {
		t.Fatalf("expected multiline forced true for text element")
	}

	if err := editor.UpdateUploadProperties(UploadProperties{MaxSize: 10}); err == nil {
		t.Fatalf("expected error applying upload properties to text element")
	}
}

func TestEditorSavePayloadRoundTrips(t *testing.T) {
	editor := startedEditor(t)
	if _, err := editor.AddElement(ElementUpload); err != nil {
		t.Fatalf("add element: %v", err)
	}
	if err := editor.SetViewSettings("Front", BackgroundBlank, false, "4.50"); err != nil {
		t.Fatalf("set view settings: %v", err)
	}

	raw, err := editor.SavePayload()
	if err != nil {
		t.Fatalf("save payload: %v", err)
	}
	decoded, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.ViewBackground != BackgroundBlank || decoded.LivePreview {
		t.Fatalf("unexpected view settings: %+v", decoded)
	}
	if decoded.AdditionalCharge.String() != "4.5" {
		t.Fatalf("expected charge 4.5, got %s", decoded.AdditionalCharge)
	}
	if !decoded.HasUploadElement() {
		t.Fatalf("expected upload element in payload")
	}
}
