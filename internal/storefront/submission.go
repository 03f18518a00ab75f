// Package storefront implements the customer-facing personalization flow:
// live preview state, debounced recomputation, and the serialized submission
// attached to cart line items.
package storefront

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CartPropertyKey is the line-item property form field name the cart reads.
const CartPropertyKey = "properties[Advanced_Personalization]"

// PlaceholderDisplayText renders whenever the customer has not entered
// anything yet.
const PlaceholderDisplayText = "Your customization will appear here"

// Submission is the customer's personalization as serialized onto the cart.
// Field names are part of the persisted format; fulfillment tooling reads
// these rows back, so they never change shape silently.
type Submission struct {
	Name            string            `json:"name"`
	TextFields      map[string]string `json:"textFields"`
	DisplayText     string            `json:"displayText"`
	FontFamily      string            `json:"fontFamily"`
	FontSize        int               `json:"fontSize"`
	FontBold        bool              `json:"fontBold"`
	FontItalic      bool              `json:"fontItalic"`
	FontUnderline   bool              `json:"fontUnderline"`
	TextColor       string            `json:"textColor"`
	BackgroundColor string            `json:"backgroundColor"`
	TextAlign       string            `json:"textAlign"`
	VerticalAlign   string            `json:"verticalAlign"`
	CustomLogo      *string           `json:"customLogo"`
	BackgroundImage *string           `json:"backgroundImage"`
	LogoSize        int               `json:"logoSize"`
	TextXPosition   int               `json:"textXPosition"`
	TextYPosition   int               `json:"textYPosition"`
	LogoXPosition   int               `json:"logoXPosition"`
	LogoYPosition   int               `json:"logoYPosition"`
	Timestamp       string            `json:"timestamp,omitempty"`
}

// NewSubmission returns a submission with the stock styling values.
func NewSubmission() Submission {
	return Submission{
		TextFields:      map[string]string{},
		FontFamily:      "Arial",
		FontSize:        18,
		TextColor:       "#000000",
		BackgroundColor: "#ffffff",
		TextAlign:       "center",
		VerticalAlign:   "middle",
		LogoSize:        100,
		TextXPosition:   500,
		TextYPosition:   500,
		LogoXPosition:   500,
		LogoYPosition:   800,
	}
}

// Serialize renders the submission as the cart property value, stamping the
// serialization instant in ISO-8601.
func (s Submission) Serialize(now time.Time) (string, error) {
	s.Timestamp = now.UTC().Format(time.RFC3339)
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("serialize submission: %w", err)
	}
	return string(raw), nil
}

// ParseSubmission decodes a serialized submission back into its struct form.
func ParseSubmission(raw string) (*Submission, error) {
	var sub Submission
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, fmt.Errorf("parse submission: %w", err)
	}
	return &sub, nil
}

// CartProperties builds the form fields to submit alongside the add-to-cart
// request. The additional charge rides as a display hint only; pricing is
// enforced upstream.
func CartProperties(serialized string, additionalCharge decimal.Decimal) map[string]string {
	props := map[string]string{
		CartPropertyKey: serialized,
	}
	if additionalCharge.IsPositive() {
		props["properties[_personalization_charge]"] = additionalCharge.StringFixed(2)
	}
	return props
}
