package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// ErrMalformedPayload is returned when a webhook body cannot be parsed or is
// missing its order identifier. It maps to a 400 at the HTTP boundary.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// FlexString tolerates JSON numbers, strings and null for fields the order
// platform is inconsistent about (ids arrive as numbers, totals as strings).
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 1 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Float64 parses the value as a decimal amount, zero when empty
func (f FlexString) Float64() (float64, error) {
	if f == "" {
		return 0, nil
	}
	return strconv.ParseFloat(string(f), 64)
}

// NoteAttribute is one structured cart attribute set by client-side tracking
type NoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DiscountCode is one discount applied to an order
type DiscountCode struct {
	Code string `json:"code"`
}

// OrderEvent is the tolerant shape of the order-created / fulfilled /
// cancelled webhooks. Every field except ID may be absent; optional-field
// handling lives here, at the boundary, not in the business logic.
type OrderEvent struct {
	ID             FlexString      `json:"id"`
	Name           string          `json:"name"` // order number, e.g. "#1001"
	TotalPrice     FlexString      `json:"total_price"`
	Currency       string          `json:"currency"`
	Email          string          `json:"email"`
	Note           string          `json:"note"`
	NoteAttributes []NoteAttribute `json:"note_attributes"`
	DiscountCodes  []DiscountCode  `json:"discount_codes"`
	LandingSite    string          `json:"landing_site"`
	CreatedAt      string          `json:"created_at"`
}

// RefundEvent is the tolerant shape of the refund-created webhook. It carries
// the id of the refunded order, not its own id.
type RefundEvent struct {
	OrderID FlexString `json:"order_id"`
}

// ParseOrderEvent decodes an order lifecycle webhook body
func ParseOrderEvent(body []byte) (*OrderEvent, error) {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, ErrMalformedPayload
	}
	if ev.ID == "" {
		return nil, ErrMalformedPayload
	}
	return &ev, nil
}

// ParseRefundEvent decodes a refund-created webhook body
func ParseRefundEvent(body []byte) (*RefundEvent, error) {
	var ev RefundEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, ErrMalformedPayload
	}
	if ev.OrderID == "" {
		return nil, ErrMalformedPayload
	}
	return &ev, nil
}
