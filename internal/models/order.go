// Package models defines the core domain entities for the brewcast recommender.
// These models represent flattened order lines, weather observations, and the
// ranked recommendation returned to callers.
//
// Terminology:
//   - Order: a single checkout by a user, carrying one or more line items.
//   - OrderLine: one product/quantity pair from an order, stamped with the order's
//     creation time and user. This is the unit the history analyzer counts.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OrderLine is an immutable, flattened line item from a user's order history.
type OrderLine struct {
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
	UserID     string    `json:"user_id"`
}

// Validate checks that all order line fields are valid
func (l *OrderLine) Validate() error {
	if l.ProductID == "" {
		return fieldError("product_id", "must not be empty")
	}
	if l.Quantity <= 0 {
		return fieldError("quantity", "must be positive")
	}
	if l.OccurredAt.IsZero() {
		return fieldError("created_at", "must be set")
	}
	if l.UserID == "" {
		return fieldError("user_id", "must not be empty")
	}
	return nil
}

func fieldError(field, reason string) *InputError {
	return &InputError{Index: -1, Line: -1, Field: field, Reason: reason}
}

// OrderHistory is the nested payload supplied by the order-history collaborator:
// {"data": [order, ...]}.
type OrderHistory struct {
	Data []Order `json:"data"`
}

// Order is a single order as returned by the orders API. Only the fields needed
// for flattening are typed; status and prices are carried for round-tripping.
type Order struct {
	ID            json.RawMessage `json:"id,omitempty"`
	UserID        string          `json:"user_id"`
	Status        string          `json:"status,omitempty"`
	TotalPrice    float64         `json:"total_price,omitempty"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at,omitempty"`
	OrderProducts []OrderProduct  `json:"order_products"`
}

// OrderProduct is a line item inside an Order.
type OrderProduct struct {
	ProductID ProductID `json:"product_id"`
	Quantity  *int      `json:"quantity,omitempty"`
	Price     float64   `json:"price,omitempty"`
}

// ProductID accepts both string and numeric JSON product identifiers.
type ProductID string

// UnmarshalJSON implements json.Unmarshaler
func (p *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product_id must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*p = ProductID(strconv.FormatInt(i, 10))
		return nil
	}
	*p = ProductID(n.String())
	return nil
}

// timestampLayouts are tried in order when parsing order creation times.
// Supabase emits RFC3339 with fractional seconds and offset; the legacy
// payloads carry a bare ISO timestamp without zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an order timestamp. Zone-less values are read as
// local wall-clock time, matching how target times are supplied.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
