package models

import (
	"encoding/json"
	"strconv"
)

// CheckoutItem is one requested line of a checkout, as sent by the caller.
//
// A decoded item keeps the caller's JSON and marshals it back unchanged, extra
// fields included. ProductID and Qty are only filled when both are JSON
// integers; any other element is echoed but cannot be priced.
type CheckoutItem struct {
	ProductID int64 `json:"productId"`
	Qty       int   `json:"qty"`

	raw      json.RawMessage
	unpriced bool
}

// UnmarshalJSON never rejects a well-formed JSON value.
func (c *CheckoutItem) UnmarshalJSON(b []byte) error {
	*c = CheckoutItem{raw: append(json.RawMessage(nil), b...), unpriced: true}

	var fields struct {
		ProductID json.RawMessage `json:"productId"`
		Qty       json.RawMessage `json:"qty"`
	}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil
	}
	id, errID := strconv.ParseInt(string(fields.ProductID), 10, 64)
	qty, errQty := strconv.Atoi(string(fields.Qty))
	if errID == nil && errQty == nil {
		c.ProductID, c.Qty, c.unpriced = id, qty, false
	}
	return nil
}

func (c CheckoutItem) MarshalJSON() ([]byte, error) {
	if c.raw != nil {
		return c.raw, nil
	}
	type plain CheckoutItem
	return json.Marshal(plain(c))
}

// Priced returns the product and quantity to price, or false when the caller
// sent something other than integer productId and qty.
func (c CheckoutItem) Priced() (productID int64, qty int, ok bool) {
	if c.unpriced {
		return 0, 0, false
	}
	return c.ProductID, c.Qty, true
}

// CheckoutRequest is the body of POST /api/checkout.
// A nil CartItems means the field was missing; an empty slice means an empty cart.
type CheckoutRequest struct {
	CartItems []CheckoutItem `json:"cartItems"`
	Name      string         `json:"name,omitempty"`
	Email     string         `json:"email,omitempty"`
	UserID    int64          `json:"userId,omitempty"`
}

// Receipt is returned once per successful checkout and never stored.
// Items echoes the request verbatim; Total is priced from the catalog.
type Receipt struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Email     *string        `json:"email"`
	Total     float64        `json:"total"`
	Items     []CheckoutItem `json:"items"`
	Timestamp string         `json:"timestamp"`
}
