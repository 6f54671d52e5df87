package models

import "time"

// DefaultUserID owns every cart line added without an explicit user.
const DefaultUserID int64 = 1

// CartLine is one (user, product) row of the cart ledger.
type CartLine struct {
	CartID    int64     `json:"cartId"`
	ProductID int64     `json:"productId"`
	Qty       int       `json:"qty"`
	UserID    int64     `json:"userId"`
	AddedAt   time.Time `json:"-"`
}

// CartItem is a cart line joined with its product.
type CartItem struct {
	CartID    int64   `json:"cartId"`
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

type CartListing struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

type UpdateResult struct {
	Updated int64 `json:"updated"`
}

type DeleteResult struct {
	Deleted int64 `json:"deleted"`
}

// QuantityChange is the outcome of setting a quantity where zero removes the
// line. Exactly one field is set.
type QuantityChange struct {
	Updated *int64 `json:"updated,omitempty"`
	Deleted *int64 `json:"deleted,omitempty"`
}
