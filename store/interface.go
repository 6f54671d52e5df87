package store

import (
	"context"
	"time"
)

// Store is the persistence boundary for the catalog, the cart ledger and users.
type Store interface {
	ListProducts(ctx context.Context) ([]ProductRow, error)
	ProductsByIDs(ctx context.Context, ids []int64) ([]ProductRow, error)

	ListCart(ctx context.Context, userID int64) ([]CartItemRow, error)
	AddToCart(ctx context.Context, userID, productID int64, qty int, addedAt time.Time) (CartRow, bool, error)
	UpdateCartQty(ctx context.Context, cartID int64, qty int) (int64, error)
	RemoveFromCart(ctx context.Context, cartID int64) (int64, error)
	ClearCart(ctx context.Context) (int64, error)
	ClearCartForUser(ctx context.Context, userID int64) (int64, error)

	FindOrCreateUser(ctx context.Context, name, email string) (UserRow, error)
	GetUser(ctx context.Context, id int64) (*UserRow, error)

	Ping(ctx context.Context) error
	Close() error
}
