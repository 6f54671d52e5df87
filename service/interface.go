package service

import (
	"context"

	"minishop/models"
)

type ServiceInterface interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ResolvePrices(ctx context.Context, productIDs []int64) (map[int64]models.Product, error)

	ListCart(ctx context.Context, userID int64) (models.CartListing, error)
	AddItem(ctx context.Context, userID, productID int64, qty int) (models.CartLine, error)
	UpdateQty(ctx context.Context, cartID int64, qty *int) (models.UpdateResult, error)
	SetQuantity(ctx context.Context, cartID int64, qty *int) (models.QuantityChange, error)
	RemoveItem(ctx context.Context, cartID int64) (models.DeleteResult, error)

	Checkout(ctx context.Context, req models.CheckoutRequest) (models.Receipt, error)

	RegisterUser(ctx context.Context, name, email string) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)

	Health(ctx context.Context) error
}
