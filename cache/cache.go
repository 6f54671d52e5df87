package cache

import (
	"context"
	"errors"

	"minishop/models"
)

// CatalogCache holds the product listing. The catalog never changes after
// seeding, so entries only leave through TTL expiry or Invalidate.
type CatalogCache interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	SetProducts(ctx context.Context, products []models.Product) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop is used when no cache is configured; every read misses.
type Noop struct{}

func (Noop) GetProducts(context.Context) ([]models.Product, error) { return nil, ErrCacheMiss }
func (Noop) SetProducts(context.Context, []models.Product) error  { return nil }
func (Noop) Invalidate(context.Context) error                     { return nil }
