package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"minishop/cache"
	"minishop/models"
	"minishop/store"
)

// ListProducts returns the catalog in insertion order. Concurrent cache misses
// share a single load.
func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.cache.GetProducts(ctx)
	if err == nil {
		s.metrics.CacheHit()
		return products, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("catalog cache read failed", zap.Error(err))
	}
	s.metrics.CacheMiss()

	// the load is shared; one caller going away must not fail the others
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loads.Do("products", func() (interface{}, error) {
		products, err := s.loadProducts(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetProducts(loadCtx, products); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

func (s *Service) loadProducts(ctx context.Context) ([]models.Product, error) {
	if s.remote != nil {
		products, err := s.remote.Products(ctx)
		if err == nil {
			return products, nil
		}
		s.logger.Warn("remote catalog fetch failed, falling back to local store", zap.Error(err))
	}

	rows, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	out := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, toProduct(r))
	}
	return out, nil
}

// ResolvePrices maps each known id to its product. Unknown ids are left out.
func (s *Service) ResolvePrices(ctx context.Context, productIDs []int64) (map[int64]models.Product, error) {
	seen := make(map[int64]struct{}, len(productIDs))
	ids := make([]int64, 0, len(productIDs))
	for _, id := range productIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	rows, err := s.store.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, storageErr("resolve prices", err)
	}
	out := make(map[int64]models.Product, len(rows))
	for _, r := range rows {
		out[r.ID] = toProduct(r)
	}
	return out, nil
}

func toProduct(r store.ProductRow) models.Product {
	p := models.Product{ID: r.ID, Name: r.Name, Price: r.Price}
	if r.Description.Valid {
		p.Desc = r.Description.String
	}
	return p
}
