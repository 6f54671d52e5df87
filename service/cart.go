package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"minishop/models"
)

// ListCart returns the user's lines joined with their products. Lines whose
// product is gone are not listed and do not count towards the total.
func (s *Service) ListCart(ctx context.Context, userID int64) (models.CartListing, error) {
	if userID == 0 {
		userID = models.DefaultUserID
	}
	rows, err := s.store.ListCart(ctx, userID)
	if err != nil {
		return models.CartListing{}, storageErr("list cart", err)
	}

	total := decimal.Zero
	items := make([]models.CartItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, models.CartItem{
			CartID:    r.CartID,
			ProductID: r.ProductID,
			Name:      r.Name,
			Price:     r.Price,
			Qty:       r.Qty,
		})
		total = total.Add(decimal.NewFromFloat(r.Price).Mul(decimal.NewFromInt(int64(r.Qty))))
	}
	return models.CartListing{Items: items, Total: total.InexactFloat64()}, nil
}

// AddItem adds qty of a product to the user's cart, merging into an existing
// line for the same product.
func (s *Service) AddItem(ctx context.Context, userID, productID int64, qty int) (models.CartLine, error) {
	if productID == 0 || qty == 0 {
		return models.CartLine{}, invalid("productId", "Missing productId or qty")
	}
	if qty < 0 {
		return models.CartLine{}, invalid("qty", "qty must be >= 1")
	}
	if userID == 0 {
		userID = models.DefaultUserID
	}

	row, merged, err := s.store.AddToCart(ctx, userID, productID, qty, s.now())
	if err != nil {
		return models.CartLine{}, storageErr("add to cart", err)
	}
	s.metrics.CartAdded(merged)
	s.logger.Debug("cart line saved",
		zap.Int64("cart_id", row.ID),
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Int("qty", row.Qty),
		zap.Bool("merged", merged))

	return models.CartLine{
		CartID:    row.ID,
		ProductID: row.ProductID,
		Qty:       row.Qty,
		UserID:    row.UserID,
		AddedAt:   row.AddedAt,
	}, nil
}

// UpdateQty sets a line's quantity exactly. Zero is stored, not treated as a
// removal. An unknown cartID updates nothing.
func (s *Service) UpdateQty(ctx context.Context, cartID int64, qty *int) (models.UpdateResult, error) {
	if qty == nil {
		return models.UpdateResult{}, invalid("qty", "Missing qty")
	}
	if *qty < 0 {
		return models.UpdateResult{}, invalid("qty", "qty must be >= 0")
	}
	n, err := s.store.UpdateCartQty(ctx, cartID, *qty)
	if err != nil {
		return models.UpdateResult{}, storageErr("update cart", err)
	}
	return models.UpdateResult{Updated: n}, nil
}

// SetQuantity is UpdateQty except that zero removes the line.
func (s *Service) SetQuantity(ctx context.Context, cartID int64, qty *int) (models.QuantityChange, error) {
	if qty != nil && *qty == 0 {
		res, err := s.RemoveItem(ctx, cartID)
		if err != nil {
			return models.QuantityChange{}, err
		}
		return models.QuantityChange{Deleted: &res.Deleted}, nil
	}
	res, err := s.UpdateQty(ctx, cartID, qty)
	if err != nil {
		return models.QuantityChange{}, err
	}
	return models.QuantityChange{Updated: &res.Updated}, nil
}

// RemoveItem deletes a line. Removing an unknown line deletes nothing.
func (s *Service) RemoveItem(ctx context.Context, cartID int64) (models.DeleteResult, error) {
	n, err := s.store.RemoveFromCart(ctx, cartID)
	if err != nil {
		return models.DeleteResult{}, storageErr("remove from cart", err)
	}
	return models.DeleteResult{Deleted: n}, nil
}
