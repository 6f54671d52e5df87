package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"minishop/models"
)

const receiptTimeLayout = "2006-01-02T15:04:05.000Z"

// Checkout prices the requested items against the catalog and returns a
// receipt. Items missing from the catalog add nothing to the total but are
// still echoed in the receipt. The cart is cleared afterwards; a failed clear
// is logged and does not fail the checkout.
func (s *Service) Checkout(ctx context.Context, req models.CheckoutRequest) (models.Receipt, error) {
	if req.CartItems == nil {
		return models.Receipt{}, invalid("cartItems", "Missing cartItems")
	}
	if len(req.CartItems) == 0 {
		return models.Receipt{}, invalid("cartItems", "Empty cart")
	}

	ids := make([]int64, 0, len(req.CartItems))
	for _, it := range req.CartItems {
		if id, _, ok := it.Priced(); ok {
			ids = append(ids, id)
		}
	}
	prices, err := s.ResolvePrices(ctx, ids)
	if err != nil {
		return models.Receipt{}, err
	}

	receipt := s.buildReceipt(req, orderTotal(req.CartItems, prices))

	s.clearAfterCheckout(ctx, req.UserID)
	s.metrics.ReceiptIssued(receipt.Total)

	if err := s.publisher.PublishReceiptCreated(ctx, receipt); err != nil {
		s.logger.Warn("failed to publish receipt event", zap.Int64("receipt_id", receipt.ID), zap.Error(err))
	}

	s.logger.Info("checkout completed",
		zap.Int64("receipt_id", receipt.ID),
		zap.Int("items", len(receipt.Items)),
		zap.Float64("total", receipt.Total))
	return receipt, nil
}

// orderTotal sums price × qty over the resolvable items, rounded to cents.
// Items that cannot be priced contribute nothing.
func orderTotal(items []models.CheckoutItem, prices map[int64]models.Product) float64 {
	total := decimal.Zero
	for _, it := range items {
		id, qty, ok := it.Priced()
		if !ok {
			continue
		}
		p, ok := prices[id]
		if !ok {
			continue
		}
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(qty))))
	}
	return total.Round(2).InexactFloat64()
}

func (s *Service) buildReceipt(req models.CheckoutRequest, total float64) models.Receipt {
	at := s.now().UTC()

	name := req.Name
	if name == "" {
		name = "Guest"
	}
	var email *string
	if req.Email != "" {
		e := req.Email
		email = &e
	}

	items := make([]models.CheckoutItem, len(req.CartItems))
	copy(items, req.CartItems)

	return models.Receipt{
		ID:        at.UnixMilli(),
		Name:      name,
		Email:     email,
		Total:     total,
		Items:     items,
		Timestamp: at.Format(receiptTimeLayout),
	}
}

func (s *Service) clearAfterCheckout(ctx context.Context, userID int64) {
	var (
		n   int64
		err error
	)
	switch s.scope {
	case ClearUser:
		if userID == 0 {
			userID = models.DefaultUserID
		}
		n, err = s.store.ClearCartForUser(ctx, userID)
	default:
		n, err = s.store.ClearCart(ctx)
	}
	if err != nil {
		s.metrics.CartClearFailures.Inc()
		s.logger.Error("failed to clear cart", zap.String("scope", string(s.scope)), zap.Error(err))
		return
	}
	s.logger.Debug("cart cleared", zap.String("scope", string(s.scope)), zap.Int64("lines", n))
}
