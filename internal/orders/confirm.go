package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/store"
)

// Payment status an order needs before it can be confirmed. Lives here as a
// plain string to keep payments depending on orders, not the reverse.
const paymentCompleted = "Completed"

// Confirm is the join point of the order and payment workflows: it verifies
// a completed, amount-matching payment exists for the order, deducts stock
// for every line and marks the order Confirmed, all in one transaction.
//
// A missing order (or missing payment) is not failed fast: the zero amount
// and empty payment status fall through to the mismatch rejection below.
func (e *Engine) Confirm(ctx context.Context, orderID string) (ConfirmResult, error) {
	var res ConfirmResult
	err := e.Store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		orderTotal := decimal.Zero
		payAmount := decimal.Zero
		payStatus := ""

		total, err := tx.OrderTotal(ctx, orderID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err == nil {
			orderTotal = total
		}

		pay, err := tx.LatestPaymentForOrder(ctx, orderID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err == nil {
			payAmount = pay.Amount
			payStatus = pay.Status
		}

		if payStatus != paymentCompleted || !payAmount.Equal(orderTotal) {
			res = ConfirmResult{
				OrderID: orderID,
				Message: "Cannot confirm order: payment is incomplete or does not match the order total",
			}
			return errRejected
		}

		items, err := tx.OrderItems(ctx, orderID)
		if err != nil {
			return err
		}
		// Stock was only checked at creation time, so re-validate under row
		// locks before deducting: two orders may have both passed the check.
		for _, it := range items {
			stock, err := tx.ProductStockForUpdate(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if stock < it.Qty {
				res = ConfirmResult{
					OrderID: orderID,
					Message: fmt.Sprintf("Cannot confirm order: insufficient stock for product %s", it.ProductID),
				}
				return errRejected
			}
			if err := tx.DeductStock(ctx, it.ProductID, it.Qty); err != nil {
				return err
			}
		}

		if err := tx.UpdateOrderStatus(ctx, orderID, string(StatusConfirmed)); err != nil {
			return err
		}
		res = ConfirmResult{
			OrderID:   orderID,
			Confirmed: true,
			Message:   "Order confirmed successfully",
		}
		return nil
	})
	if errors.Is(err, errRejected) {
		e.Log.Info("order confirmation rejected",
			zap.String("order_id", orderID),
			zap.String("reason", res.Message))
		return res, nil
	}
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("confirm order: %w", err)
	}

	e.Log.Info("order confirmed", zap.String("order_id", orderID))
	return res, nil
}
