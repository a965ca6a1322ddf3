package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/orders"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/store"
)

var errRejected = errors.New("rejected")

type Engine struct {
	Store store.Gateway
	Log   *zap.Logger
}

func NewEngine(st store.Gateway, log *zap.Logger) *Engine {
	return &Engine{Store: st, Log: log}
}

// Create validates the payment against its order and persists it in one
// transaction: the row is inserted as Pending, the gateway outcome is
// resolved synchronously from the method tag and the row is updated to the
// resolved status before commit. Outside readers never observe the
// intermediate Pending row.
func (e *Engine) Create(ctx context.Context, in CreatePaymentInput) (CreateResult, error) {
	var res CreateResult
	err := e.Store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		total, err := tx.PendingOrderTotal(ctx, in.OrderID)
		if errors.Is(err, store.ErrNotFound) {
			res = CreateResult{Message: "Order either does not exist or is not in a pending state"}
			return errRejected
		}
		if err != nil {
			return err
		}
		if !in.Amount.Equal(total) {
			res = CreateResult{Message: "Payment amount does not match the order total"}
			return errRejected
		}

		paymentID := uuid.NewString()
		if err := tx.InsertPayment(ctx, store.Payment{
			ID:        paymentID,
			OrderID:   in.OrderID,
			Amount:    in.Amount,
			Method:    in.Method,
			Status:    string(StatusPending),
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}

		resolved := ResolveGateway(in.Method)
		if err := tx.UpdatePaymentStatus(ctx, paymentID, string(resolved)); err != nil {
			return err
		}

		res = CreateResult{
			PaymentID: paymentID,
			Status:    resolved,
			Created:   true,
			Message:   fmt.Sprintf("Payment processed with status %s", resolved),
		}
		return nil
	})
	if errors.Is(err, errRejected) {
		e.Log.Info("payment rejected",
			zap.String("order_id", in.OrderID),
			zap.String("reason", res.Message))
		return res, nil
	}
	if err != nil {
		return CreateResult{}, fmt.Errorf("create payment: %w", err)
	}

	e.Log.Info("payment processed",
		zap.String("payment_id", res.PaymentID),
		zap.String("order_id", in.OrderID),
		zap.String("status", string(res.Status)))
	return res, nil
}

// UpdateStatus applies a guarded payment status change. Unlike the order
// flow, a missing payment record here is a hard error, not a soft
// rejection.
func (e *Engine) UpdateStatus(ctx context.Context, paymentID string, newStatus Status) (StatusUpdateResult, error) {
	var res StatusUpdateResult
	err := e.Store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		pay, orderStatus, err := tx.PaymentWithOrderStatus(ctx, paymentID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("payment record not found")
		}
		if err != nil {
			return err
		}

		current := Status(pay.Status)
		if !CanTransition(current, newStatus, orders.Status(orderStatus)) {
			res = StatusUpdateResult{
				PaymentID: paymentID,
				Previous:  current,
				Message: fmt.Sprintf("Invalid status transition from %s to %s for order status %s",
					current, newStatus, orderStatus),
			}
			return errRejected
		}
		if err := tx.UpdatePaymentStatus(ctx, paymentID, string(newStatus)); err != nil {
			return err
		}
		res = StatusUpdateResult{
			PaymentID: paymentID,
			Previous:  current,
			Status:    newStatus,
			Updated:   true,
			Message:   fmt.Sprintf("Payment status updated from %s to %s", current, newStatus),
		}
		return nil
	})
	if errors.Is(err, errRejected) {
		return res, nil
	}
	if err != nil {
		return StatusUpdateResult{}, fmt.Errorf("update payment status: %w", err)
	}

	e.Log.Info("payment status updated",
		zap.String("payment_id", paymentID),
		zap.String("status", string(newStatus)))
	return res, nil
}

// Get returns payment details by id.
func (e *Engine) Get(ctx context.Context, paymentID string) (Payment, error) {
	p, err := e.Store.GetPayment(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	return Payment{
		ID:        p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
		Method:    p.Method,
		Status:    Status(p.Status),
		CreatedAt: p.CreatedAt,
	}, nil
}
