package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/store"
)

// errRejected aborts the surrounding transaction for a business-rule
// rejection. It never leaves the engine; callers see a result with the
// success flag down and a nil error.
var errRejected = errors.New("rejected")

type Engine struct {
	Store store.Gateway
	Log   *zap.Logger
}

func NewEngine(st store.Gateway, log *zap.Logger) *Engine {
	return &Engine{Store: st, Log: log}
}

// CreateOrder prices and validates the requested items against live stock
// and persists the order plus its items in one transaction. Prices are
// captured per line at creation time; stock is checked here but deducted
// only at confirmation.
func (e *Engine) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateResult, error) {
	if len(in.Items) == 0 {
		return CreateResult{Message: "Order must contain at least one item"}, nil
	}

	var res CreateResult
	err := e.Store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		total := decimal.Zero
		validated := make([]store.OrderItem, 0, len(in.Items))

		for _, it := range in.Items {
			if it.Qty <= 0 {
				res = CreateResult{Message: fmt.Sprintf("Invalid quantity for product %s", it.ProductID)}
				return errRejected
			}
			price, stock, err := tx.ProductPriceStock(ctx, it.ProductID)
			if errors.Is(err, store.ErrNotFound) {
				res = CreateResult{Message: fmt.Sprintf("Product not found for product %s", it.ProductID)}
				return errRejected
			}
			if err != nil {
				return err
			}
			if stock < it.Qty {
				res = CreateResult{Message: fmt.Sprintf("Insufficient stock for product %s", it.ProductID)}
				return errRejected
			}
			total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Qty))))
			validated = append(validated, store.OrderItem{
				ProductID:    it.ProductID,
				Qty:          it.Qty,
				PriceAtOrder: price,
			})
		}

		orderID := uuid.NewString()
		if err := tx.InsertOrder(ctx, store.Order{
			ID:         orderID,
			CustomerID: in.CustomerID,
			Total:      total,
			Status:     string(StatusPending),
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return err
		}
		for _, it := range validated {
			it.OrderID = orderID
			if err := tx.InsertOrderItem(ctx, it); err != nil {
				return err
			}
		}

		res = CreateResult{
			OrderID: orderID,
			Status:  StatusPending,
			Total:   total,
			Created: true,
			Message: "Order created successfully",
		}
		return nil
	})
	if errors.Is(err, errRejected) {
		e.Log.Info("order rejected",
			zap.String("customer_id", in.CustomerID),
			zap.String("reason", res.Message))
		return res, nil
	}
	if err != nil {
		return CreateResult{}, fmt.Errorf("create order: %w", err)
	}

	e.Log.Info("order created",
		zap.String("order_id", res.OrderID),
		zap.String("customer_id", in.CustomerID))
	return res, nil
}

// UpdateStatus applies a generic order status transition. The current
// status is read under a row lock so concurrent transitions on the same
// order cannot race the check.
func (e *Engine) UpdateStatus(ctx context.Context, orderID string, newStatus Status) (StatusUpdateResult, error) {
	var res StatusUpdateResult
	err := e.Store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		current, err := tx.OrderStatusForUpdate(ctx, orderID)
		if errors.Is(err, store.ErrNotFound) {
			res = StatusUpdateResult{OrderID: orderID, Message: "Order not found"}
			return errRejected
		}
		if err != nil {
			return err
		}
		if !CanTransition(Status(current), newStatus) {
			res = StatusUpdateResult{
				OrderID: orderID,
				Message: fmt.Sprintf("Invalid status transition from %s to %s", current, newStatus),
			}
			return errRejected
		}
		if err := tx.UpdateOrderStatus(ctx, orderID, string(newStatus)); err != nil {
			return err
		}
		res = StatusUpdateResult{
			OrderID: orderID,
			Status:  newStatus,
			Updated: true,
			Message: fmt.Sprintf("Order status updated to %s", newStatus),
		}
		return nil
	})
	if errors.Is(err, errRejected) {
		return res, nil
	}
	if err != nil {
		return StatusUpdateResult{}, fmt.Errorf("update order status: %w", err)
	}

	e.Log.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", string(newStatus)))
	return res, nil
}

// Get returns an order with its items.
func (e *Engine) Get(ctx context.Context, orderID string) (Order, error) {
	o, items, err := e.Store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	out := Order{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Total:      o.Total,
		Status:     Status(o.Status),
		CreatedAt:  o.CreatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, OrderItem{
			ProductID:    it.ProductID,
			Qty:          it.Qty,
			PriceAtOrder: it.PriceAtOrder,
		})
	}
	return out, nil
}

// ListByStatus returns orders currently in the given status.
func (e *Engine) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	rows, err := e.Store.ListOrdersByStatus(ctx, string(status))
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(rows))
	for _, o := range rows {
		out = append(out, Order{
			ID:         o.ID,
			CustomerID: o.CustomerID,
			Total:      o.Total,
			Status:     Status(o.Status),
			CreatedAt:  o.CreatedAt,
		})
	}
	return out, nil
}
