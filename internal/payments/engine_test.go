package payments_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/orders"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/payments"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/store"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/store/memory"
)

func newEngine(t *testing.T) (*payments.Engine, *memory.Store) {
	t.Helper()
	st := memory.New()
	return payments.NewEngine(st, zap.NewNop()), st
}

func seedOrder(t *testing.T, st *memory.Store, id, total string, status orders.Status) {
	t.Helper()
	err := st.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.InsertOrder(ctx, store.Order{
			ID:         id,
			CustomerID: "c1",
			Total:      decimal.RequireFromString(total),
			Status:     string(status),
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		t.Fatal(err)
	}
}

func noPaymentExists(t *testing.T, st *memory.Store, orderID string) {
	t.Helper()
	err := st.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		_, err := tx.LatestPaymentForOrder(ctx, orderID)
		return err
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no payment row, got err=%v", err)
	}
}

func TestCreatePayment(t *testing.T) {
	t.Run("cc completes", func(t *testing.T) {
		e, st := newEngine(t)
		seedOrder(t, st, "o1", "20.00", orders.StatusPending)

		res, err := e.Create(context.Background(), payments.CreatePaymentInput{
			OrderID: "o1",
			Amount:  decimal.RequireFromString("20.00"),
			Method:  payments.MethodCC,
		})
		if err != nil || !res.Created {
			t.Fatalf("Create: %v %+v", err, res)
		}
		if res.Status != payments.StatusCompleted {
			t.Fatalf("status = %s, want Completed", res.Status)
		}

		p, err := e.Get(context.Background(), res.PaymentID)
		if err != nil {
			t.Fatal(err)
		}
		if p.Status != payments.StatusCompleted {
			t.Fatalf("persisted status = %s, want Completed", p.Status)
		}
	})

	t.Run("dc fails but the row is written", func(t *testing.T) {
		e, st := newEngine(t)
		seedOrder(t, st, "o1", "20.00", orders.StatusPending)

		res, err := e.Create(context.Background(), payments.CreatePaymentInput{
			OrderID: "o1",
			Amount:  decimal.RequireFromString("20.00"),
			Method:  payments.MethodDC,
		})
		if err != nil || !res.Created {
			t.Fatalf("Create: %v %+v", err, res)
		}
		if res.Status != payments.StatusFailed {
			t.Fatalf("status = %s, want Failed", res.Status)
		}
	})

	t.Run("missing order is not eligible", func(t *testing.T) {
		e, st := newEngine(t)

		res, err := e.Create(context.Background(), payments.CreatePaymentInput{
			OrderID: "nope",
			Amount:  decimal.RequireFromString("20.00"),
			Method:  payments.MethodCC,
		})
		if err != nil {
			t.Fatalf("rejection must not be an error: %v", err)
		}
		if res.Created {
			t.Fatal("expected rejection")
		}
		noPaymentExists(t, st, "nope")
	})

	t.Run("non-pending order is not eligible", func(t *testing.T) {
		e, st := newEngine(t)
		seedOrder(t, st, "o1", "20.00", orders.StatusConfirmed)

		res, err := e.Create(context.Background(), payments.CreatePaymentInput{
			OrderID: "o1",
			Amount:  decimal.RequireFromString("20.00"),
			Method:  payments.MethodCC,
		})
		if err != nil || res.Created {
			t.Fatalf("expected rejection, got %v %+v", err, res)
		}
		noPaymentExists(t, st, "o1")
	})

	t.Run("amount mismatch writes nothing", func(t *testing.T) {
		e, st := newEngine(t)
		seedOrder(t, st, "o1", "20.00", orders.StatusPending)

		res, err := e.Create(context.Background(), payments.CreatePaymentInput{
			OrderID: "o1",
			Amount:  decimal.RequireFromString("19.99"),
			Method:  payments.MethodCC,
		})
		if err != nil {
			t.Fatal(err)
		}
		if res.Created {
			t.Fatal("expected rejection")
		}
		if !strings.Contains(res.Message, "does not match") {
			t.Fatalf("unexpected message %q", res.Message)
		}
		noPaymentExists(t, st, "o1")
	})
}

func TestUpdatePaymentStatus(t *testing.T) {
	create := func(t *testing.T, e *payments.Engine, st *memory.Store, method string) payments.CreateResult {
		seedOrder(t, st, "o1", "20.00", orders.StatusPending)
		res, err := e.Create(context.Background(), payments.CreatePaymentInput{
			OrderID: "o1",
			Amount:  decimal.RequireFromString("20.00"),
			Method:  method,
		})
		if err != nil || !res.Created {
			t.Fatalf("Create: %v %+v", err, res)
		}
		return res
	}

	t.Run("missing payment is a hard error", func(t *testing.T) {
		e, _ := newEngine(t)
		_, err := e.UpdateStatus(context.Background(), "nope", payments.StatusCancelled)
		if err == nil {
			t.Fatal("missing payment must surface as an error")
		}
		if !strings.Contains(err.Error(), "payment record not found") {
			t.Fatalf("unexpected error %v", err)
		}
	})

	t.Run("pending can be cancelled", func(t *testing.T) {
		e, st := newEngine(t)
		res := create(t, e, st, payments.MethodDC) // Failed
		// put it back to Pending first via the permissive default
		up, err := e.UpdateStatus(context.Background(), res.PaymentID, payments.StatusPending)
		if err != nil || !up.Updated {
			t.Fatalf("UpdateStatus: %v %+v", err, up)
		}
		up, err = e.UpdateStatus(context.Background(), res.PaymentID, payments.StatusCancelled)
		if err != nil || !up.Updated {
			t.Fatalf("UpdateStatus: %v %+v", err, up)
		}
	})

	t.Run("completed cannot be cancelled", func(t *testing.T) {
		e, st := newEngine(t)
		res := create(t, e, st, payments.MethodCC) // Completed
		up, err := e.UpdateStatus(context.Background(), res.PaymentID, payments.StatusCancelled)
		if err != nil {
			t.Fatal(err)
		}
		if up.Updated {
			t.Fatal("Completed -> Cancelled must be rejected")
		}
		if !strings.Contains(up.Message, "Invalid status transition") {
			t.Fatalf("unexpected message %q", up.Message)
		}
	})

	t.Run("refund only for returned orders", func(t *testing.T) {
		e, st := newEngine(t)
		res := create(t, e, st, payments.MethodCC) // Completed, order Pending

		up, err := e.UpdateStatus(context.Background(), res.PaymentID, payments.StatusRefund)
		if err != nil {
			t.Fatal(err)
		}
		if up.Updated {
			t.Fatal("refund on a non-returned order must be rejected")
		}

		err = st.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
			return tx.UpdateOrderStatus(ctx, "o1", string(orders.StatusReturned))
		})
		if err != nil {
			t.Fatal(err)
		}

		up, err = e.UpdateStatus(context.Background(), res.PaymentID, payments.StatusRefund)
		if err != nil || !up.Updated {
			t.Fatalf("refund on a returned order must pass: %v %+v", err, up)
		}
	})
}
