package orders_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/orders"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/store"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/store/memory"
)

func newEngine(t *testing.T) (*orders.Engine, *memory.Store) {
	t.Helper()
	st := memory.New()
	return orders.NewEngine(st, zap.NewNop()), st
}

func seedProduct(st *memory.Store, id, price string, stock int, deleted bool) {
	st.SeedProduct(store.Product{
		ID:        id,
		Name:      "product " + id,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		IsDeleted: deleted,
	})
}

func TestCreateOrderComputesExactTotal(t *testing.T) {
	e, st := newEngine(t)
	seedProduct(st, "p1", "10.00", 5, false)
	seedProduct(st, "p2", "3.55", 10, false)

	res, err := e.CreateOrder(context.Background(), orders.CreateOrderInput{
		CustomerID: "c1",
		Items: []orders.ItemInput{
			{ProductID: "p1", Qty: 2},
			{ProductID: "p2", Qty: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if !res.Created {
		t.Fatalf("expected creation, got rejection: %s", res.Message)
	}
	if want := decimal.RequireFromString("30.65"); !res.Total.Equal(want) {
		t.Fatalf("total = %s, want %s", res.Total, want)
	}
	if res.Status != orders.StatusPending {
		t.Fatalf("status = %s, want Pending", res.Status)
	}

	o, err := e.Get(context.Background(), res.OrderID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.PriceAtOrder.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	if !sum.Equal(o.Total) {
		t.Fatalf("sum of items %s != order total %s", sum, o.Total)
	}

	// stock is checked, never deducted, at creation time
	if p, _ := st.Product("p1"); p.Stock != 5 {
		t.Fatalf("stock changed at creation: %d", p.Stock)
	}
}

func TestCreateOrderCapturesPriceAtOrder(t *testing.T) {
	e, st := newEngine(t)
	seedProduct(st, "p1", "10.00", 5, false)

	res, err := e.CreateOrder(context.Background(), orders.CreateOrderInput{
		CustomerID: "c1",
		Items:      []orders.ItemInput{{ProductID: "p1", Qty: 1}},
	})
	if err != nil || !res.Created {
		t.Fatalf("CreateOrder: %v %+v", err, res)
	}

	// catalog price changes must not touch the captured line price
	seedProduct(st, "p1", "99.99", 5, false)

	o, err := e.Get(context.Background(), res.OrderID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if want := decimal.RequireFromString("10.00"); !o.Items[0].PriceAtOrder.Equal(want) {
		t.Fatalf("price_at_order = %s, want %s", o.Items[0].PriceAtOrder, want)
	}
}

func TestCreateOrderRejections(t *testing.T) {
	e, st := newEngine(t)
	seedProduct(st, "p1", "10.00", 5, false)
	seedProduct(st, "gone", "1.00", 5, true)

	tests := []struct {
		name    string
		items   []orders.ItemInput
		wantMsg string
	}{
		{"missing product", []orders.ItemInput{{ProductID: "nope", Qty: 1}}, "Product not found for product nope"},
		{"soft-deleted product", []orders.ItemInput{{ProductID: "gone", Qty: 1}}, "Product not found for product gone"},
		{"insufficient stock", []orders.ItemInput{{ProductID: "p1", Qty: 10}}, "Insufficient stock for product p1"},
		{"zero quantity", []orders.ItemInput{{ProductID: "p1", Qty: 0}}, "Invalid quantity for product p1"},
		{"no items", nil, "at least one item"},
		{"partial failure aborts all", []orders.ItemInput{{ProductID: "p1", Qty: 1}, {ProductID: "nope", Qty: 1}}, "Product not found for product nope"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := e.CreateOrder(context.Background(), orders.CreateOrderInput{CustomerID: "c1", Items: tc.items})
			if err != nil {
				t.Fatalf("rejection must not be an error: %v", err)
			}
			if res.Created {
				t.Fatal("expected rejection")
			}
			if !strings.Contains(res.Message, tc.wantMsg) {
				t.Fatalf("message %q does not contain %q", res.Message, tc.wantMsg)
			}
		})
	}

	// none of the rejected attempts may have left rows behind
	list, err := e.ListByStatus(context.Background(), orders.StatusPending)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("found %d orders after rejected creations", len(list))
	}
}

func TestUpdateStatus(t *testing.T) {
	e, st := newEngine(t)
	seedProduct(st, "p1", "10.00", 5, false)

	create := func(t *testing.T) string {
		res, err := e.CreateOrder(context.Background(), orders.CreateOrderInput{
			CustomerID: "c1",
			Items:      []orders.ItemInput{{ProductID: "p1", Qty: 1}},
		})
		if err != nil || !res.Created {
			t.Fatalf("CreateOrder: %v %+v", err, res)
		}
		return res.OrderID
	}

	t.Run("pending to processing", func(t *testing.T) {
		id := create(t)
		res, err := e.UpdateStatus(context.Background(), id, orders.StatusProcessing)
		if err != nil || !res.Updated {
			t.Fatalf("UpdateStatus: %v %+v", err, res)
		}
	})

	t.Run("pending to cancelled", func(t *testing.T) {
		id := create(t)
		res, err := e.UpdateStatus(context.Background(), id, orders.StatusCancelled)
		if err != nil || !res.Updated {
			t.Fatalf("UpdateStatus: %v %+v", err, res)
		}
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		id := create(t)
		if _, err := e.UpdateStatus(context.Background(), id, orders.StatusCancelled); err != nil {
			t.Fatal(err)
		}
		res, err := e.UpdateStatus(context.Background(), id, orders.StatusPending)
		if err != nil {
			t.Fatal(err)
		}
		if res.Updated {
			t.Fatal("Cancelled -> Pending must be rejected")
		}
		if !strings.Contains(res.Message, "Invalid status transition") {
			t.Fatalf("unexpected message %q", res.Message)
		}
	})

	t.Run("delivered cannot regress", func(t *testing.T) {
		id := create(t)
		for _, s := range []orders.Status{orders.StatusProcessing, orders.StatusDelivered} {
			if _, err := e.UpdateStatus(context.Background(), id, s); err != nil {
				t.Fatal(err)
			}
		}
		res, err := e.UpdateStatus(context.Background(), id, orders.StatusProcessing)
		if err != nil {
			t.Fatal(err)
		}
		if res.Updated {
			t.Fatal("Delivered -> Processing must be rejected")
		}
	})

	t.Run("missing order is a soft rejection", func(t *testing.T) {
		res, err := e.UpdateStatus(context.Background(), "nope", orders.StatusProcessing)
		if err != nil {
			t.Fatalf("missing order must not be an error: %v", err)
		}
		if res.Updated || res.Message != "Order not found" {
			t.Fatalf("unexpected result %+v", res)
		}
	})
}
