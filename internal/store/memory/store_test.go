package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/store"
)

func TestInTxRollsBackOnError(t *testing.T) {
	s := New()
	s.SeedProduct(store.Product{ID: "p1", Price: decimal.New(10, 0), Stock: 5})

	boom := errors.New("boom")
	err := s.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertOrder(ctx, store.Order{ID: "o1", Status: "Pending", CreatedAt: time.Now()}); err != nil {
			return err
		}
		if err := tx.DeductStock(ctx, "p1", 3); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	if _, _, err := s.GetOrder(context.Background(), "o1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("order o1 survived rollback: %v", err)
	}
	if p, _ := s.Product("p1"); p.Stock != 5 {
		t.Fatalf("stock after rollback = %d, want 5", p.Stock)
	}
}

func TestInTxCommits(t *testing.T) {
	s := New()
	s.SeedProduct(store.Product{ID: "p1", Price: decimal.New(10, 0), Stock: 5})

	err := s.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertOrder(ctx, store.Order{ID: "o1", Status: "Pending", CreatedAt: time.Now()}); err != nil {
			return err
		}
		return tx.DeductStock(ctx, "p1", 3)
	})
	if err != nil {
		t.Fatal(err)
	}

	o, _, err := s.GetOrder(context.Background(), "o1")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != "Pending" {
		t.Fatalf("status = %s", o.Status)
	}
	if p, _ := s.Product("p1"); p.Stock != 2 {
		t.Fatalf("stock = %d, want 2", p.Stock)
	}
}
