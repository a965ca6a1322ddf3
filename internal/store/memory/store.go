package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/store"
)

// Store is an in-memory store.Gateway. Transactions run against a copy of
// the state under the lock; the copy replaces the live state only on commit,
// so a failed fn leaves no partial writes.
type Store struct {
	mu sync.Mutex
	st state
}

type state struct {
	products map[string]store.Product
	orders   map[string]store.Order
	items    []store.OrderItem
	payments []store.Payment
}

func New() *Store {
	return &Store{st: state{
		products: make(map[string]store.Product),
		orders:   make(map[string]store.Order),
	}}
}

// SeedProduct installs or replaces a product row.
func (s *Store) SeedProduct(p store.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

// Product returns a copy of a product row regardless of the deleted flag.
func (s *Store) Product(id string) (store.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	return p, ok
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, &memTx{st: &work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (st state) clone() state {
	out := state{
		products: make(map[string]store.Product, len(st.products)),
		orders:   make(map[string]store.Order, len(st.orders)),
		items:    append([]store.OrderItem(nil), st.items...),
		payments: append([]store.Payment(nil), st.payments...),
	}
	for k, v := range st.products {
		out.products[k] = v
	}
	for k, v := range st.orders {
		out.orders[k] = v
	}
	return out
}

type memTx struct{ st *state }

func (t *memTx) ProductPriceStock(ctx context.Context, productID string) (decimal.Decimal, int, error) {
	p, ok := t.st.products[productID]
	if !ok || p.IsDeleted {
		return decimal.Decimal{}, 0, store.ErrNotFound
	}
	return p.Price, p.Stock, nil
}

func (t *memTx) ProductStockForUpdate(ctx context.Context, productID string) (int, error) {
	p, ok := t.st.products[productID]
	if !ok {
		return 0, store.ErrNotFound
	}
	return p.Stock, nil
}

func (t *memTx) DeductStock(ctx context.Context, productID string, qty int) error {
	p, ok := t.st.products[productID]
	if !ok {
		return store.ErrNotFound
	}
	p.Stock -= qty
	t.st.products[productID] = p
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, o store.Order) error {
	t.st.orders[o.ID] = o
	return nil
}

func (t *memTx) InsertOrderItem(ctx context.Context, it store.OrderItem) error {
	t.st.items = append(t.st.items, it)
	return nil
}

func (t *memTx) OrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	o, ok := t.st.orders[orderID]
	if !ok {
		return decimal.Decimal{}, store.ErrNotFound
	}
	return o.Total, nil
}

func (t *memTx) OrderStatusForUpdate(ctx context.Context, orderID string) (string, error) {
	o, ok := t.st.orders[orderID]
	if !ok {
		return "", store.ErrNotFound
	}
	return o.Status, nil
}

func (t *memTx) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	o, ok := t.st.orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	t.st.orders[orderID] = o
	return nil
}

func (t *memTx) OrderItems(ctx context.Context, orderID string) ([]store.ItemQty, error) {
	var out []store.ItemQty
	for _, it := range t.st.items {
		if it.OrderID == orderID {
			out = append(out, store.ItemQty{ProductID: it.ProductID, Qty: it.Qty})
		}
	}
	return out, nil
}

func (t *memTx) PendingOrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	o, ok := t.st.orders[orderID]
	if !ok || o.Status != "Pending" {
		return decimal.Decimal{}, store.ErrNotFound
	}
	return o.Total, nil
}

func (t *memTx) InsertPayment(ctx context.Context, p store.Payment) error {
	t.st.payments = append(t.st.payments, p)
	return nil
}

func (t *memTx) UpdatePaymentStatus(ctx context.Context, paymentID, status string) error {
	for i := range t.st.payments {
		if t.st.payments[i].ID == paymentID {
			t.st.payments[i].Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

func (t *memTx) LatestPaymentForOrder(ctx context.Context, orderID string) (store.Payment, error) {
	var found []store.Payment
	for _, p := range t.st.payments {
		if p.OrderID == orderID {
			found = append(found, p)
		}
	}
	if len(found) == 0 {
		return store.Payment{}, store.ErrNotFound
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	return found[0], nil
}

func (t *memTx) PaymentWithOrderStatus(ctx context.Context, paymentID string) (store.Payment, string, error) {
	for _, p := range t.st.payments {
		if p.ID == paymentID {
			o, ok := t.st.orders[p.OrderID]
			if !ok {
				return store.Payment{}, "", store.ErrNotFound
			}
			return p, o.Status, nil
		}
	}
	return store.Payment{}, "", store.ErrNotFound
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (store.Order, []store.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.st.orders[orderID]
	if !ok {
		return store.Order{}, nil, store.ErrNotFound
	}
	var items []store.OrderItem
	for _, it := range s.st.items {
		if it.OrderID == orderID {
			items = append(items, it)
		}
	}
	return o, items, nil
}

func (s *Store) ListOrdersByStatus(ctx context.Context, status string) ([]store.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.Order
	for _, o := range s.st.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetPayment(ctx context.Context, paymentID string) (store.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.st.payments {
		if p.ID == paymentID {
			return p, nil
		}
	}
	return store.Payment{}, store.ErrNotFound
}
