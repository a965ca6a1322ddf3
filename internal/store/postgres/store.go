package postgres

import (
	"context"
	"errors"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/store"
)

// Connect opens a pgx pool and registers the shopspring decimal codec so
// numeric columns scan directly into decimal.Decimal.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Store implements store.Gateway on Postgres.
type Store struct{ DB *pgxpool.Pool }

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct{ tx pgx.Tx }

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (t *pgTx) ProductPriceStock(ctx context.Context, productID string) (decimal.Decimal, int, error) {
	var price decimal.Decimal
	var stock int
	err := t.tx.QueryRow(ctx, `
		SELECT price, stock FROM products
		WHERE id = $1 AND is_deleted = FALSE`, productID).Scan(&price, &stock)
	if err != nil {
		return decimal.Decimal{}, 0, notFound(err)
	}
	return price, stock, nil
}

func (t *pgTx) ProductStockForUpdate(ctx context.Context, productID string) (int, error) {
	var stock int
	err := t.tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&stock)
	if err != nil {
		return 0, notFound(err)
	}
	return stock, nil
}

func (t *pgTx) DeductStock(ctx context.Context, productID string, qty int) error {
	_, err := t.tx.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id = $1`, productID, qty)
	return err
}

func (t *pgTx) InsertOrder(ctx context.Context, o store.Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders(id, customer_id, total_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.CustomerID, o.Total, o.Status, o.CreatedAt)
	return err
}

func (t *pgTx) InsertOrderItem(ctx context.Context, it store.OrderItem) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO order_items(order_id, product_id, qty, price_at_order)
		VALUES ($1, $2, $3, $4)`,
		it.OrderID, it.ProductID, it.Qty, it.PriceAtOrder)
	return err
}

func (t *pgTx) OrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := t.tx.QueryRow(ctx, `SELECT total_amount FROM orders WHERE id = $1`, orderID).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, notFound(err)
	}
	return total, nil
}

func (t *pgTx) OrderStatusForUpdate(ctx context.Context, orderID string) (string, error) {
	var s string
	err := t.tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&s)
	if err != nil {
		return "", notFound(err)
	}
	return s, nil
}

func (t *pgTx) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	_, err := t.tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	return err
}

func (t *pgTx) OrderItems(ctx context.Context, orderID string) ([]store.ItemQty, error) {
	rows, err := t.tx.Query(ctx, `SELECT product_id, qty FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ItemQty
	for rows.Next() {
		var it store.ItemQty
		if err := rows.Scan(&it.ProductID, &it.Qty); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (t *pgTx) PendingOrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := t.tx.QueryRow(ctx, `
		SELECT total_amount FROM orders
		WHERE id = $1 AND status = 'Pending'`, orderID).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, notFound(err)
	}
	return total, nil
}

func (t *pgTx) InsertPayment(ctx context.Context, p store.Payment) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO payments(id, order_id, amount, method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.OrderID, p.Amount, p.Method, p.Status, p.CreatedAt)
	return err
}

func (t *pgTx) UpdatePaymentStatus(ctx context.Context, paymentID, status string) error {
	_, err := t.tx.Exec(ctx, `UPDATE payments SET status = $2 WHERE id = $1`, paymentID, status)
	return err
}

func (t *pgTx) LatestPaymentForOrder(ctx context.Context, orderID string) (store.Payment, error) {
	var p store.Payment
	err := t.tx.QueryRow(ctx, `
		SELECT id, order_id, amount, method, status, created_at FROM payments
		WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`, orderID).
		Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt)
	if err != nil {
		return store.Payment{}, notFound(err)
	}
	return p, nil
}

func (t *pgTx) PaymentWithOrderStatus(ctx context.Context, paymentID string) (store.Payment, string, error) {
	var p store.Payment
	var orderStatus string
	err := t.tx.QueryRow(ctx, `
		SELECT p.id, p.order_id, p.amount, p.method, p.status, p.created_at, o.status
		FROM payments p INNER JOIN orders o ON p.order_id = o.id
		WHERE p.id = $1`, paymentID).
		Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt, &orderStatus)
	if err != nil {
		return store.Payment{}, "", notFound(err)
	}
	return p, orderStatus, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (store.Order, []store.OrderItem, error) {
	var o store.Order
	err := s.DB.QueryRow(ctx, `
		SELECT id, customer_id, total_amount, status, created_at
		FROM orders WHERE id = $1`, orderID).
		Scan(&o.ID, &o.CustomerID, &o.Total, &o.Status, &o.CreatedAt)
	if err != nil {
		return store.Order{}, nil, notFound(err)
	}

	rows, err := s.DB.Query(ctx, `
		SELECT order_id, product_id, qty, price_at_order
		FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return store.Order{}, nil, err
	}
	defer rows.Close()

	var items []store.OrderItem
	for rows.Next() {
		var it store.OrderItem
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.Qty, &it.PriceAtOrder); err != nil {
			return store.Order{}, nil, err
		}
		items = append(items, it)
	}
	return o, items, rows.Err()
}

func (s *Store) ListOrdersByStatus(ctx context.Context, status string) ([]store.Order, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, customer_id, total_amount, status, created_at
		FROM orders WHERE status = $1 ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Order
	for rows.Next() {
		var o store.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) GetPayment(ctx context.Context, paymentID string) (store.Payment, error) {
	var p store.Payment
	err := s.DB.QueryRow(ctx, `
		SELECT id, order_id, amount, method, status, created_at
		FROM payments WHERE id = $1`, paymentID).
		Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt)
	if err != nil {
		return store.Payment{}, notFound(err)
	}
	return p, nil
}
