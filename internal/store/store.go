package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a row does not exist (or is soft-deleted,
// for tables that carry the flag).
var ErrNotFound = errors.New("record not found")

type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	IsDeleted   bool
}

type Order struct {
	ID         string
	CustomerID string
	Total      decimal.Decimal
	Status     string
	CreatedAt  time.Time
}

type OrderItem struct {
	OrderID      string
	ProductID    string
	Qty          int
	PriceAtOrder decimal.Decimal
}

type Payment struct {
	ID        string
	OrderID   string
	Amount    decimal.Decimal
	Method    string
	Status    string
	CreatedAt time.Time
}

type ItemQty struct {
	ProductID string
	Qty       int
}

// Tx is the set of row operations available inside one atomic scope.
// Every method maps to a single parameterized statement.
type Tx interface {
	// ProductPriceStock reads price and stock for a live (non-deleted) product.
	ProductPriceStock(ctx context.Context, productID string) (price decimal.Decimal, stock int, err error)
	// ProductStockForUpdate locks the product row for the rest of the tx.
	ProductStockForUpdate(ctx context.Context, productID string) (stock int, err error)
	DeductStock(ctx context.Context, productID string, qty int) error

	InsertOrder(ctx context.Context, o Order) error
	InsertOrderItem(ctx context.Context, it OrderItem) error
	OrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error)
	// OrderStatusForUpdate locks the order row so a concurrent transition
	// on the same order cannot produce a lost update.
	OrderStatusForUpdate(ctx context.Context, orderID string) (string, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	OrderItems(ctx context.Context, orderID string) ([]ItemQty, error)

	// PendingOrderTotal reads the total of an order currently in Pending
	// status; any other status reports ErrNotFound.
	PendingOrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error)
	InsertPayment(ctx context.Context, p Payment) error
	UpdatePaymentStatus(ctx context.Context, paymentID, status string) error
	// LatestPaymentForOrder returns the most recent payment attempt.
	LatestPaymentForOrder(ctx context.Context, orderID string) (Payment, error)
	// PaymentWithOrderStatus joins the payment row with its order's status.
	PaymentWithOrderStatus(ctx context.Context, paymentID string) (Payment, string, error)
}

// Gateway executes work against the relational tables. InTx runs fn inside
// one transaction: fn returning an error rolls everything back.
type Gateway interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetOrder(ctx context.Context, orderID string) (Order, []OrderItem, error)
	ListOrdersByStatus(ctx context.Context, status string) ([]Order, error)
	GetPayment(ctx context.Context, paymentID string) (Payment, error)
}
