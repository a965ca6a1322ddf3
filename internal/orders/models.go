package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemInput struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type CreateOrderInput struct {
	CustomerID string      `json:"customer_id"`
	Items      []ItemInput `json:"items"`
}

// CreateResult reports the outcome of an order creation. Created=false with
// a nil error is a business-rule rejection (bad product, short stock);
// nothing was written in that case.
type CreateResult struct {
	OrderID string          `json:"order_id,omitempty"`
	Status  Status          `json:"status,omitempty"`
	Total   decimal.Decimal `json:"total_amount"`
	Created bool            `json:"created"`
	Message string          `json:"message"`
}

type StatusUpdateResult struct {
	OrderID string `json:"order_id"`
	Status  Status `json:"status,omitempty"`
	Updated bool   `json:"updated"`
	Message string `json:"message"`
}

type ConfirmResult struct {
	OrderID   string `json:"order_id"`
	Confirmed bool   `json:"confirmed"`
	Message   string `json:"message"`
}

type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Total      decimal.Decimal `json:"total_amount"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	ProductID    string          `json:"product_id"`
	Qty          int             `json:"qty"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
}
