package payments

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreatePaymentInput struct {
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
}

// CreateResult reports a payment attempt. Created=true means a row was
// written, even when the gateway resolved the payment to Failed.
type CreateResult struct {
	PaymentID string `json:"payment_id,omitempty"`
	Status    Status `json:"status,omitempty"`
	Created   bool   `json:"created"`
	Message   string `json:"message"`
}

type StatusUpdateResult struct {
	PaymentID string `json:"payment_id"`
	Previous  Status `json:"previous_status,omitempty"`
	Status    Status `json:"status,omitempty"`
	Updated   bool   `json:"updated"`
	Message   string `json:"message"`
}

type Payment struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
