package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated         = "OrderCreated"
	EventOrderStatusChanged   = "OrderStatusChanged"
	EventOrderConfirmed       = "OrderConfirmed"
	EventPaymentProcessed     = "PaymentProcessed"
	EventPaymentStatusChanged = "PaymentStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Total      decimal.Decimal `json:"total_amount"`
	Status     string          `json:"status"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type OrderConfirmedPayload struct {
	OrderID string `json:"order_id"`
}

type PaymentProcessedPayload struct {
	OrderID   string          `json:"order_id"`
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
}

type PaymentStatusChangedPayload struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}
