package payments

import "github.com/ariefcatur/go-commerce-fulfillment/internal/orders"

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
	StatusCancelled Status = "Cancelled"
	StatusRefund    Status = "Refund"
)

// CanTransition guards payment status changes. The guard depends on the
// current payment status, the requested status and the owning order's
// status. Rules are evaluated in order; anything not explicitly rejected is
// allowed, so the trailing allow is deliberately permissive.
func CanTransition(current, next Status, orderStatus orders.Status) bool {
	// Completed payments cannot change except into a refund.
	if current == StatusCompleted && next != StatusRefund {
		return false
	}
	// Pending payments may always be cancelled.
	if current == StatusPending && next == StatusCancelled {
		return true
	}
	// Refunds only for returned orders.
	if current == StatusCompleted && next == StatusRefund && orderStatus != orders.StatusReturned {
		return false
	}
	// Completed or cancelled payments cannot be failed.
	if next == StatusFailed && (current == StatusCompleted || current == StatusCancelled) {
		return false
	}
	// Pending payments complete once the order is shipped or confirmed.
	if current == StatusPending && next == StatusCompleted &&
		(orderStatus == orders.StatusShipped || orderStatus == orders.StatusConfirmed) {
		return true
	}
	return true
}
