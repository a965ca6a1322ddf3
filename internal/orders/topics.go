package orders

const (
	TopicOrderCreated     = "order.created"
	TopicOrderStatus      = "order.status"
	TopicOrderConfirmed   = "order.confirmed"
	TopicPaymentProcessed = "payment.processed"
	TopicPaymentStatus    = "payment.status"
)

// Partition key = order_id so every event of one order keeps its ordering.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
