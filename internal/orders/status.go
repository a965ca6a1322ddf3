package orders

type Status string

const (
	StatusPending    Status = "Pending"
	StatusConfirmed  Status = "Confirmed"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusReturned   Status = "Returned"
	StatusCancelled  Status = "Cancelled"
)

// Confirmed is entered only via Engine.Confirm, never via a generic status
// update. Returned and Cancelled are terminal.
var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusProcessing: true, StatusCancelled: true},
	StatusConfirmed:  {StatusProcessing: true},
	StatusProcessing: {StatusShipped: true, StatusDelivered: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {StatusReturned: true},
	StatusReturned:   {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
