package orders

import "testing"

func TestCanTransition(t *testing.T) {
	all := []Status{
		StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusReturned, StatusCancelled,
	}
	allowed := map[Status][]Status{
		StatusPending:    {StatusProcessing, StatusCancelled},
		StatusConfirmed:  {StatusProcessing},
		StatusProcessing: {StatusShipped, StatusDelivered},
		StatusShipped:    {StatusDelivered},
		StatusDelivered:  {StatusReturned},
		StatusReturned:   {},
		StatusCancelled:  {},
	}

	for _, from := range all {
		want := map[Status]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range all {
			if got := CanTransition(from, to); got != want[to] {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want[to])
			}
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if CanTransition("Bogus", StatusProcessing) {
		t.Error("unknown source status must not transition")
	}
	if CanTransition(StatusPending, "Bogus") {
		t.Error("unknown target status must not be reachable")
	}
}
