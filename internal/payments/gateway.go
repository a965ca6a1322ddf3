package payments

// Recognized payment method tags.
const (
	MethodCOD = "COD"
	MethodCC  = "CC"
	MethodDC  = "DC"
)

var gatewayOutcome = map[string]Status{
	MethodCOD: StatusCompleted,
	MethodCC:  StatusCompleted,
	MethodDC:  StatusFailed,
}

// ResolveGateway stands in for a third-party payment gateway: the outcome is
// deterministic per method, and unrecognized methods fail.
func ResolveGateway(method string) Status {
	if s, ok := gatewayOutcome[method]; ok {
		return s
	}
	return StatusFailed
}
