package payments

import "testing"

func TestResolveGateway(t *testing.T) {
	tests := []struct {
		method string
		want   Status
	}{
		{MethodCOD, StatusCompleted},
		{MethodCC, StatusCompleted},
		{MethodDC, StatusFailed},
		{"PAYPAL", StatusFailed},
		{"", StatusFailed},
	}
	for _, tc := range tests {
		if got := ResolveGateway(tc.method); got != tc.want {
			t.Errorf("ResolveGateway(%q) = %s, want %s", tc.method, got, tc.want)
		}
	}
}
