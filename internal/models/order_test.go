package models

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderPaid, true},
		{OrderPending, OrderFailed, true},
		{OrderPending, OrderPending, false},
		{OrderPaid, OrderPending, false},
		{OrderPaid, OrderFailed, false},
		{OrderPaid, OrderPaid, false},
		{OrderFailed, OrderPaid, false},
		{OrderFailed, OrderPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPaidAndFailedAreTerminal(t *testing.T) {
	all := []OrderStatus{OrderPending, OrderPaid, OrderFailed}
	for _, to := range all {
		if OrderPaid.CanTransition(to) {
			t.Errorf("paid must be terminal, allowed -> %s", to)
		}
		if OrderFailed.CanTransition(to) {
			t.Errorf("failed must be terminal, allowed -> %s", to)
		}
	}
}
