package service

import (
	"testing"

	"github.com/bistro-next/internal/constants"
)

func TestTransitionGraph(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusConfirmed, true},
		{constants.OrderStatusPending, constants.OrderStatusCancelled, true},
		{constants.OrderStatusPending, constants.OrderStatusPreparing, false},
		{constants.OrderStatusPending, constants.OrderStatusDelivered, false},
		{constants.OrderStatusConfirmed, constants.OrderStatusPreparing, true},
		{constants.OrderStatusConfirmed, constants.OrderStatusCancelled, true},
		{constants.OrderStatusConfirmed, constants.OrderStatusReady, false},
		{constants.OrderStatusPreparing, constants.OrderStatusReady, true},
		{constants.OrderStatusPreparing, constants.OrderStatusCancelled, false},
		{constants.OrderStatusReady, constants.OrderStatusOutForDelivery, true},
		{constants.OrderStatusReady, constants.OrderStatusCancelled, false},
		{constants.OrderStatusOutForDelivery, constants.OrderStatusDelivered, true},
		{constants.OrderStatusOutForDelivery, constants.OrderStatusCancelled, false},
		{constants.OrderStatusDelivered, constants.OrderStatusPending, false},
		{constants.OrderStatusDelivered, constants.OrderStatusConfirmed, false},
		{constants.OrderStatusCancelled, constants.OrderStatusPending, false},
		{constants.OrderStatusCancelled, constants.OrderStatusConfirmed, false},
		{"unknown", constants.OrderStatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := isTransitionAllowed(tc.from, tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestTerminalAndCancellableStatus(t *testing.T) {
	if !isTerminalStatus(constants.OrderStatusDelivered) || !isTerminalStatus(constants.OrderStatusCancelled) {
		t.Fatalf("delivered and cancelled must be terminal")
	}
	for _, status := range []string{
		constants.OrderStatusPending,
		constants.OrderStatusConfirmed,
		constants.OrderStatusPreparing,
		constants.OrderStatusReady,
		constants.OrderStatusOutForDelivery,
	} {
		if isTerminalStatus(status) {
			t.Fatalf("%s must not be terminal", status)
		}
	}

	if !isCancellableStatus(constants.OrderStatusPending) || !isCancellableStatus(constants.OrderStatusConfirmed) {
		t.Fatalf("pending and confirmed must be cancellable")
	}
	if isCancellableStatus(constants.OrderStatusPreparing) || isCancellableStatus(constants.OrderStatusDelivered) {
		t.Fatalf("preparing and delivered must not be cancellable")
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, status := range []string{
		constants.OrderStatusPending,
		constants.OrderStatusConfirmed,
		constants.OrderStatusPreparing,
		constants.OrderStatusReady,
		constants.OrderStatusOutForDelivery,
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled,
	} {
		if !isValidOrderStatus(status) {
			t.Fatalf("%s must be a valid status", status)
		}
	}
	for _, status := range []string{"", "paid", "PENDING", "done"} {
		if isValidOrderStatus(status) {
			t.Fatalf("%q must not be a valid status", status)
		}
	}
}
