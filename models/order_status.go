package models

import "fmt"

type OrderStatus string

const (
	StatusWaitingPayment OrderStatus = "WAITING_PAYMENT"
	StatusPaid           OrderStatus = "PAID"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCanceled       OrderStatus = "CANCELED"
)

// OrderTransition names an edge of the order lifecycle.
type OrderTransition string

const (
	TransitionPay     OrderTransition = "PAY"
	TransitionDeliver OrderTransition = "DELIVER"
	TransitionCancel  OrderTransition = "CANCEL"
)

var orderTransitions = map[OrderStatus]map[OrderTransition]OrderStatus{
	StatusWaitingPayment: {
		TransitionPay:    StatusPaid,
		TransitionCancel: StatusCanceled,
	},
	StatusPaid: {
		TransitionDeliver: StatusDelivered,
		TransitionCancel:  StatusCanceled,
	},
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusWaitingPayment, StatusPaid, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// Next returns the status reached from s through t, or ErrInvalidTransition
// when the edge is not in the lifecycle table.
func (s OrderStatus) Next(t OrderTransition) (OrderStatus, error) {
	next, ok := orderTransitions[s][t]
	if !ok {
		return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, t, s)
	}
	return next, nil
}

func ParseOrderTransition(s string) (OrderTransition, error) {
	switch t := OrderTransition(s); t {
	case TransitionPay, TransitionDeliver, TransitionCancel:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown transition %q", ErrInvalidInput, s)
}
