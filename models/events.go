package models

import "time"

const (
	EventOrderCreated       = "created"
	EventOrderStatusUpdated = "status_updated"
)

type OrderEvent struct {
	OrderID  int64       `json:"order_id"`
	UserID   int64       `json:"user_id"`
	Type     string      `json:"type"`
	Status   OrderStatus `json:"status"`
	Total    float64     `json:"total"`
	Occurred time.Time   `json:"occurred"`
}

func NewOrderEvent(o *Order, eventType string, now time.Time) OrderEvent {
	return OrderEvent{
		OrderID:  o.ID,
		UserID:   o.Client.ID,
		Type:     eventType,
		Status:   o.Status,
		Total:    o.Total(),
		Occurred: now.UTC(),
	}
}
