package broker

import "time"

// OrderCreatedEvent notifies downstream services (notifications,
// fulfilment) that an order was persisted.
type OrderCreatedEvent struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email,omitempty"`
	Total     int64     `json:"total"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}
