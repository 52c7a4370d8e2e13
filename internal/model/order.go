package model

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. Transitions after PENDING are driven by external
// payment/fulfilment events.
const (
	OrderStatusPending    = "PENDING"
	OrderStatusPaid       = "PAID"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
)

// EventOrderPlaced is the label of the first audit event of every order.
const EventOrderPlaced = "Order Placed"

// Order represents a customer order. All amounts are integer minor
// currency units and satisfy subtotal + tax + shipping == total.
type Order struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           string    `json:"userId" db:"user_id"`
	Email            *string   `json:"email,omitempty" db:"email"`
	PaymentReference *string   `json:"paymentReference,omitempty" db:"payment_reference"`
	Status           string    `json:"status" db:"status"`
	Subtotal         int64     `json:"subtotal" db:"subtotal"`
	Tax              int64     `json:"tax" db:"tax"`
	Shipping         int64     `json:"shipping" db:"shipping"`
	Total            int64     `json:"total" db:"total"`
	Currency         string    `json:"currency" db:"currency"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderItem is an immutable line item. Name, variant name and SKU are
// snapshotted at order time so later catalogue edits never change
// historical orders.
type OrderItem struct {
	ID          uuid.UUID `json:"-" db:"id"`
	OrderID     uuid.UUID `json:"-" db:"order_id"`
	ProductID   int64     `json:"productId" db:"product_id"`
	VariantID   int64     `json:"variantId" db:"variant_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Price       int64     `json:"price" db:"price"`
	Name        string    `json:"name" db:"name"`
	VariantName string    `json:"variantName" db:"variant_name"`
	SKU         string    `json:"sku" db:"sku"`
}

// OrderEvent is one row of the append-only order audit trail.
type OrderEvent struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// OrderLineRequest is a single cart line submitted by a client. Any price
// a client sends alongside these fields is ignored; unit prices are always
// re-derived from the persisted variant.
type OrderLineRequest struct {
	ProductID int64 `json:"productId"`
	VariantID int64 `json:"variantId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is the payload of the internal order-creation endpoint.
type CreateOrderRequest struct {
	UserID           string             `json:"userId"`
	Email            *string            `json:"email,omitempty"`
	PaymentReference *string            `json:"paymentReference,omitempty"`
	Tax              int64              `json:"tax"`
	Shipping         int64              `json:"shipping"`
	Currency         string             `json:"currency,omitempty"`
	Items            []OrderLineRequest `json:"items"`
}

// CreateOrderResponse reports the outcome of order creation. Replayed is
// true when the payment reference matched an existing order and no new
// rows were written.
type CreateOrderResponse struct {
	Success  bool      `json:"success"`
	OrderID  uuid.UUID `json:"orderId"`
	Replayed bool      `json:"replayed,omitempty"`
}

// OrderDetail is an order with its line items and audit trail.
type OrderDetail struct {
	Order  Order        `json:"order"`
	Items  []OrderItem  `json:"items"`
	Events []OrderEvent `json:"events"`
}
