package models

import "time"

// Event types
const (
	EventTypeProductCreated = "PRODUCT_CREATED"
	EventTypeProductUpdated = "PRODUCT_UPDATED"
	EventTypeProductDeleted = "PRODUCT_DELETED"
	EventTypeOrderPlaced    = "ORDER_PLACED"
	EventTypePaymentSuccess = "PAYMENT_SUCCESS"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductEvent published on every catalog mutation
type ProductEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Price     int64  `json:"price,omitempty"`
	Stock     int    `json:"stock,omitempty"`
}

// OrderPlacedEvent published when an order lands in history
type OrderPlacedEvent struct {
	BaseEvent
	OrderID       string          `json:"order_id"`
	Total         int64           `json:"total"`
	DeliveryFee   int64           `json:"delivery_fee"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Items         []OrderItemData `json:"items"`
}

// PaymentSuccessEvent published by the checkout after the gateway authorizes
type PaymentSuccessEvent struct {
	BaseEvent
	OrderID string        `json:"order_id"`
	Amount  int64         `json:"amount"`
	TxID    string        `json:"tx_id"`
	Method  PaymentMethod `json:"method"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}
