package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusReviewing OrderStatus = "reviewing"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID              string      `json:"id"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone,omitempty"`
	ShippingAddress string      `json:"shipping_address"`
	PaymentMethod   string      `json:"payment_method"`
	Status          OrderStatus `json:"status"`
	Subtotal        float64     `json:"subtotal"`
	Shipping        float64     `json:"shipping"`
	Tax             float64     `json:"tax"`
	Total           float64     `json:"total"`
	TrackingNumber  string      `json:"tracking_number,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []OrderItem `json:"order_items"`
}

// OrderItem is a snapshot taken at checkout. Price is the unit price at the
// time the order was placed; later product price changes never affect it.
type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type CreateOrderItem struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	Price     float64 `json:"price" binding:"gte=0"`
}

type CreateOrderRequest struct {
	CustomerName    string            `json:"customerName" binding:"required"`
	CustomerEmail   string            `json:"customerEmail" binding:"required,email"`
	CustomerPhone   string            `json:"customerPhone"`
	ShippingAddress string            `json:"shippingAddress" binding:"required"`
	PaymentMethod   string            `json:"paymentMethod"`
	Items           []CreateOrderItem `json:"items" binding:"required,min=1,dive"`
	Subtotal        float64           `json:"subtotal" binding:"gte=0"`
	Shipping        float64           `json:"shipping" binding:"gte=0"`
	Tax             float64           `json:"tax" binding:"gte=0"`
	Total           float64           `json:"total" binding:"gte=0"`
}

// UpdateOrderRequest is a partial update; nil fields are left unchanged.
type UpdateOrderRequest struct {
	Status         *OrderStatus `json:"status"`
	PaymentMethod  *string      `json:"paymentMethod"`
	TrackingNumber *string      `json:"trackingNumber"`
}

// OrderEvent is published to Kafka on order creation and status changes.
type OrderEvent struct {
	OrderID       string      `json:"order_id"`
	CustomerEmail string      `json:"customer_email"`
	Status        OrderStatus `json:"status"`
	Total         float64     `json:"total"`
	EventType     string      `json:"event_type"` // order_created, order_status_changed
}
