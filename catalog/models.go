package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryMethod tells how the customer wants to receive an order.
type DeliveryMethod string

const (
	// DeliveryCourier means the order is delivered to an address.
	DeliveryCourier DeliveryMethod = "delivery"
	// DeliveryPickup means the customer collects the order themselves.
	DeliveryPickup DeliveryMethod = "pickup"
)

// ValidDeliveryMethod reports whether the value is a known delivery method.
func ValidDeliveryMethod(v string) bool {
	switch DeliveryMethod(v) {
	case DeliveryCourier, DeliveryPickup:
		return true
	}
	return false
}

// OrderStatus is the review state of an order.
type OrderStatus string

const (
	// StatusNew marks an order awaiting operator review.
	StatusNew OrderStatus = "new"
	// StatusConfirmed marks an order accepted by the operator.
	StatusConfirmed OrderStatus = "confirmed"
	// StatusCancelled marks an order rejected by the operator.
	StatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether the value is a known order status.
func ValidOrderStatus(v string) bool {
	switch OrderStatus(v) {
	case StatusNew, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Category groups items under a unique display name.
type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Item is a single catalog entry. Items are never mutated in place;
// edits are delete+recreate. Description and PhotoID are optional
// (empty string means absent).
type Item struct {
	ID          int64           `db:"id"`
	CategoryID  int64           `db:"category_id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	PhotoID     string          `db:"photo_id"`
}

// Order records a completed order flow. ItemID may reference an item
// that has since been deleted; callers must tolerate that.
type Order struct {
	ID             int64           `db:"id"`
	ItemID         int64           `db:"item_id"`
	CustomerID     int64           `db:"customer_id"`
	CustomerName   string          `db:"customer_name"`
	CustomerPhone  string          `db:"customer_phone"`
	DeliveryMethod DeliveryMethod  `db:"delivery_method"`
	Address        string          `db:"address"`
	Status         OrderStatus     `db:"status"`
	CreatedAt      time.Time       `db:"created_at"`
}

// ItemDraft carries the fields collected by the add-item flow.
type ItemDraft struct {
	CategoryID  int64
	Name        string
	Description string
	Price       decimal.Decimal
	PhotoID     string
}

// OrderDraft carries the fields collected by the order flow.
// Address must be empty unless Method is DeliveryCourier.
type OrderDraft struct {
	ItemID        int64
	CustomerID    int64
	CustomerName  string
	CustomerPhone string
	Method        DeliveryMethod
	Address       string
}
