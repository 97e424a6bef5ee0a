package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the server-reported status of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// statusRank orders the forward-moving statuses. CANCELLED sits outside
// the sequence and is handled separately.
var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusCompleted: 4,
}

// Known reports whether s is a status this client understands.
func (s OrderStatus) Known() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transitions are expected from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether moving from one status to another obeys
// the lifecycle: forward-only through the fixed sequence, with
// CANCELLED reachable from any non-terminal status. Staying on the same
// status is allowed (the server may report no change between polls).
func CanTransition(from, to OrderStatus) bool {
	if !from.Known() || !to.Known() {
		return false
	}
	if from == to {
		return true
	}
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	if from == StatusCancelled {
		return false
	}
	return statusRank[to] > statusRank[from]
}

// OrderLineItem represents a snapshot of a cart line frozen at order
// creation time, independent of later menu price changes.
type OrderLineItem struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// Order represents the server's authoritative record of a placed
// purchase. The client never mutates it; it only replaces its local
// view by re-fetching.
type Order struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Items       []OrderLineItem `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
