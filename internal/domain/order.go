package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusStarted    OrderStatus = "started"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusDelivered  OrderStatus = "delivered"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusStarted:    0,
	OrderStatusProcessing: 1,
	OrderStatusCompleted:  2,
	OrderStatusDelivered:  3,
}

func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered
}

// CanAdvanceTo reports whether moving from s to next goes strictly forward.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// Order is created at checkout from a cart snapshot. Only Status changes
// afterwards.
type Order struct {
	ID        string          `json:"id"`
	PlacedAt  time.Time       `json:"placed_at"`
	Total     decimal.Decimal `json:"total"`
	LineCount int             `json:"items"`
	Status    OrderStatus     `json:"status"`
}
