package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeCartItemAdded      = "cart.item_added"
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

// Event is a notification about something that already happened to a
// session's cart or orders.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"` // order id, or product id for cart events
	SessionID  string    `json:"session_id"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(eventType, key, sessionID string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		SessionID:  sessionID,
		Payload:    payload,
		OccurredAt: time.Now(),
	}
}

// Publisher delivers events. Callers treat delivery as best effort.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type OrderPlacedPayload struct {
	OrderID   string `json:"order_id"`
	Total     string `json:"total"`
	LineCount int    `json:"line_count"`
	Status    string `json:"status"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

type CartItemAddedPayload struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}
