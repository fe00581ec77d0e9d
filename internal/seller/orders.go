package seller

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound     = errors.New("seller order not found")
	ErrAlreadyDelivered  = errors.New("order is already delivered")
	ErrInvalidInvoice    = errors.New("invoice number, amount and file are required")
	ErrInvoiceNotAllowed = errors.New("invoices can only be attached to shipped or delivered orders")
)

// OrderStatus is the seller-side fulfilment state. It is independent of the
// customer order status.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
)

var nextStatus = map[OrderStatus]OrderStatus{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

type Invoice struct {
	Number     string          `json:"invoice_number"`
	Amount     decimal.Decimal `json:"amount"`
	FileRef    string          `json:"file"`
	UploadedAt time.Time       `json:"uploaded_at"`
}

type Order struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	Products     []string        `json:"products"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	Address      string          `json:"address"`
	Phone        string          `json:"phone"`
	Date         string          `json:"date"`
	Invoice      *Invoice        `json:"invoice,omitempty"`
}

// OrderBook holds the orders shown on the seller dashboard.
type OrderBook struct {
	mu     sync.RWMutex
	orders []Order
	now    func() time.Time
}

func NewOrderBook(orders []Order) *OrderBook {
	cp := make([]Order, len(orders))
	copy(cp, orders)
	return &OrderBook{orders: cp, now: time.Now}
}

// NewDemoOrderBook returns the book preloaded with the demo orders.
func NewDemoOrderBook() *OrderBook {
	return NewOrderBook([]Order{
		{
			ID:           "ORD-001",
			CustomerName: "Rajesh Kumar",
			Products:     []string{"Fresh Vegetables", "Fruits Basket"},
			Total:        decimal.NewFromInt(749),
			Status:       StatusPending,
			Address:      "123 Main St, Chennai, TN",
			Phone:        "+91 98765 43210",
			Date:         "2024-01-15",
		},
		{
			ID:           "ORD-002",
			CustomerName: "Priya Sharma",
			Products:     []string{"Organic Grains"},
			Total:        decimal.NewFromInt(599),
			Status:       StatusProcessing,
			Address:      "456 Park Ave, Mumbai, MH",
			Phone:        "+91 98765 43211",
			Date:         "2024-01-14",
		},
		{
			ID:           "ORD-003",
			CustomerName: "Amit Patel",
			Products:     []string{"Fresh Vegetables", "Organic Grains"},
			Total:        decimal.NewFromInt(898),
			Status:       StatusShipped,
			Address:      "789 Market Rd, Bangalore, KA",
			Phone:        "+91 98765 43212",
			Date:         "2024-01-13",
		},
	})
}

func (b *OrderBook) List() []Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Order, len(b.orders))
	copy(out, b.orders)
	return out
}

func (b *OrderBook) Get(id string) (Order, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	i := b.indexOf(id)
	if i < 0 {
		return Order{}, ErrOrderNotFound
	}
	return b.orders[i], nil
}

// Advance moves the order one step forward and returns the updated order.
func (b *OrderBook) Advance(id string) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return Order{}, ErrOrderNotFound
	}
	next, ok := nextStatus[b.orders[i].Status]
	if !ok {
		return Order{}, fmt.Errorf("advance %s: %w", id, ErrAlreadyDelivered)
	}
	b.orders[i].Status = next
	return b.orders[i], nil
}

func (b *OrderBook) AttachInvoice(id, number string, amount decimal.Decimal, fileRef string) (Order, error) {
	if strings.TrimSpace(number) == "" || !amount.IsPositive() || strings.TrimSpace(fileRef) == "" {
		return Order{}, ErrInvalidInvoice
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return Order{}, ErrOrderNotFound
	}
	if s := b.orders[i].Status; s != StatusShipped && s != StatusDelivered {
		return Order{}, ErrInvoiceNotAllowed
	}
	b.orders[i].Invoice = &Invoice{
		Number:     number,
		Amount:     amount,
		FileRef:    fileRef,
		UploadedAt: b.now(),
	}
	return b.orders[i], nil
}

func (b *OrderBook) indexOf(id string) int {
	for i := range b.orders {
		if b.orders[i].ID == id {
			return i
		}
	}
	return -1
}
