package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/Elavasaran/yummie-mart-porta/internal/domain"
	"github.com/Elavasaran/yummie-mart-porta/internal/events"
	"github.com/Elavasaran/yummie-mart-porta/internal/metrics"
	"github.com/shopspring/decimal"
)

// DefaultAdvanceDelay is how long a new order stays "started" before it
// moves to "processing" on its own.
const DefaultAdvanceDelay = 2 * time.Second

// Scheduler runs deferred one-shot tasks keyed by order id.
type Scheduler interface {
	Schedule(key string, delay time.Duration, fn func())
	Cancel(key string) bool
	Close() error
}

// Manager owns one session's cart and order list. Every mutation, including
// the deferred status advance, runs under a single lock so each transition
// completes before the next one starts.
type Manager struct {
	mu     sync.Mutex
	cart   []domain.CartLine
	orders []domain.Order // most recent first

	sessionID    string
	taxRate      decimal.Decimal
	advanceDelay time.Duration
	now          func() time.Time

	scheduler Scheduler
	publisher events.Publisher
	logger    *slog.Logger
}

type Option func(*Manager)

func WithSessionID(id string) Option {
	return func(m *Manager) { m.sessionID = id }
}

func WithTaxRate(rate decimal.Decimal) Option {
	return func(m *Manager) { m.taxRate = rate }
}

func WithAdvanceDelay(d time.Duration) Option {
	return func(m *Manager) { m.advanceDelay = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func NewManager(scheduler Scheduler, opts ...Option) *Manager {
	m := &Manager{
		taxRate:      domain.GSTRate,
		advanceDelay: DefaultAdvanceDelay,
		now:          time.Now,
		scheduler:    scheduler,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.publisher == nil {
		m.publisher = events.NewLogPublisher(m.logger)
	}
	m.logger = m.logger.With("session_id", m.sessionID)
	return m
}

func (m *Manager) SessionID() string {
	return m.sessionID
}

// AddToCart merges the product into the cart: an existing line gains one
// unit, otherwise a new single-unit line is appended.
func (m *Manager) AddToCart(ctx context.Context, p domain.Product) ([]domain.CartLine, error) {
	newLine, err := domain.NewCartLine(p)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	quantity := 1
	if i := m.lineIndex(p.ID); i >= 0 {
		m.cart[i].Quantity++
		quantity = m.cart[i].Quantity
	} else {
		m.cart = append(m.cart, newLine)
	}
	cart := slices.Clone(m.cart)
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "added to cart", "product_id", p.ID, "quantity", quantity)
	m.publish(ctx, events.New(events.TypeCartItemAdded, strconv.FormatInt(p.ID, 10), m.sessionID,
		events.CartItemAddedPayload{ProductID: p.ID, Name: p.Name, Quantity: quantity}))
	return cart, nil
}

// UpdateQuantity adds delta to a line and drops the line if it reaches zero
// or below. Unknown product ids are ignored.
func (m *Manager) UpdateQuantity(ctx context.Context, productID int64, delta int) []domain.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.lineIndex(productID)
	if i < 0 {
		return slices.Clone(m.cart)
	}

	m.cart[i].Quantity += delta
	if m.cart[i].Quantity <= 0 {
		m.cart = slices.Delete(m.cart, i, i+1)
		m.logger.DebugContext(ctx, "cart line dropped", "product_id", productID)
	}
	return slices.Clone(m.cart)
}

// RemoveFromCart deletes the line for productID if there is one.
func (m *Manager) RemoveFromCart(ctx context.Context, productID int64) []domain.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.lineIndex(productID); i >= 0 {
		m.cart = slices.Delete(m.cart, i, i+1)
		m.logger.DebugContext(ctx, "cart line removed", "product_id", productID)
	}
	return slices.Clone(m.cart)
}

func (m *Manager) Cart() []domain.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.cart)
}

// Totals computes subtotal, tax and total for the current cart.
func (m *Manager) Totals() domain.Totals {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.ComputeTotalsAt(m.cart, m.taxRate)
}

func (m *Manager) Orders() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.orders)
}

func (m *Manager) Order(id string) (domain.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.orderIndex(id); i >= 0 {
		return m.orders[i], true
	}
	return domain.Order{}, false
}

// Checkout turns the cart into a new "started" order at the head of the
// order list and empties the cart. An empty cart fails with ErrEmptyCart and
// changes nothing.
func (m *Manager) Checkout(ctx context.Context) (domain.Order, error) {
	m.mu.Lock()
	if len(m.cart) == 0 {
		m.mu.Unlock()
		return domain.Order{}, ErrEmptyCart
	}

	totals := domain.ComputeTotalsAt(m.cart, m.taxRate)
	now := m.now()
	order := domain.Order{
		ID:        nextOrderID(now, func(id string) bool { return m.orderIndex(id) >= 0 }),
		PlacedAt:  now,
		Total:     totals.Total,
		LineCount: len(m.cart),
		Status:    domain.OrderStatusStarted,
	}

	orders := make([]domain.Order, 0, len(m.orders)+1)
	orders = append(orders, order)
	m.orders = append(orders, m.orders...)
	m.cart = nil
	m.mu.Unlock()

	m.scheduleAdvance(order.ID, m.advanceDelay)

	m.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID, "total", domain.Money(order.Total), "lines", order.LineCount)
	m.publish(ctx, events.New(events.TypeOrderPlaced, order.ID, m.sessionID, events.OrderPlacedPayload{
		OrderID:   order.ID,
		Total:     domain.Money(order.Total),
		LineCount: order.LineCount,
		Status:    order.Status.String(),
	}))
	return order, nil
}

// AdvanceOrderStatus moves an order forward to the given status. It returns
// false without error when the order does not exist, and ErrIllegalTransition
// for any move that is not strictly forward.
func (m *Manager) AdvanceOrderStatus(ctx context.Context, orderID string, to domain.OrderStatus) (bool, error) {
	m.mu.Lock()
	i := m.orderIndex(orderID)
	if i < 0 {
		m.mu.Unlock()
		return false, nil
	}
	from := m.orders[i].Status
	if !from.CanAdvanceTo(to) {
		m.mu.Unlock()
		return false, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	orders := slices.Clone(m.orders)
	orders[i].Status = to
	m.orders = orders
	m.mu.Unlock()

	if from == domain.OrderStatusStarted {
		m.scheduler.Cancel(orderID)
	}

	metrics.RecordOrderTransition(from.String(), to.String())
	m.logger.InfoContext(ctx, "order status changed", "order_id", orderID, "from", from, "to", to)
	m.publish(ctx, events.New(events.TypeOrderStatusChanged, orderID, m.sessionID,
		events.OrderStatusChangedPayload{OrderID: orderID, From: from.String(), To: to.String()}))
	return true, nil
}

// Snapshot copies the session state.
func (m *Manager) Snapshot() domain.SessionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.SessionSnapshot{
		Cart:   slices.Clone(m.cart),
		Orders: slices.Clone(m.orders),
	}
}

// Restore replaces the session state with snap and re-arms the advance timer
// for orders that are still "started".
func (m *Manager) Restore(snap domain.SessionSnapshot) {
	m.mu.Lock()
	m.cart = slices.DeleteFunc(slices.Clone(snap.Cart), func(l domain.CartLine) bool { return l.Quantity <= 0 })
	m.orders = slices.Clone(snap.Orders)
	var pending []domain.Order
	for _, o := range m.orders {
		if o.Status == domain.OrderStatusStarted {
			pending = append(pending, o)
		}
	}
	now := m.now()
	m.mu.Unlock()

	for _, o := range pending {
		m.scheduleAdvance(o.ID, max(0, o.PlacedAt.Add(m.advanceDelay).Sub(now)))
	}
}

// Close stops pending status timers.
func (m *Manager) Close() error {
	return m.scheduler.Close()
}

func (m *Manager) scheduleAdvance(orderID string, delay time.Duration) {
	m.scheduler.Schedule(orderID, delay, func() {
		_, err := m.AdvanceOrderStatus(context.Background(), orderID, domain.OrderStatusProcessing)
		if err != nil && !errors.Is(err, ErrIllegalTransition) {
			m.logger.Error("automatic status advance failed", "order_id", orderID, "error", err)
		}
	})
}

func (m *Manager) publish(ctx context.Context, e events.Event) {
	if err := m.publisher.Publish(ctx, e); err != nil {
		m.logger.WarnContext(ctx, "event publish failed", "event_type", e.Type, "key", e.Key, "error", err)
	}
}

func (m *Manager) lineIndex(productID int64) int {
	return slices.IndexFunc(m.cart, func(l domain.CartLine) bool { return l.ProductID == productID })
}

func (m *Manager) orderIndex(id string) int {
	return slices.IndexFunc(m.orders, func(o domain.Order) bool { return o.ID == id })
}
