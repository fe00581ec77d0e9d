package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Elavasaran/yummie-mart-porta/internal/domain"
	"github.com/Elavasaran/yummie-mart-porta/internal/lifecycle"
	"github.com/Elavasaran/yummie-mart-porta/internal/metrics"
)

// SessionStore returns the manager that owns a session.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) *lifecycle.Manager
}

// ProductSource resolves catalog products.
type ProductSource interface {
	Product(ctx context.Context, id int64) (domain.Product, error)
	List(ctx context.Context, query string) ([]*domain.Product, error)
}

type CartHandler struct {
	sessions SessionStore
	products ProductSource
	timeout  time.Duration
}

func NewCartHandler(sessions SessionStore, products ProductSource, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		products: products,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(m.Cart(), m.Totals()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	m, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	product, err := h.products.Product(ctx, req.ProductID)
	if err != nil {
		metrics.RecordCartOperation("add", false)
		handleError(w, err)
		return
	}

	lines, err := m.AddToCart(ctx, product)
	if err != nil {
		metrics.RecordCartOperation("add", false)
		handleError(w, err)
		return
	}
	metrics.RecordCartOperation("add", true)

	respondJSON(w, http.StatusCreated, toCartDTO(lines, m.Totals()))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, ok := productIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	lines := m.UpdateQuantity(r.Context(), productID, req.Delta)
	metrics.RecordCartOperation("update", true)

	respondJSON(w, http.StatusOK, toCartDTO(lines, m.Totals()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, ok := productIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	lines := m.RemoveFromCart(r.Context(), productID)
	metrics.RecordCartOperation("remove", true)

	respondJSON(w, http.StatusOK, toCartDTO(lines, m.Totals()))
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (*lifecycle.Manager, bool) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return nil, false
	}
	return h.sessions.Get(r.Context(), sessionID), true
}
