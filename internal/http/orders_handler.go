package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Elavasaran/yummie-mart-porta/internal/domain"
	"github.com/Elavasaran/yummie-mart-porta/internal/metrics"
)

type OrdersHandler struct {
	sessions SessionStore
	timeout  time.Duration
}

func NewOrdersHandler(sessions SessionStore, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{sessions: sessions, timeout: timeout}
}

type AdvanceStatusRequestDTO struct {
	Status string `json:"status"`
}

// Checkout places an order from the session cart.
func (h *OrdersHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	order, err := h.sessions.Get(ctx, sessionID).Checkout(ctx)
	metrics.RecordCartOperation("checkout", err == nil)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/orders/"+order.ID)
	respondJSON(w, http.StatusCreated, toOrderDTO(order))
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTOs(h.sessions.Get(r.Context(), sessionID).Orders()))
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	order, ok := h.sessions.Get(r.Context(), sessionID).Order(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

// AdvanceStatus moves an order forward manually, e.g. to completed or
// delivered.
func (h *OrdersHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req AdvanceStatusRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	to := domain.OrderStatus(req.Status)
	if !to.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "status must be one of started, processing, completed, delivered")
		return
	}

	m := h.sessions.Get(ctx, sessionID)
	orderID := chi.URLParam(r, "id")
	found, err := m.AdvanceOrderStatus(ctx, orderID, to)
	if err != nil {
		handleError(w, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	order, _ := m.Order(orderID)
	respondJSON(w, http.StatusOK, toOrderDTO(order))
}
