package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Elavasaran/yummie-mart-porta/internal/seller"
)

type SellerHandler struct {
	signups *seller.Signups
	orders  *seller.OrderBook
	quotes  *seller.QuoteBook
}

func NewSellerHandler(signups *seller.Signups, orders *seller.OrderBook, quotes *seller.QuoteBook) *SellerHandler {
	return &SellerHandler{signups: signups, orders: orders, quotes: quotes}
}

type SignupStepRequestDTO struct {
	Step   int               `json:"step"`
	Fields map[string]string `json:"fields"`
}

type InvoiceRequestDTO struct {
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	File          string          `json:"file"`
}

// QuoteRequestDTO carries the seller's price. A missing price decodes to
// zero and is rejected.
type QuoteRequestDTO struct {
	Price decimal.Decimal `json:"price"`
}

// Signup feeds one step of the registration wizard for the caller's session.
func (h *SellerHandler) Signup(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req SignupStepRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := h.signups.Apply(sessionID, seller.Step(req.Step), req.Fields)
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusOK
	if res.Application != nil {
		status = http.StatusCreated
	}
	respondJSON(w, status, res)
}

func (h *SellerHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.orders.List()
	out := make([]SellerOrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toSellerOrderDTO(o))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *SellerHandler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Advance(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSellerOrderDTO(o))
}

func (h *SellerHandler) AttachInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	o, err := h.orders.AttachInvoice(chi.URLParam(r, "id"), req.InvoiceNumber, req.Amount, req.File)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSellerOrderDTO(o))
}

// ListQuotes returns every quote request with per-status counts.
func (h *SellerHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes := h.quotes.List()
	out := QuoteListDTO{
		Quotes: make([]QuoteDTO, 0, len(quotes)),
		Counts: make(map[string]int),
	}
	for _, q := range quotes {
		out.Quotes = append(out.Quotes, toQuoteDTO(q))
	}
	for status, n := range h.quotes.CountByStatus() {
		out.Counts[string(status)] = n
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *SellerHandler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	q, err := h.quotes.SubmitQuote(chi.URLParam(r, "id"), req.Price)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toQuoteDTO(q))
}
