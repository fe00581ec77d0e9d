package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Elavasaran/yummie-mart-porta/internal/auth"
	"github.com/Elavasaran/yummie-mart-porta/internal/catalog"
	"github.com/Elavasaran/yummie-mart-porta/internal/domain"
	"github.com/Elavasaran/yummie-mart-porta/internal/lifecycle"
	"github.com/Elavasaran/yummie-mart-porta/internal/seller"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func productIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleError maps domain errors to HTTP status codes.
func handleError(w http.ResponseWriter, err error) {
	var (
		status int
		code   string
	)

	switch {
	case errors.Is(err, lifecycle.ErrEmptyCart):
		status, code = http.StatusUnprocessableEntity, "empty_cart"
	case errors.Is(err, domain.ErrInvalidProduct):
		status, code = http.StatusUnprocessableEntity, "invalid_product"
	case errors.Is(err, lifecycle.ErrIllegalTransition),
		errors.Is(err, seller.ErrAlreadyDelivered),
		errors.Is(err, seller.ErrInvoiceNotAllowed),
		errors.Is(err, seller.ErrQuoteNotPending):
		status, code = http.StatusConflict, "illegal_transition"
	case errors.Is(err, seller.ErrAlreadySubmitted):
		status, code = http.StatusConflict, "already_exists"
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, seller.ErrOrderNotFound),
		errors.Is(err, seller.ErrQuoteNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, seller.ErrMissingFields):
		var mf *seller.MissingFieldsError
		if errors.As(err, &mf) {
			respondErrorDetails(w, http.StatusBadRequest, "missing_fields", "missing required fields", strings.Join(mf.Fields, ","))
			return
		}
		status, code = http.StatusBadRequest, "missing_fields"
	case errors.Is(err, seller.ErrWrongStep),
		errors.Is(err, seller.ErrInvalidInvoice),
		errors.Is(err, seller.ErrInvalidQuotePrice),
		errors.Is(err, auth.ErrInvalidPhone),
		errors.Is(err, auth.ErrInvalidOTP),
		errors.Is(err, auth.ErrInvalidChannel):
		status, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, auth.ErrOTPNotSent), errors.Is(err, auth.ErrInvalidToken):
		status, code = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, auth.ErrTooManyRequests):
		status, code = http.StatusTooManyRequests, "rate_limit_exceeded"
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, status, code, err.Error())
}
