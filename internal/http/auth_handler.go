package http

import (
	"net/http"
	"time"

	"github.com/Elavasaran/yummie-mart-porta/internal/auth"
)

// OTPService is the phone login flow.
type OTPService interface {
	SendOTP(phone string, ch auth.Channel) error
	VerifyOTP(phone, otp string, role auth.Role, sessionID string) (string, *auth.Claims, error)
}

type AuthHandler struct {
	otp OTPService
}

func NewAuthHandler(otp OTPService) *AuthHandler {
	return &AuthHandler{otp: otp}
}

type SendOTPRequestDTO struct {
	Phone   string `json:"phone"`
	Channel string `json:"channel"`
}

type VerifyOTPRequestDTO struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
	Role  string `json:"role"`
}

type TokenResponseDTO struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Channel == "" {
		req.Channel = string(auth.ChannelSMS)
	}

	if err := h.otp.SendOTP(req.Phone, auth.Channel(req.Channel)); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sent", "channel": req.Channel})
}

// Verify exchanges an OTP for a token. The caller's current session id is
// bound to the token so a guest cart survives login.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	role := auth.Role(req.Role)
	switch role {
	case "":
		role = auth.RoleCustomer
	case auth.RoleCustomer, auth.RoleSeller:
	default:
		respondError(w, http.StatusBadRequest, "invalid_role", "role must be customer or seller")
		return
	}

	token, claims, err := h.otp.VerifyOTP(req.Phone, req.OTP, role, getSessionID(r.Context()))
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, TokenResponseDTO{
		Token:     token,
		SessionID: claims.SessionID,
		Role:      string(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	})
}
