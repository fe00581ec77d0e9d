package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidPhone    = errors.New("phone number must be exactly 10 digits")
	ErrInvalidOTP      = errors.New("otp must be exactly 6 digits")
	ErrInvalidChannel  = errors.New("otp channel must be sms or whatsapp")
	ErrOTPNotSent      = errors.New("no otp was sent to this phone")
	ErrTooManyRequests = errors.New("too many otp requests, try again later")
)

type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

const (
	otpTTL = 10 * time.Minute

	// one OTP every 20s per phone, bursts of 3
	sendInterval = 20 * time.Second
	sendBurst    = 3
)

// Authenticator issues session tokens after a phone/OTP exchange. No message
// is actually delivered and any well-formed code is accepted.
type Authenticator struct {
	mu       sync.Mutex
	sent     map[string]time.Time // phone -> when the last otp was "sent"
	limiters map[string]*rate.Limiter

	tokens *TokenIssuer
	now    func() time.Time
}

func NewAuthenticator(tokens *TokenIssuer) *Authenticator {
	return &Authenticator{
		sent:     make(map[string]time.Time),
		limiters: make(map[string]*rate.Limiter),
		tokens:   tokens,
		now:      time.Now,
	}
}

// SendOTP records that a code went out to phone over channel.
func (a *Authenticator) SendOTP(phone string, ch Channel) error {
	if !isDigits(phone, 10) {
		return ErrInvalidPhone
	}
	if ch != ChannelSMS && ch != ChannelWhatsApp {
		return ErrInvalidChannel
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	lim, ok := a.limiters[phone]
	if !ok {
		lim = rate.NewLimiter(rate.Every(sendInterval), sendBurst)
		a.limiters[phone] = lim
	}
	if !lim.AllowN(a.now(), 1) {
		return ErrTooManyRequests
	}
	a.sent[phone] = a.now()
	return nil
}

// VerifyOTP accepts any 6-digit code for a phone that was sent one and
// returns a signed token. An empty sessionID starts a new session; passing
// the guest session keeps its cart.
func (a *Authenticator) VerifyOTP(phone, otp string, role Role, sessionID string) (string, *Claims, error) {
	if !isDigits(phone, 10) {
		return "", nil, ErrInvalidPhone
	}
	if !isDigits(otp, 6) {
		return "", nil, ErrInvalidOTP
	}

	a.mu.Lock()
	sentAt, ok := a.sent[phone]
	if ok && a.now().Sub(sentAt) > otpTTL {
		delete(a.sent, phone)
		ok = false
	}
	if ok {
		delete(a.sent, phone)
	}
	a.mu.Unlock()
	if !ok {
		return "", nil, ErrOTPNotSent
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	token, claims, err := a.tokens.Issue(sessionID, phone, role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token failed: %w", err)
	}
	return token, claims, nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
