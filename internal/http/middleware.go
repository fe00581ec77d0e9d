package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Elavasaran/yummie-mart-porta/internal/auth"
)

type ctxKey int

const (
	sessionIDKey ctxKey = iota
	claimsKey
)

// SessionHeader carries the guest session id for callers without a token.
const SessionHeader = "X-Session-ID"

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// SessionMiddleware resolves the session a request belongs to. A bearer
// token wins; otherwise a well-formed X-Session-ID is reused, and failing
// that a new guest session is started and echoed back in the header.
func SessionMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if header := r.Header.Get("Authorization"); header != "" {
				raw, ok := strings.CutPrefix(header, "Bearer ")
				if !ok {
					respondError(w, http.StatusUnauthorized, "unauthenticated", "authorization header must be a bearer token")
					return
				}
				claims, err := tokens.Parse(strings.TrimSpace(raw))
				if err != nil {
					respondError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
					return
				}
				ctx = context.WithValue(ctx, claimsKey, claims)
				ctx = context.WithValue(ctx, sessionIDKey, claims.SessionID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			sessionID := r.Header.Get(SessionHeader)
			if _, err := uuid.Parse(sessionID); err != nil {
				sessionID = uuid.NewString()
			}
			w.Header().Set(SessionHeader, sessionID)
			ctx = context.WithValue(ctx, sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose token does not carry role.
func RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := getClaims(r.Context())
			if claims == nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
				return
			}
			if claims.Role != role {
				respondError(w, http.StatusForbidden, "permission_denied", "requires "+string(role)+" role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func getSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

func getClaims(ctx context.Context) *auth.Claims {
	if c, ok := ctx.Value(claimsKey).(*auth.Claims); ok {
		return c
	}
	return nil
}
