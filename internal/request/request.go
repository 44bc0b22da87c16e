package request

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/CollinsRutto/realtorgpt/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// UnknownIP is returned when no client address can be determined. Quota
// enforcement treats it as "admit but warn" rather than blocking.
const UnknownIP = "unknown"

// ClientIP extracts the client IP from the request: first value of
// X-Forwarded-For, then X-Real-IP, then the host part of RemoteAddr.
// Returns UnknownIP when none of these yield an address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return UnknownIP
}

// WithUser returns a context with the user attached.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user from the context, or nil if missing
// or wrong type. A nil user means the caller is anonymous.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userContextKey).(*models.User)
	return u
}
