package request

import (
	"net/http/httptest"
	"testing"

	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/google/uuid"
)

func TestClientIP_ForwardedFor(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/api/chat", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if ip := ClientIP(r); ip != "203.0.113.7" {
		t.Errorf("Expected first forwarded IP, got %q", ip)
	}
}

func TestClientIP_RealIPFallback(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/api/chat", nil)
	r.Header.Set("X-Real-IP", " 198.51.100.2 ")

	if ip := ClientIP(r); ip != "198.51.100.2" {
		t.Errorf("Expected X-Real-IP value, got %q", ip)
	}
}

func TestClientIP_RemoteAddrStripsPort(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/api/chat", nil)
	r.RemoteAddr = "192.0.2.1:53412"

	if ip := ClientIP(r); ip != "192.0.2.1" {
		t.Errorf("Expected host part of RemoteAddr, got %q", ip)
	}
}

func TestClientIP_Unknown(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/api/chat", nil)
	r.RemoteAddr = ""

	if ip := ClientIP(r); ip != UnknownIP {
		t.Errorf("Expected %q, got %q", UnknownIP, ip)
	}
}

func TestUserFromContext(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/api/usage", nil)
	if UserFromContext(r.Context()) != nil {
		t.Error("Expected nil user for bare request")
	}

	user := &models.User{ID: uuid.New(), Email: "agent@example.com"}
	r = r.WithContext(WithUser(r.Context(), user))

	got := UserFromContext(r.Context())
	if got == nil || got.ID != user.ID {
		t.Errorf("Expected user %v from context, got %v", user, got)
	}
}
