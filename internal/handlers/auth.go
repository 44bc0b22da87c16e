package handlers

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/CollinsRutto/realtorgpt/internal/services/supabase"
)

// AuthHandler completes the Supabase OAuth login flow
type AuthHandler struct {
	client      *supabase.Client
	frontendURL string
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(client *supabase.Client, frontendURL string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		client:      client,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Callback handles GET /auth/callback. Supabase redirects here with an
// authorization code; we exchange it and hand the tokens back to the
// frontend in the URL fragment, where they stay out of server logs.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	token, err := h.client.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth_code_exchange_failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "Failed to exchange authorization code")
		return
	}

	fragment := url.Values{}
	fragment.Set("access_token", token.AccessToken)
	if token.RefreshToken != "" {
		fragment.Set("refresh_token", token.RefreshToken)
	}

	redirectTo := h.frontendURL + "/#" + fragment.Encode()
	http.Redirect(w, r, redirectTo, http.StatusFound)
}
