package supabase

import (
	"context"
	"strings"

	"golang.org/x/oauth2"
)

// Client wraps the OAuth2 code exchange against a Supabase project's
// auth endpoints.
type Client struct {
	config *oauth2.Config
}

// NewClient creates an OAuth2 client for the given Supabase project.
// anonKey serves as the OAuth client ID, redirectURL is where Supabase
// sends the browser after login.
func NewClient(projectURL, anonKey, redirectURL string) *Client {
	base := strings.TrimRight(projectURL, "/") + "/auth/v1"
	config := &oauth2.Config{
		ClientID:    anonKey,
		RedirectURL: redirectURL,
		Scopes:      []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  base + "/authorize",
			TokenURL: base + "/token",
		},
	}
	return &Client{config: config}
}

// ExchangeCode exchanges an authorization code for tokens
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.config.Exchange(ctx, code)
}

// AuthCodeURL returns the authorization URL
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}
