package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/CollinsRutto/realtorgpt/internal/models"
)

// Verifier validates Supabase-issued JWTs. Supabase signs its access
// tokens with the project JWT secret (HS256) by default; projects that
// enabled asymmetric signing publish a JWKS instead. A verifier supports
// both: when a secret is configured it takes precedence, otherwise the
// key set at <issuer>/.well-known/jwks.json is used.
type Verifier struct {
	issuer string
	secret []byte
	keys   *KeySetCache
}

// NewVerifier creates a verifier for the given Supabase project URL.
// jwtSecret may be empty when the project uses asymmetric signing.
func NewVerifier(projectURL, jwtSecret string) *Verifier {
	issuer := strings.TrimRight(projectURL, "/") + "/auth/v1"
	v := &Verifier{issuer: issuer}
	if jwtSecret != "" {
		v.secret = []byte(jwtSecret)
	} else {
		v.keys = NewKeySetCache(issuer + "/.well-known/jwks.json")
	}
	return v
}

// Issuer returns the expected token issuer.
func (v *Verifier) Issuer() string {
	return v.issuer
}

// Verify parses and validates an access token and extracts its claims.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParseOption{jwt.WithValidate(true)}
	if v.secret != nil {
		opts = append(opts, jwt.WithKey(jwa.HS256, v.secret))
	} else {
		keys, err := v.keys.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get JWKS: %w", err)
		}
		opts = append(opts, jwt.WithKeySet(keys))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	iss, ok := token.Get("iss")
	if !ok {
		return nil, fmt.Errorf("token missing issuer claim")
	}
	if issStr, ok := iss.(string); !ok || issStr != v.issuer {
		return nil, fmt.Errorf("token issuer mismatch: expected %s, got %v", v.issuer, iss)
	}

	claims := &models.JWTClaims{
		Sub: token.Subject(),
		Iss: v.issuer,
	}
	if !token.Expiration().IsZero() {
		claims.Exp = token.Expiration().Unix()
	}
	if !token.IssuedAt().IsZero() {
		claims.Iat = token.IssuedAt().Unix()
	}
	if aud := token.Audience(); len(aud) > 0 {
		claims.Aud = aud[0]
	}

	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			claims.Email = emailStr
		}
	}

	// Supabase keeps the display name inside user_metadata.
	if meta, ok := token.Get("user_metadata"); ok {
		if metaMap, ok := meta.(map[string]any); ok {
			for _, key := range []string{"full_name", "name"} {
				if name, ok := metaMap[key].(string); ok && name != "" {
					claims.Name = name
					break
				}
			}
		}
	}
	if claims.Name == "" {
		if name, ok := token.Get("name"); ok {
			if nameStr, ok := name.(string); ok {
				claims.Name = nameStr
			}
		}
	}

	if claims.Sub == "" {
		return nil, fmt.Errorf("token missing sub claim")
	}

	return claims, nil
}
