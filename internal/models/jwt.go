package models

// JWTClaims represents the claims extracted from a Supabase JWT
type JWTClaims struct {
	Sub   string `json:"sub"`   // Subject (Supabase user ID)
	Email string `json:"email"` // User email
	Name  string `json:"name"`  // User name (from user_metadata when present)
	Exp   int64  `json:"exp"`   // Expiration time
	Iat   int64  `json:"iat"`   // Issued at
	Iss   string `json:"iss"`   // Issuer
	Aud   string `json:"aud"`   // Audience
}
