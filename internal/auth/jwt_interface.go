package auth

// TokenIssuer signs new session tokens
type TokenIssuer interface {
	GenerateToken(userID int64) (*IssuedToken, error)
}

// TokenValidator verifies session tokens
type TokenValidator interface {
	// ValidateToken checks signature and expiry and returns the claims
	ValidateToken(tokenString string) (*CustomClaims, error)
}

// TokenService issues and validates session tokens
type TokenService interface {
	TokenIssuer
	TokenValidator
}
