package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/ecotrack/auth-service/internal/config"
	"github.com/ecotrack/auth-service/internal/utils"
)

// JWT errors
var (
	ErrMissingSecret        = errors.New("jwt secret is not configured")
	ErrInvalidToken         = errors.New("invalid token")
	ErrExpiredToken         = errors.New("token has expired")
	ErrInvalidSigningMethod = errors.New("invalid signing method")
)

// CustomClaims represents the claims in a session token.
// The subject carries the user id as a string; UserID mirrors it for convenience.
type CustomClaims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// IssuedToken is a freshly signed session token with its identifying metadata.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// JWTService provides session token generation and validation functionality
type JWTService struct {
	config *config.JWTSettings
	now    func() time.Time
}

// NewJWTService creates a new JWTService instance.
// It refuses to build a service without a signing secret.
func NewJWTService(cfg *config.JWTSettings) (*JWTService, error) {
	if cfg == nil || cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	return &JWTService{
		config: cfg,
		now:    time.Now,
	}, nil
}

// GetConfig returns the settings the service signs with.
func (s *JWTService) GetConfig() *config.JWTSettings {
	return s.config
}

// GenerateToken signs a new session token for the given user.
func (s *JWTService) GenerateToken(userID int64) (*IssuedToken, error) {
	// Generate a unique token ID
	jwtID := uuid.New().String()

	now := s.now()
	expiresAt := now.Add(s.config.Expiry)
	claims := CustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jwtID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IssuedToken{
		Token:     tokenString,
		ID:        jwtID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ValidateToken validates a session token and returns its claims if valid.
// Every failure is reported as an unauthenticated error; the cause is wrapped for logging.
func (s *JWTService) ValidateToken(tokenString string) (*CustomClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		appErr := utils.NewUnauthorizedError("")
		appErr.DevInfo = err.Error()
		return nil, appErr
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string) (*CustomClaims, error) {
	// Time based claims are checked below against the service clock
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &CustomClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	now := s.now()
	if !claims.VerifyExpiresAt(now, true) {
		return nil, ErrExpiredToken
	}
	if !claims.VerifyNotBefore(now, false) {
		return nil, ErrInvalidToken
	}

	// The subject is authoritative
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 || userID != claims.UserID {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
