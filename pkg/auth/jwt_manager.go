// Package auth provides password hashing and JWT access-token management
// for clinician accounts.
package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried in an access token
type Claims struct {
	Username string `json:"sub"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HMAC-SHA256 access tokens
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

// JWTConfig contains JWT configuration
type JWTConfig struct {
	Secret    string        `yaml:"secret" env:"JWT_SECRET"`
	Issuer    string        `yaml:"issuer" env:"JWT_ISSUER"`
	AccessTTL time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL"`
}

// DefaultJWTConfig returns default JWT configuration
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		Issuer:    "cogniscreen",
		AccessTTL: 24 * time.Hour,
	}
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(config *JWTConfig) (*JWTManager, error) {
	if config == nil {
		config = DefaultJWTConfig()
	}
	if config.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if config.AccessTTL <= 0 {
		config.AccessTTL = 24 * time.Hour
	}

	return &JWTManager{
		secret:    []byte(config.Secret),
		issuer:    config.Issuer,
		accessTTL: config.AccessTTL,
	}, nil
}

// GenerateToken creates a signed access token for the user
func (j *JWTManager) GenerateToken(username, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.accessTTL)

	claims := &Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    j.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// VerifyToken parses and validates an access token
func (j *JWTManager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Username == "" {
		claims.Username = claims.Subject
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("token missing subject")
	}

	return claims, nil
}

// AccessTTL returns the configured token lifetime
func (j *JWTManager) AccessTTL() time.Duration {
	return j.accessTTL
}
