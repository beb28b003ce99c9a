package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenPurpose string

const (
	PurposeVerification TokenPurpose = "verify"
	PurposeAccess       TokenPurpose = "access"
	PurposeRefresh      TokenPurpose = "refresh"
)

// ProviderClaims carries the provider profile submitted at registration.
type ProviderClaims struct {
	Name      string `json:"name"`
	Direction string `json:"direction,omitempty"`
	Contact   string `json:"contact,omitempty"`
}

// Claims is shared by every token kind. Verification tokens carry the pending
// registration (with the password already hashed); access and refresh tokens
// carry the account id in the subject plus email and role.
type Claims struct {
	Purpose      TokenPurpose    `json:"purpose"`
	Email        string          `json:"email"`
	Role         string          `json:"role,omitempty"`
	Name         string          `json:"name,omitempty"`
	PasswordHash string          `json:"pwd,omitempty"`
	Provider     *ProviderClaims `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) AccountID() string {
	return c.Subject
}

type TokenIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt: secret must be provided")
	}
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source, for tests.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cpy := *t
	cpy.now = now
	return &cpy
}

func (t *TokenIssuer) Issue(claims Claims, ttl time.Duration) (string, error) {
	if claims.Purpose == "" {
		return "", errors.New("jwt: token purpose is required")
	}
	if ttl <= 0 {
		return "", errors.New("jwt: ttl must be positive")
	}

	now := t.now()
	claims.Issuer = t.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, issuer and purpose. Every failure matches ErrInvalidToken
// so callers cannot tell an expired token from a forged one.
func (t *TokenIssuer) Verify(tokenString string, purpose TokenPurpose) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Purpose != purpose {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, purpose, claims.Purpose)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}

	return &claims, nil
}
