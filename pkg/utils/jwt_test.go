package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", "tourbook")
	require.EqualError(t, err, "jwt: secret must be provided")
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	issuer, err := NewTokenIssuer("test-secret", "tourbook")
	require.NoError(t, err)
	issuer = issuer.WithClock(fixedClock(current))

	token, err := issuer.Issue(Claims{
		Purpose:          PurposeAccess,
		Email:            "a@b.com",
		Role:             "customer",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "account-1"},
	}, 15*time.Minute)
	require.NoError(t, err)

	claims, err := issuer.Verify(token, PurposeAccess)
	require.NoError(t, err)
	require.Equal(t, "account-1", claims.AccountID())
	require.Equal(t, "a@b.com", claims.Email)
	require.Equal(t, "customer", claims.Role)
	require.Equal(t, "tourbook", claims.Issuer)
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(15*time.Minute)))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	base, err := NewTokenIssuer("test-secret", "tourbook")
	require.NoError(t, err)

	token, err := base.WithClock(fixedClock(current)).Issue(Claims{Purpose: PurposeRefresh, Email: "a@b.com"}, time.Minute)
	require.NoError(t, err)

	_, err = base.WithClock(fixedClock(current.Add(2*time.Minute))).Verify(token, PurposeRefresh)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidToken))
	require.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	signer, err := NewTokenIssuer("secret-one", "tourbook")
	require.NoError(t, err)
	verifier, err := NewTokenIssuer("secret-two", "tourbook")
	require.NoError(t, err)

	token, err := signer.Issue(Claims{Purpose: PurposeAccess, Email: "a@b.com"}, time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(token, PurposeAccess)
	require.True(t, errors.Is(err, ErrInvalidToken))
	require.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestVerifyRejectsWrongPurpose(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "tourbook")
	require.NoError(t, err)

	token, err := issuer.Issue(Claims{Purpose: PurposeAccess, Email: "a@b.com"}, time.Minute)
	require.NoError(t, err)

	_, err = issuer.Verify(token, PurposeRefresh)
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "tourbook")
	require.NoError(t, err)

	_, err = issuer.Verify("not-a-token", PurposeAccess)
	require.True(t, errors.Is(err, ErrInvalidToken))

	_, err = issuer.Verify("", PurposeAccess)
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerificationTokenCarriesPendingRegistration(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "")
	require.NoError(t, err)

	token, err := issuer.Issue(Claims{
		Purpose:      PurposeVerification,
		Email:        "guide@tours.com",
		Name:         "Guide",
		Role:         "provider",
		PasswordHash: "$2a$10$hash",
		Provider:     &ProviderClaims{Name: "Old Town Walks", Contact: "+34600111222"},
	}, time.Hour)
	require.NoError(t, err)

	claims, err := issuer.Verify(token, PurposeVerification)
	require.NoError(t, err)
	require.Equal(t, "guide@tours.com", claims.Email)
	require.Equal(t, "$2a$10$hash", claims.PasswordHash)
	require.NotNil(t, claims.Provider)
	require.Equal(t, "Old Town Walks", claims.Provider.Name)
}
