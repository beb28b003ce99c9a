package utils

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPassword(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"Passw0rd!" + strings.Repeat("a", 63), true},
		{"Passw0rd!" + strings.Repeat("a", 64), false},
		{"Passw0rd!" + strings.Repeat("a", 70), false},
		{"short1!", false},
		{"longenough1!", false},
		{"Longenough!", false},
		{"Longenough1", false},
		{"LONGENOUGH1!", false},
		{"Longenough1!", true},
		{"Passw0rd!", true},
		{"Passw0rd_", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d bytes %.12s", len(tc.password), tc.password), func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidPassword(tc.password))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.com"))
	assert.True(t, IsValidEmail("first.last+tag@sub.example.org"))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail("a b@c.com"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidContact(t *testing.T) {
	assert.True(t, IsValidContact("+34600111222"))
	assert.True(t, IsValidContact("600111222"))
	assert.True(t, IsValidContact("tours@example.com"))
	assert.False(t, IsValidContact("+0123"))
	assert.False(t, IsValidContact("+12345678901234567"))
	assert.False(t, IsValidContact("call me"))
}

type sampleProfile struct {
	Contact string `json:"contact" validate:"omitempty,provider_contact"`
}

type sampleRequest struct {
	Email    string         `json:"email" validate:"account_email"`
	Password string         `json:"password" validate:"password_policy"`
	Profile  *sampleProfile `json:"profile"`
}

func TestValidateStructReportsFieldPath(t *testing.T) {
	err := ValidateStruct(sampleRequest{
		Email:    "a@b.com",
		Password: "Passw0rd!",
		Profile:  &sampleProfile{Contact: "nope"},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrValidation))

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "profile.contact", vErr.Field)
}

func TestValidateStructPasswordPolicy(t *testing.T) {
	err := ValidateStruct(sampleRequest{Email: "a@b.com", Password: "Longenough1"})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "password", vErr.Field)
}

func TestValidateStructAcceptsValidInput(t *testing.T) {
	require.NoError(t, ValidateStruct(sampleRequest{Email: "a@b.com", Password: "Longenough1!"}))
}
