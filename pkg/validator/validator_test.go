package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type resetForm struct {
	Password     string `json:"password" validate:"required"`
	Confirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

func TestValidate_OK(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Validate(loginForm{Email: "a@b.com", Password: "longenough"}))
}

func TestValidate_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(loginForm{Email: "nope", Password: "short"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "email must be a valid email address")
	assert.Contains(t, err.Error(), "password must be at least 8 characters")
}

func TestValidate_Required(t *testing.T) {
	v := NewValidator()

	err := v.Validate(loginForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
	assert.Contains(t, err.Error(), "password is required")
}

func TestValidate_EqField(t *testing.T) {
	v := NewValidator()

	err := v.Validate(resetForm{Password: "abcdefgh", Confirmation: "abcdefgX"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password_confirmation must match password")
}

func TestVar(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Var("key", "6f1c1a57-2d0a-4b8e-9d3c-8d7f0f3e4a11", "uuid4"))

	err := v.Var("key", "not-a-uuid", "uuid4")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "key must be a valid UUID")
}
