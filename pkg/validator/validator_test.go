package validator_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/validator"
)

func TestApply_CollectsAllFailures(t *testing.T) {
	t.Parallel()

	err := validator.Apply(
		validator.Required("name", "  "),
		validator.ValidEmail("email", "not-an-email"),
		validator.MaxLen("note", "héllo", 5),
		validator.Positive("quantity", 0),
	)
	require.Error(t, err)
	require.True(t, validator.IsValidationError(err))
	require.ErrorIs(t, err, validator.ErrValidationFailed)

	ve := validator.ExtractValidationErrors(err)
	assert.Len(t, ve, 3)
	assert.True(t, ve.Has("name"))
	assert.True(t, ve.Has("email"))
	assert.False(t, ve.Has("note"))
	assert.Equal(t, []string{"must be greater than zero"}, ve.Get("quantity"))
	assert.Contains(t, ve.Fields(), "email")
}

func TestApply_NoFailures(t *testing.T) {
	t.Parallel()

	err := validator.Apply(
		validator.OneOf("reason", "damaged", []string{"damaged", "other"}),
		validator.MaxItems("images", []int{1, 2}, 5),
		validator.MinItems("items", []int{1}, 1),
		validator.RequiredTime("date", time.Now()),
	)
	assert.NoError(t, err)
}

func TestRule_WithCause(t *testing.T) {
	t.Parallel()
	errTooMany := errors.New("too many")

	err := validator.Apply(validator.MaxItems("recipients", []int{1, 2, 3}, 2).WithCause(errTooMany))
	require.ErrorIs(t, err, errTooMany)
	assert.Contains(t, err.Error(), "recipients: must have at most 2 items")
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		valid bool
	}{
		{"admin@example.com", true},
		{"a.b+c@shop.co.uk", true},
		{"", false},
		{"admin@localhost", false},
		{"Admin <admin@example.com>", false},
		{"@example.com", false},
		{"admin@example.", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			err := validator.Apply(validator.ValidEmail("email", tt.value))
			assert.Equal(t, tt.valid, err == nil)
		})
	}
}

func TestCustom(t *testing.T) {
	t.Parallel()

	err := validator.Apply(validator.Custom("preferences", "validation.unknown_key", "unknown event", func() bool { return false }))
	ve := validator.ExtractValidationErrors(err)
	require.Len(t, ve, 1)
	assert.Equal(t, "validation.unknown_key", ve[0].Key)
}
