package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValidatorIsValid(t *testing.T) {
	v := New()
	assert.True(t, v.IsValid())
}

func TestCheckAddsError(t *testing.T) {
	v := New()
	v.Check(false, "field", "must be provided")

	assert.False(t, v.IsValid())
	assert.Equal(t, "must be provided", v.Errors["field"])
}

func TestAddErrorKeepsFirstMessage(t *testing.T) {
	v := New()
	v.AddError("field", "first")
	v.AddError("field", "second")

	assert.Equal(t, "first", v.Errors["field"])
}

func TestCheckNotBlank(t *testing.T) {
	v := New()
	v.CheckNotBlank("  \t\n", "content", "must not be blank")

	assert.False(t, v.IsValid())
}

func TestCheckEmail(t *testing.T) {
	valid := New()
	valid.CheckEmail("alice@example.com", "must be a valid email address")
	assert.True(t, valid.IsValid())

	invalid := New()
	invalid.CheckEmail("not-an-email", "must be a valid email address")
	assert.False(t, invalid.IsValid())
}
