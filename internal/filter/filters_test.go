package filter

import (
	"testing"

	"github.com/siahsang/socialite/internal/validator"
	"github.com/stretchr/testify/assert"
)

func TestFilterOffsets(t *testing.T) {
	f := NewFilter(1)
	assert.Equal(t, int64(10), f.Limit())
	assert.Equal(t, int64(0), f.Offset())

	f = NewFilter(3)
	assert.Equal(t, int64(10), f.Limit())
	assert.Equal(t, int64(20), f.Offset())
}

func TestValidateFilters(t *testing.T) {
	v := validator.New()
	ValidateFilters(NewFilter(0), v)
	assert.False(t, v.IsValid())

	v = validator.New()
	ValidateFilters(NewFilter(1), v)
	assert.True(t, v.IsValid())
}

func TestNewMetadata(t *testing.T) {
	metadata := NewMetadata(NewFilter(2), 35)

	assert.Equal(t, int64(2), metadata.Page)
	assert.Equal(t, int64(10), metadata.PageSize)
	assert.Equal(t, int64(35), metadata.TotalCount)
}
