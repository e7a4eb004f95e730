package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFieldError(t *testing.T) {
	ve := AddFieldError(nil, "ItemService.Create", "name", "Name is required")
	require.NotNil(t, ve)
	assert.Equal(t, "ItemService.Create", ve.Op)

	var err error = ve
	got := AddFieldError(err, "ignored", "currency", "Currency must be a 3-letter code")
	assert.Same(t, ve, got)
	assert.Equal(t, map[string]string{
		"name":     "Name is required",
		"currency": "Currency must be a 3-letter code",
	}, got.Fields)

	other := AddFieldError(errors.New("boom"), "op", "tags", "bad")
	assert.NotSame(t, ve, other)
	assert.Equal(t, EINVALID, ErrorCode(other))
}
