package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

func TestParseName(t *testing.T) {
	t.Run("accepts every enumerated name", func(t *testing.T) {
		for _, name := range AllNames() {
			parsed, err := ParseName(string(name))
			require.NoError(t, err)
			assert.Equal(t, name, parsed)
		}
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		parsed, err := ParseName("  Creating ")
		require.NoError(t, err)
		assert.Equal(t, NameCreating, parsed)
	})

	t.Run("rejects names outside the set", func(t *testing.T) {
		_, err := ParseName("gardening")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Creating", NameCreating.Display())
	assert.Equal(t, "Working", NameWorking.Display())
}

func TestNewInterest(t *testing.T) {
	now := time.Now()

	t.Run("constructs valid entry", func(t *testing.T) {
		interest, err := NewInterest(id.NewInterestID(), NameCaring, "  Supporting others  ", now)
		require.NoError(t, err)
		assert.Equal(t, NameCaring, interest.Name)
		assert.Equal(t, "Supporting others", interest.Description)
		assert.Equal(t, now, interest.CreatedAt)
	})

	t.Run("rejects name outside the set", func(t *testing.T) {
		_, err := NewInterest(id.NewInterestID(), Name("gardening"), "", now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}
