package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "trims padded form values",
			input:    []string{"  caring  ", "sharing ", " creating"},
			expected: []string{"caring", "sharing", "creating"},
		},
		{
			name:     "drops repeats keeping first-occurrence order",
			input:    []string{"caring", "sharing", "caring", "working", "sharing"},
			expected: []string{"caring", "sharing", "working"},
		},
		{
			name:     "drops blanks",
			input:    []string{"caring", "", "  ", "working"},
			expected: []string{"caring", "working"},
		},
		{
			name:     "case variants stay distinct",
			input:    []string{"Caring", "caring", "CARING"},
			expected: []string{"Caring", "caring", "CARING"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "case variants collapse to one entry",
			input:    []string{"Caring", "caring", "CARING"},
			expected: []string{"caring"},
		},
		{
			name:     "trims, lowercases and dedupes a form submission",
			input:    []string{"  Creating ", "sharing", "creating", "SHARING", ""},
			expected: []string{"creating", "sharing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimLower(tt.input))
		})
	}
}
