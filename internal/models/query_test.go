package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *Filter
		wantErr  bool
	}{
		{
			name:     "empty string means no filter",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace only means no filter",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "simple key value",
			input:    "subject:Elon Musk",
			expected: &Filter{Key: "subject", Value: "Elon Musk"},
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    " company : Tesla ",
			expected: &Filter{Key: "company", Value: "Tesla"},
		},
		{
			name:     "value keeps extra colons",
			input:    "time_period:1990s:2000s",
			expected: &Filter{Key: "time_period", Value: "1990s:2000s"},
		},
		{
			name:    "missing separator",
			input:   "subject",
			wantErr: true,
		},
		{
			name:    "empty key",
			input:   ":Tesla",
			wantErr: true,
		},
		{
			name:    "empty value",
			input:   "subject:",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := ParseFilter(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, filter)
		})
	}
}
