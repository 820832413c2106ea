package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The Forest Hiker", "the-forest-hiker"},
		{"Sea   Explorer!", "sea-explorer"},
		{"  The Snow Adventurer  ", "the-snow-adventurer"},
		{"Tour #5: City & Park", "tour-5-city-park"},
		{"ALL CAPS NAME", "all-caps-name"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Make(tt.input))
		})
	}
}
