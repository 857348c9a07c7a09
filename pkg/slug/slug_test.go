package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Sneakers", "sneakers"},
		{"spaces", "Running Shoes", "running-shoes"},
		{"multiple spaces", "Winter   Collection", "winter-collection"},
		{"leading and trailing", "  Formal Shoes  ", "formal-shoes"},
		{"already lowercase", "sandals", "sandals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}
