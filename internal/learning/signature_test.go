package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignature(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{
			name:        "brand token wins",
			description: "Uber Trip 482 San Francisco",
			want:        "UBER",
		},
		{
			name:        "specific brand token",
			description: "UBER EATS PENDING",
			want:        "UBER EATS",
		},
		{
			name:        "punctuated variant folds to the coarser brand",
			description: "UBER *EATS PENDING",
			want:        "UBER",
		},
		{
			name:        "suffix variants cluster together",
			description: "NETFLIX.COM 866-579-7172",
			want:        "NETFLIX",
		},
		{
			name:        "first two long tokens",
			description: "SQ JOES CORNER DELI",
			want:        "JOES CORNER",
		},
		{
			name:        "short tokens skipped",
			description: "TO GO COFFEE ROASTERS",
			want:        "COFFEE ROASTERS",
		},
		{
			name:        "single usable token",
			description: "COSTCO",
			want:        "COSTCO",
		},
		{
			name:        "empty description",
			description: "",
			want:        "",
		},
		{
			name:        "whitespace only",
			description: "   ",
			want:        "",
		},
		{
			name:        "only short tokens",
			description: "A BC 12",
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Signature(tt.description))
		})
	}
}
