package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderLineDiff(t *testing.T) {
	tests := []struct {
		name     string
		before   string
		after    string
		contains []string
		empty    bool
	}{
		{
			name:   "identical",
			before: "a\nb\n",
			after:  "a\nb\n",
			empty:  true,
		},
		{
			name:     "changed line",
			before:   "xMin: 7\nyMin: 7\n",
			after:    "xMin: 6\nyMin: 7\n",
			contains: []string{"- xMin: 7", "+ xMin: 6", "  yMin: 7"},
		},
		{
			name:     "added line",
			before:   "xMin: 7\n",
			after:    "xMin: 7\nzMax: 4\n",
			contains: []string{"  xMin: 7", "+ zMax: 4"},
		},
		{
			name:     "removed line",
			before:   "xMin: 7\nzMax: 4\n",
			after:    "xMin: 7\n",
			contains: []string{"- zMax: 4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderLineDiff(tt.before, tt.after)
			if tt.empty {
				assert.Empty(t, got)
				return
			}
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}
