package pdffigures

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseComponentName(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		class      ComponentClass
		index      int
		confidence float64
		ok         bool
	}{
		{"figure", "figure_0_score0.95.jpg", ClassFigure, 0, 0.95, true},
		{"multi word class", "figure_caption_12_score0.40.jpg", ClassFigureCaption, 12, 0.40, true},
		{"table caption above", "table_caption_above_3_score0.88.jpg", ClassTableCaptionAbove, 3, 0.88, true},
		{"integer score", "table_7_score1.jpg", ClassTable, 7, 1.0, true},
		{"no score token", "figure_0.jpg", "", 0, 0, false},
		{"wrong extension", "figure_0_score0.95.png", "", 0, 0, false},
		{"missing index", "figure_score0.95.jpg", "", 0, 0, false},
		{"trailing junk", "figure_0_score0.95.jpg.bak", "", 0, 0, false},
		{"foreign file", ".DS_Store", "", 0, 0, false},
		{"empty", "", "", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, index, confidence, ok := ParseComponentName(tt.filename)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			require.Equal(t, tt.class, class)
			require.Equal(t, tt.index, index)
			require.InDelta(t, tt.confidence, confidence, 1e-9)
		})
	}
}

func TestComponentName_RoundTrip(t *testing.T) {
	name := ComponentName(ClassTableCaptionBelow, 41, 0.876)
	require.Equal(t, "table_caption_below_41_score0.88.jpg", name)

	class, index, confidence, ok := ParseComponentName(name)
	require.True(t, ok)
	require.Equal(t, ClassTableCaptionBelow, class)
	require.Equal(t, 41, index)
	require.InDelta(t, 0.88, confidence, 1e-9)
}
