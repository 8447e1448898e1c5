package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastStatement(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "single",
			text:   "Step 1: count names.\nVisualize BAR SELECT name, COUNT(name)\nFROM employee",
			want:   "Visualize BAR SELECT name, COUNT(name) FROM employee",
			wantOK: true,
		},
		{
			name:   "last wins",
			text:   "draft: visualize pie select a, b from t\nfinal: \"Visualize BAR SELECT a, b FROM t\"",
			want:   "Visualize BAR SELECT a, b FROM t",
			wantOK: true,
		},
		{
			name: "none",
			text: "I cannot answer that.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LastStatement(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAfterMarker(t *testing.T) {
	got, ok := AfterMarker("reasoning...\nfinal vql: old\nFinal VQL:\n Visualize LINE SELECT d, COUNT(d) FROM t BIN d BY year\n", "")
	assert.True(t, ok)
	assert.Equal(t, "Visualize LINE SELECT d, COUNT(d) FROM t BIN d BY year", got)

	_, ok = AfterMarker("no marker here", DefaultMarker)
	assert.False(t, ok)

	_, ok = AfterMarker("Final VQL:   ", DefaultMarker)
	assert.False(t, ok)

	got, ok = AfterMarker("Answer(1): Visualize BAR SELECT a, b FROM t", "Answer(1):")
	assert.True(t, ok)
	assert.Equal(t, "Visualize BAR SELECT a, b FROM t", got)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "a b c", Clean("  \"a\r\nb\nc\"  "))
}
