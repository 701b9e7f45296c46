package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayWidthASCII(t *testing.T) {
	for _, s := range []string{"", "a", "hello", "Deploy ID:     ", "main-branch_01"} {
		assert.Equal(t, len(s), DisplayWidth(s), "ASCII width should equal byte length for %q", s)
	}
}

func TestDisplayWidthWideRunes(t *testing.T) {
	assert.Equal(t, 4, DisplayWidth("한국"))
	assert.Equal(t, 8, DisplayWidth("배포완료"))
	assert.Equal(t, 2, DisplayWidth("🚀"))
	assert.Equal(t, 7, DisplayWidth("ok 🚀 go"))
}

func TestDisplayWidthZeroWidthRunes(t *testing.T) {
	// Variation selector adds nothing on top of the base rune.
	assert.Equal(t, DisplayWidth("\u2764"), DisplayWidth("\u2764\ufe0f"))
	// A zero-width joiner on its own counts for nothing.
	assert.Equal(t, 0, DisplayWidth("\u200d"))
	assert.Equal(t, 4, DisplayWidth("ab\u200dcd"))
}

func TestDisplayWidthControlAndUnknown(t *testing.T) {
	// Anything that is neither zero-width nor wide counts as one cell.
	assert.Equal(t, 1, DisplayWidth("\t"))
	assert.Equal(t, 1, DisplayWidth("\x00"))
}
