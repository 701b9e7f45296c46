package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", FormatDuration(0))
	assert.Equal(t, "00:05", FormatDuration(5))
	assert.Equal(t, "02:34", FormatDuration(154))
	assert.Equal(t, "10:00", FormatDuration(600))
	assert.Equal(t, "00:00", FormatDuration(-3))
}

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "9b0b867", ShortSHA("9b0b867deadbeef0123456789"))
	assert.Equal(t, "abc", ShortSHA("abc"))
	assert.Equal(t, "unknown", ShortSHA(""))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "fix: routing", firstLine("fix: routing\n\nlong body", 30))
	assert.Equal(t, "No commit message", firstLine("", 30))
	assert.Equal(t, "aaaaa", firstLine("aaaaaaaa", 5))
}

func TestLastLines(t *testing.T) {
	assert.Nil(t, lastLines("", 5))
	assert.Nil(t, lastLines("  \n ", 5))
	assert.Equal(t, []string{"c", "d"}, lastLines("a\nb\nc\nd", 2))
	assert.Equal(t, []string{"a", "b"}, lastLines("a\nb\n", 5))
}
