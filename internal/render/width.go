package render

import "github.com/mattn/go-runewidth"

// DisplayWidth returns the number of terminal cells text occupies when
// rendered in a monospace font. Zero-width joiners and variation selectors
// contribute nothing, wide and fullwidth runes (CJK ideographs, most emoji)
// contribute two cells, and everything else — including control and unknown
// runes — contributes one.
//
// The result is what keeps box borders aligned: padding math must agree
// with how chat clients actually lay the text out, not with len().
func DisplayWidth(text string) int {
	width := 0
	for _, r := range text {
		if isZeroWidth(r) {
			continue
		}
		if runewidth.RuneWidth(r) == 2 {
			width += 2
			continue
		}
		width++
	}
	return width
}

// isZeroWidth reports whether r is a zero-width joiner or a variation
// selector. These modify the preceding rune and occupy no cells of their own.
func isZeroWidth(r rune) bool {
	return r == '\u200d' || (r >= '\ufe00' && r <= '\ufe0f')
}
