package render

import "strings"

// ellipsis is appended when content is truncated to fit a box row.
const ellipsis = "..."

// BoxWidth is the interior content width, in cells, of the terminal-style
// panels built for deployment notifications.
const BoxWidth = 60

// Pad right-pads content with spaces so that label plus the padded content
// occupy exactly width cells. When label+content would meet or exceed the
// width, the content is truncated from the end and the ellipsis marker
// appended instead; the result then never exceeds width and carries no
// padding. Padding is never negative. Deterministic for identical input.
func Pad(label, content string, width int) string {
	avail := width - DisplayWidth(label)
	if avail <= 0 {
		return ""
	}
	cw := DisplayWidth(content)
	if cw <= avail {
		return content + strings.Repeat(" ", avail-cw)
	}
	if avail <= len(ellipsis) {
		return ellipsis[:avail]
	}
	return TruncateWidth(content, avail-len(ellipsis)) + ellipsis
}

// TruncateWidth returns the longest prefix of s whose display width does not
// exceed maxWidth. A wide rune straddling the boundary is dropped rather
// than split.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	width := 0
	for i, r := range s {
		rw := 1
		if isZeroWidth(r) {
			rw = 0
		} else if DisplayWidth(string(r)) == 2 {
			rw = 2
		}
		if width+rw > maxWidth {
			return s[:i]
		}
		width += rw
	}
	return s
}

// Row builds one bordered line: "│ " + label + padded content + "│".
// Every row of a panel has the same display width, so the right border
// always lines up with the header and footer.
func Row(label, content string, width int) string {
	return "│ " + label + Pad(label, content, width) + "│"
}

// interior is the cell count between a row's vertical borders: the leading
// space plus the padded content.
func interior(width int) int { return width + 1 }

// HeaderLine builds the top border with an embedded title:
// "┌ TITLE ─────┐". The fill is computed so the line's interior exactly
// matches Row's, regardless of the title length.
func HeaderLine(title string, width int) string {
	segment := " " + title + " "
	fill := interior(width) - DisplayWidth(segment)
	if fill < 0 {
		segment = " " + TruncateWidth(title, interior(width)-2) + " "
		fill = interior(width) - DisplayWidth(segment)
	}
	return "┌" + segment + strings.Repeat("─", fill) + "┐"
}

// FooterLine builds the bottom border matching HeaderLine's width.
func FooterLine(width int) string {
	return "└" + strings.Repeat("─", interior(width)) + "┘"
}
