package render

import (
	"fmt"
	"strings"
)

// FormatDuration renders elapsed seconds as zero-padded "MM:SS".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ShortSHA trims a commit SHA to its conventional 7-character form.
func ShortSHA(sha string) string {
	if sha == "" {
		return "unknown"
	}
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// firstLine returns the first line of s trimmed to at most max runes.
func firstLine(s string, max int) string {
	if s == "" {
		return "No commit message"
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}

// truncateRunes shortens s to max runes, replacing the tail with the
// ellipsis marker when it does not fit.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= len(ellipsis) {
		return string(runes[:max])
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}

// lastLines returns at most n trailing lines of the newline-separated text.
func lastLines(text string, n int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
