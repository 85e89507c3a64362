package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSummaryRunes caps every diagnostic that may be echoed back to the provider.
const MaxSummaryRunes = 300

const ellipsis = "…"

// Summarize reduces a validation diagnostic to something safe to log and to
// send in a repair prompt: the first non-empty line, control characters
// dropped, whitespace collapsed, at most MaxSummaryRunes runes.
func Summarize(diagnostic string) string {
	line := firstLine(diagnostic)

	var b strings.Builder
	b.Grow(len(line))
	pendingSpace := false
	for _, r := range line {
		switch {
		case r == utf8.RuneError:
			continue
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
			continue
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}

	out := b.String()
	if utf8.RuneCountInString(out) <= MaxSummaryRunes {
		return out
	}
	runes := []rune(out)
	return strings.TrimRightFunc(string(runes[:MaxSummaryRunes-1]), unicode.IsSpace) + ellipsis
}

func firstLine(s string) string {
	for _, line := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}
