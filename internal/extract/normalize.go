package extract

import (
	"regexp"
	"strings"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]{2,}`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
	paddedLines = regexp.MustCompile(`[ \t]*\n[ \t]*`)
)

// Normalize cleans raw extracted text into the form the section parser
// expects: characters outside the allow-list (Hangul, Latin letters, digits,
// whitespace) are stripped, runs of spaces collapse to one space, and runs of
// blank lines collapse to a single blank line. Single newlines and one blank
// line survive because the parser keys on line structure.
func Normalize(text string) string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if allowRune(r) {
			b.WriteRune(r)
		}
	}

	out := spaceRuns.ReplaceAllString(b.String(), " ")
	out = paddedLines.ReplaceAllString(out, "\n")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func allowRune(r rune) bool {
	switch {
	case r >= '가' && r <= '힣':
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ', r == '\t', r == '\n':
		return true
	}
	return false
}
