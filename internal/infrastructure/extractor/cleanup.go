package extractor

import (
	"regexp"
	"strings"
)

var (
	// Words split by a hyphen at a line break ("agree-\nment") are rejoined.
	hyphenBreak = regexp.MustCompile(`(\w)-\s*\n\s*(\w)`)
	lineBreak   = regexp.MustCompile(`\s*\n\s*`)
	multiSpace  = regexp.MustCompile(`[ \t]{2,}`)
)

// CleanText normalizes extracted text to a single line of space-separated
// words. Answer spans index into this cleaned form, so the same cleanup
// must run before tagging and before QA.
func CleanText(text string) string {
	text = hyphenBreak.ReplaceAllString(text, "$1$2")
	text = lineBreak.ReplaceAllString(text, " ")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
