package processor

import (
	"regexp"
	"strings"
)

// thinkingPattern matches one well-formed reasoning span, including the
// markers, across newlines. Unpaired markers never match, so malformed
// output passes through untouched.
var thinkingPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinking removes every well-formed <think>...</think> span from the
// model output and trims the surrounding whitespace.
func StripThinking(text string) string {
	return strings.TrimSpace(thinkingPattern.ReplaceAllString(text, ""))
}
