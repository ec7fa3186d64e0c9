package docgen

import (
	"fmt"
	"regexp"
)

// DefaultMaxChars is the per-file character budget.
const DefaultMaxChars = 3000

const truncationFormat = "\n\n... [TRUNCATED %d CHARACTERS] ...\n\n"

var truncationMarker = regexp.MustCompile(`^\n\n\.\.\. \[TRUNCATED \d+ CHARACTERS\] \.\.\.\n\n$`)

// SmartTruncate keeps the first and last budget/2 characters of text and
// replaces the middle with a marker naming how many were dropped. Text
// within budget, or already truncated to the same budget, is returned
// unchanged. Lengths count runes.
func SmartTruncate(text string, budget int) string {
	if budget <= 0 {
		budget = DefaultMaxChars
	}
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}

	half := budget / 2
	middle := string(runes[half : len(runes)-half])
	if truncationMarker.MatchString(middle) {
		return text
	}

	return string(runes[:half]) +
		fmt.Sprintf(truncationFormat, len(runes)-2*half) +
		string(runes[len(runes)-half:])
}
