package schema

import (
	"strings"
	"unicode"
)

// Humanize turns a field id such as "availableStart" or "start_date" into a
// title-cased label ("Available Start", "Start Date").
func Humanize(id string) string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(strings.TrimSpace(id))
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
			continue
		case unicode.IsUpper(r) && len(current) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()

	for i, word := range words {
		head := []rune(word)
		head[0] = unicode.ToUpper(head[0])
		words[i] = string(head)
	}
	return strings.Join(words, " ")
}
