package chat

import (
	"regexp"
	"strings"
)

// headingPrefix matches markdown heading markers at the start of a line.
var headingPrefix = regexp.MustCompile(`(?m)^(#+\s+)+`)

// CleanMarkdown strips the markdown the chat frontend cannot render:
// heading markers and single-asterisk italics. Double-asterisk bold
// survives untouched. Applying the function twice yields the same result
// as applying it once.
func CleanMarkdown(text string) string {
	cleaned := headingPrefix.ReplaceAllString(text, "")
	return stripItalics(cleaned)
}

// stripItalics removes matched pairs of lone * markers around non-empty
// content. Runs of two or more asterisks (bold, and odd runs like ***)
// pass through verbatim, as do unmatched single asterisks, so "2 * 3"
// keeps its operator.
func stripItalics(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); {
		if runes[i] != '*' {
			b.WriteRune(runes[i])
			i++
			continue
		}
		run := 1
		for i+run < len(runes) && runes[i+run] == '*' {
			run++
		}
		if run > 1 {
			for k := 0; k < run; k++ {
				b.WriteRune('*')
			}
			i += run
			continue
		}
		// Lone asterisk: an italic open marker only if a lone closing
		// asterisk follows with content in between.
		j := i + 1
		for j < len(runes) && runes[j] != '*' {
			j++
		}
		closes := j > i+1 && j < len(runes) &&
			(j+1 >= len(runes) || runes[j+1] != '*')
		if closes {
			b.WriteString(string(runes[i+1 : j]))
			i = j + 1
			continue
		}
		b.WriteRune('*')
		i++
	}
	return b.String()
}
