package chat

import "unicode/utf8"

// TokenCounter estimates how many tokens a piece of text costs upstream.
type TokenCounter interface {
	Count(text string) int
}

// ApproxCounter estimates tokens as characters divided by four, rounded
// up. Counting runes rather than bytes keeps multi-byte text (Swahili
// diacritics, emoji) from inflating the estimate. Good enough for usage
// metering without shipping a tokenizer.
type ApproxCounter struct{}

// Count returns the approximate token count for text.
func (ApproxCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}
