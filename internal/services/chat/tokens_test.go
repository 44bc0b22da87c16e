package chat

import "testing"

func TestApproxCounter(t *testing.T) {
	t.Parallel()

	counter := ApproxCounter{}

	tests := []struct {
		text     string
		expected int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
		{"The quick brown fox", 5},
		// Runes, not bytes: four emoji are one token despite 16 bytes.
		{"\U0001F3E0\U0001F3E0\U0001F3E0\U0001F3E0", 1},
		{"Karibu ééé", 3},
	}

	for _, tt := range tests {
		if got := counter.Count(tt.text); got != tt.expected {
			t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.expected)
		}
	}
}

func TestApproxCounter_Monotonic(t *testing.T) {
	t.Parallel()

	counter := ApproxCounter{}
	prev := 0
	text := ""
	for i := 0; i < 50; i++ {
		text += "word "
		got := counter.Count(text)
		if got < prev {
			t.Fatalf("Count decreased from %d to %d at length %d", prev, got, len(text))
		}
		prev = got
	}
}
