package validation

import (
	"strings"
	"testing"

	"github.com/CollinsRutto/realtorgpt/internal/models"
)

func TestValidateChatRequest_Valid(t *testing.T) {
	t.Parallel()

	req := &ChatRequest{
		Message: "What are rental yields like in Kilimani?",
		MessageHistory: []models.ChatMessage{
			{Role: "user", Content: "Hi"},
			{Role: "assistant", Content: "Hello! How can I help? 🏠"},
		},
	}

	if err := ValidateChatRequest(req); err != nil {
		t.Fatalf("Expected valid request, got error: %v", err)
	}
	if req.Context != models.ContextGeneral {
		t.Errorf("Expected default context %q, got %q", models.ContextGeneral, req.Context)
	}
}

func TestValidateChatRequest_EmptyMessage(t *testing.T) {
	t.Parallel()

	req := &ChatRequest{Message: "   "}
	if err := ValidateChatRequest(req); err == nil {
		t.Fatal("Expected error for whitespace-only message")
	}
}

func TestValidateChatRequest_OversizedMessage(t *testing.T) {
	t.Parallel()

	req := &ChatRequest{Message: strings.Repeat("a", MaxMessageLength+1)}
	if err := ValidateChatRequest(req); err == nil {
		t.Fatal("Expected error for message over 2000 characters")
	}

	req = &ChatRequest{Message: strings.Repeat("a", MaxMessageLength)}
	if err := ValidateChatRequest(req); err != nil {
		t.Fatalf("Expected message at exactly 2000 characters to pass, got: %v", err)
	}
}

func TestValidateChatRequest_TooMuchHistory(t *testing.T) {
	t.Parallel()

	history := make([]models.ChatMessage, MaxHistoryLength+1)
	for i := range history {
		history[i] = models.ChatMessage{Role: "user", Content: "hello"}
	}

	req := &ChatRequest{Message: "hi", MessageHistory: history}
	if err := ValidateChatRequest(req); err == nil {
		t.Fatal("Expected error for history over 20 entries")
	}
}

func TestValidateChatRequest_InvalidRole(t *testing.T) {
	t.Parallel()

	req := &ChatRequest{
		Message:        "hi",
		MessageHistory: []models.ChatMessage{{Role: "moderator", Content: "x"}},
	}
	if err := ValidateChatRequest(req); err == nil {
		t.Fatal("Expected error for invalid role")
	}
}

func TestValidateChatRequest_OversizedHistoryEntry(t *testing.T) {
	t.Parallel()

	req := &ChatRequest{
		Message: "hi",
		MessageHistory: []models.ChatMessage{
			{Role: "user", Content: strings.Repeat("b", MaxMessageLength+1)},
		},
	}
	if err := ValidateChatRequest(req); err == nil {
		t.Fatal("Expected error for oversized history entry")
	}
}

func TestValidateChatRequest_InvalidContext(t *testing.T) {
	t.Parallel()

	req := &ChatRequest{Message: "hi", Context: "lawyer"}
	if err := ValidateChatRequest(req); err == nil {
		t.Fatal("Expected error for unknown context")
	}

	req = &ChatRequest{Message: "hi", Context: "realtor"}
	if err := ValidateChatRequest(req); err != nil {
		t.Fatalf("Expected realtor context to pass, got: %v", err)
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	got := SanitizeText("  hello\x00world ")
	if got != "helloworld" {
		t.Errorf("Expected control characters removed and whitespace trimmed, got %q", got)
	}

	got = SanitizeText("line one\nline two")
	if got != "line one\nline two" {
		t.Errorf("Expected newlines preserved, got %q", got)
	}
}
