package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	// MaxMessageLength is the maximum length of a chat message or history entry
	MaxMessageLength = 2000
	// MaxHistoryLength is the maximum number of history entries per request
	MaxHistoryLength = 20
)

// Validate is a shared validator instance
var Validate *validator.Validate

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("chat_context", validateChatContext); err != nil {
		panic(fmt.Sprintf("failed to register chat_context validator: %v", err))
	}
}

// validateChatContext validates that a string is a valid assistant context
func validateChatContext(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.ContextGeneral, models.ContextRealtor:
		return true
	default:
		return false
	}
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message        string               `json:"message" validate:"required,max=2000"`
	MessageHistory []models.ChatMessage `json:"messageHistory" validate:"max=20,dive"`
	Context        string               `json:"context" validate:"omitempty,chat_context"`
}

// ValidateChatRequest trims and validates a chat request, returning a
// caller-safe error message on failure. No side effects are performed for
// invalid requests.
func ValidateChatRequest(req *ChatRequest) error {
	req.Message = SanitizeText(req.Message)
	if req.Context == "" {
		req.Context = models.ContextGeneral
	}

	if req.Message == "" {
		return fmt.Errorf("message is required")
	}
	if utf8.RuneCountInString(req.Message) > MaxMessageLength {
		return fmt.Errorf("message exceeds %d characters", MaxMessageLength)
	}
	if len(req.MessageHistory) > MaxHistoryLength {
		return fmt.Errorf("messageHistory exceeds %d entries", MaxHistoryLength)
	}
	for i, m := range req.MessageHistory {
		switch m.Role {
		case models.RoleSystem, models.RoleUser, models.RoleAssistant:
		default:
			return fmt.Errorf("messageHistory[%d] has invalid role %q", i, m.Role)
		}
		if m.Content == "" {
			return fmt.Errorf("messageHistory[%d] has empty content", i)
		}
		if utf8.RuneCountInString(m.Content) > MaxMessageLength {
			return fmt.Errorf("messageHistory[%d] content exceeds %d characters", i, MaxMessageLength)
		}
	}

	if err := Validate.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing
// control characters (newline and tab are kept).
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
