package llm

import (
	"context"

	"github.com/CollinsRutto/realtorgpt/internal/models"
)

// Completion is the text returned by a chat completion call.
type Completion struct {
	Content string
}

// Provider is implemented by chat completion backends.
type Provider interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (*Completion, error)
}
