package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/CollinsRutto/realtorgpt/internal/services/llm"
)

const (
	// UpstreamTimeout bounds how long a single chat completion may take
	// before the caller gets a gateway timeout.
	UpstreamTimeout = 25 * time.Second

	// chatEndpoint is the endpoint name recorded in usage metrics.
	chatEndpoint = "/api/chat"
)

// UsageRecorder accepts usage records for metering. Implementations must
// not block the request path.
type UsageRecorder interface {
	Record(ctx context.Context, rec *models.UsageRecord)
}

// Service orchestrates a chat turn: prompt assembly, the upstream
// completion call, response cleanup, and usage metering.
type Service struct {
	provider llm.Provider
	counter  TokenCounter
	recorder UsageRecorder
	logger   *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a chat service. recorder may be nil when metering
// is disabled.
func NewService(provider llm.Provider, counter TokenCounter, recorder UsageRecorder, logger *zap.Logger) *Service {
	if counter == nil {
		counter = ApproxCounter{}
	}
	return &Service{
		provider: provider,
		counter:  counter,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Result is a completed chat turn.
type Result struct {
	Response string
	Duration time.Duration
}

// Respond runs one chat turn. userID is nil for anonymous visitors;
// usage is metered only for signed-in users. Returns the cleaned
// assistant reply and how long the upstream call took.
func (s *Service) Respond(ctx context.Context, userID *uuid.UUID, message string, history []models.ChatMessage, chatContext string) (*Result, error) {
	messages := BuildMessages(chatContext, message, history, s.now())

	upstreamCtx, cancel := context.WithTimeout(ctx, UpstreamTimeout)
	defer cancel()

	start := s.now()
	completion, err := s.provider.Complete(upstreamCtx, messages)
	duration := s.now().Sub(start)

	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	cleaned := CleanMarkdown(completion.Content)

	if userID != nil && s.recorder != nil {
		inputTokens := 0
		for _, msg := range messages {
			inputTokens += s.counter.Count(msg.Content)
		}
		outputTokens := s.counter.Count(completion.Content)
		s.recorder.Record(ctx, &models.UsageRecord{
			UserID:       *userID,
			Endpoint:     chatEndpoint,
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			TotalTokens:  inputTokens + outputTokens,
			DurationMs:   duration.Milliseconds(),
			Timestamp:    s.now(),
		})
	}

	s.logger.Info("chat_completed",
		zap.Bool("authenticated", userID != nil),
		zap.String("context", chatContext),
		zap.Int("history_length", len(history)),
		zap.Int64("duration_ms", duration.Milliseconds()),
	)

	return &Result{Response: cleaned, Duration: duration}, nil
}
