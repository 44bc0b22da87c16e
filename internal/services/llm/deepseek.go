package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/CollinsRutto/realtorgpt/internal/models"
)

const (
	// DefaultModel is the DeepSeek chat model used for completions
	DefaultModel = "deepseek-chat"
	// DefaultBaseURL is the DeepSeek API base URL (OpenAI-compatible)
	DefaultBaseURL = "https://api.deepseek.com"
	// DefaultTimeout caps a single HTTP round trip to the API
	DefaultTimeout = 30 * time.Second

	// completionTemperature keeps answers conversational but stable
	completionTemperature = 0.7
	// completionMaxTokens bounds the length of a single reply
	completionMaxTokens = 1000

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// DeepSeekProvider implements Provider against the DeepSeek chat API,
// which speaks the OpenAI wire protocol.
type DeepSeekProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewDeepSeekProvider creates a provider with default base URL and model.
func NewDeepSeekProvider(apiKey string) *DeepSeekProvider {
	return NewDeepSeekProviderWithLogger(apiKey, DefaultBaseURL, DefaultModel, nil, false)
}

// NewDeepSeekProviderWithLogger creates a provider with logger support.
func NewDeepSeekProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *DeepSeekProvider {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	// No automatic retries: a failed upstream call surfaces immediately
	// instead of burning latency on the SDK's default retry loop.
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &DeepSeekProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// Complete sends the conversation to DeepSeek and returns the assistant
// reply. The caller controls the overall deadline through ctx.
func (p *DeepSeekProvider) Complete(ctx context.Context, messages []models.ChatMessage) (*Completion, error) {
	apiMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			apiMessages = append(apiMessages, openai.SystemMessage(msg.Content))
		case models.RoleAssistant:
			apiMessages = append(apiMessages, openai.AssistantMessage(msg.Content))
		default:
			apiMessages = append(apiMessages, openai.UserMessage(msg.Content))
		}
	}

	if p.logger != nil && p.debugMode {
		previews := make([]string, 0, len(messages))
		for _, msg := range messages {
			previews = append(previews, SanitizePrompt(msg.Content, false))
		}
		p.logger.Debug("llm_api_request",
			zap.String("model", p.model),
			zap.Int("message_count", len(apiMessages)),
			zap.Strings("message_previews", previews),
		)
	}

	req := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.model),
		Messages:    apiMessages,
		Temperature: openai.Float(completionTemperature),
		MaxTokens:   openai.Int(completionMaxTokens),
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("model", p.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to complete chat: %w", apiErr)
		}
		return nil, fmt.Errorf("failed to complete chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New(ErrNoChoicesInResponse)
	}
	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, false)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return &Completion{Content: content}, nil
}
