package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/CollinsRutto/realtorgpt/internal/request"
	"github.com/CollinsRutto/realtorgpt/internal/services/chat"
	"github.com/CollinsRutto/realtorgpt/internal/services/llm"
	"github.com/CollinsRutto/realtorgpt/internal/validation"
)

// ChatResponder runs a chat turn. Satisfied by *chat.Service.
type ChatResponder interface {
	Respond(ctx context.Context, userID *uuid.UUID, message string, history []models.ChatMessage, chatContext string) (*chat.Result, error)
}

// ChatHandler handles the chat endpoint
type ChatHandler struct {
	service ChatResponder
	logger  *zap.Logger
}

// NewChatHandler creates a new chat handler. service may be nil when no
// API key is configured; requests then fail with a clear error instead
// of the server refusing to start.
func NewChatHandler(service ChatResponder, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

// ChatResponse is the success body for POST /api/chat.
type ChatResponse struct {
	Response     string `json:"response"`
	ResponseTime string `json:"responseTime"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		respondError(w, http.StatusInternalServerError, "DeepSeek API key not configured")
		return
	}

	var req validation.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validation.ValidateChatRequest(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var userID *uuid.UUID
	if user := request.UserFromContext(r.Context()); user != nil {
		userID = &user.ID
	}

	result, err := h.service.Respond(r.Context(), userID, req.Message, req.MessageHistory, req.Context)
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ChatResponse{
		Response:     result.Response,
		ResponseTime: fmt.Sprintf("%dms", result.Duration.Milliseconds()),
	})
}

// respondUpstreamError maps completion failures onto the response
// contract: timeouts become 504, API errors keep their upstream status,
// everything else is a 500.
func (h *ChatHandler) respondUpstreamError(w http.ResponseWriter, err error) {
	if llm.IsTimeout(err) {
		h.logger.Warn("chat_upstream_timeout", zap.Error(err))
		respondError(w, http.StatusGatewayTimeout, "Request timed out")
		return
	}

	if apiErr := llm.ExtractAPIError(err); apiErr != nil {
		h.logger.Error("chat_upstream_api_error",
			zap.Int("status_code", apiErr.StatusCode),
			zap.Error(err),
		)
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		respondError(w, status, fmt.Sprintf("DeepSeek API error: %d", apiErr.StatusCode))
		return
	}

	h.logger.Error("chat_failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "Internal server error")
}
