package models

// Chat message roles accepted on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Assistant contexts. The context selects which system prompt the chat
// service sends upstream.
const (
	ContextGeneral = "general"
	ContextRealtor = "realtor"
)

// ChatMessage represents a single message in a conversation. Messages are
// ephemeral: they are assembled per request and never persisted server-side.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required,max=2000"`
}
