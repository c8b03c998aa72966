package domain

// Chat message roles, matching the completion API's role/content array.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn in a conversation with the completion API.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
