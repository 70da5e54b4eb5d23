// Package models contains the core data types for AceAI chats.
package models

import "github.com/google/uuid"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single chat turn. While a response is streaming, the parser
// mutates the last assistant message in place. OriginalContent is set only
// while Editing is true and is restored into Content on cancel.
type Message struct {
	ID               string `json:"id"`
	Role             Role   `json:"role"`
	Content          string `json:"content"`
	Thinking         string `json:"thinking,omitempty"`
	ThinkingExpanded bool   `json:"is_thinking_expanded,omitempty"`
	Editing          bool   `json:"is_editing,omitempty"`
	OriginalContent  string `json:"original_content,omitempty"`
	FileID           string `json:"file_id,omitempty"`
	FileName         string `json:"file_name,omitempty"`
}

// NewMessage creates a message with a fresh id.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
	}
}

// CompletionMessage is the wire shape sent to the completions endpoint.
// Only role and content cross the wire; UI state stays local.
type CompletionMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToCompletion strips a message down to its wire shape.
func (m Message) ToCompletion() CompletionMessage {
	return CompletionMessage{Role: m.Role, Content: m.Content}
}
