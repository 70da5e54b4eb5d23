package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultChatID is the reserved id of the placeholder chat shown before any
// message has been sent. A default chat with zero messages is never persisted
// remotely.
const DefaultChatID = "default"

// MaxChatNameLen is the display-name budget derived from the first message.
const MaxChatNameLen = 30

// DefaultChatName is the name of a chat before it has any messages.
const DefaultChatName = "New Chat"

// Chat is one conversation. Messages are in chronological order. The copy
// held by the Chat State Manager is authoritative; cached and remote copies
// are derived from it.
type Chat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NewChat creates an empty chat with a fresh id.
func NewChat() Chat {
	return Chat{
		ID:        uuid.NewString(),
		Name:      DefaultChatName,
		Messages:  []Message{},
		CreatedAt: time.Now(),
	}
}

// DefaultChat returns the reserved placeholder chat.
func DefaultChat() Chat {
	return Chat{
		ID:        DefaultChatID,
		Name:      DefaultChatName,
		Messages:  []Message{},
		CreatedAt: time.Now(),
	}
}

// DeriveName builds a chat name from its first user message (or file name),
// truncated to MaxChatNameLen characters with an ellipsis.
func DeriveName(firstMessage string) string {
	runes := []rune(firstMessage)
	if len(runes) <= MaxChatNameLen {
		return firstMessage
	}
	return string(runes[:MaxChatNameLen]) + "..."
}

// Clone returns a deep copy of the chat. The manager hands clones to
// listeners so UI code can never alias the authoritative slice.
func (c Chat) Clone() Chat {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// CloneChats deep-copies a chat list.
func CloneChats(chats []Chat) []Chat {
	out := make([]Chat, len(chats))
	for i, c := range chats {
		out[i] = c.Clone()
	}
	return out
}
