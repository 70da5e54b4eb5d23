// Package export turns chats into shareable files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/acejesus/aceai/internal/models"
)

// Format selects the output encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Options configures an export.
type Options struct {
	Format          Format
	IncludeThinking bool
}

// DefaultOptions exports Markdown with reasoning included.
func DefaultOptions() Options {
	return Options{
		Format:          FormatMarkdown,
		IncludeThinking: true,
	}
}

// ToMarkdown renders a chat transcript as Markdown. User turns appear
// under "### User" and assistant turns under "### AceAI", separated by
// horizontal rules.
func ToMarkdown(c models.Chat, opts Options) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(c.Name)
	sb.WriteString("\n\n")

	sb.WriteString("**Created:** ")
	sb.WriteString(c.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString("**Messages:** ")
	sb.WriteString(fmt.Sprintf("%d", len(c.Messages)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range c.Messages {
		heading := "User"
		if msg.Role == models.RoleAssistant {
			heading = "AceAI"
		}
		sb.WriteString("### ")
		sb.WriteString(heading)
		sb.WriteString("\n\n")

		if msg.FileName != "" {
			sb.WriteString("*Attached file: ")
			sb.WriteString(msg.FileName)
			sb.WriteString("*\n\n")
		}

		if opts.IncludeThinking && msg.Thinking != "" {
			sb.WriteString("<details>\n<summary>Thinking</summary>\n\n")
			sb.WriteString(msg.Thinking)
			sb.WriteString("\n\n</details>\n\n")
		}

		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(c.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// ToJSON renders a chat as pretty-printed JSON.
func ToJSON(c models.Chat, opts Options) ([]byte, error) {
	type exportMessage struct {
		Role     models.Role `json:"role"`
		Content  string      `json:"content"`
		Thinking string      `json:"thinking,omitempty"`
		FileName string      `json:"file_name,omitempty"`
	}
	type exportChat struct {
		ID         string          `json:"id"`
		Name       string          `json:"name"`
		CreatedAt  time.Time       `json:"created_at"`
		ExportedAt time.Time       `json:"exported_at"`
		Messages   []exportMessage `json:"messages"`
	}

	out := exportChat{
		ID:         c.ID,
		Name:       c.Name,
		CreatedAt:  c.CreatedAt,
		ExportedAt: time.Now(),
		Messages:   make([]exportMessage, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		out.Messages[i] = exportMessage{
			Role:     msg.Role,
			Content:  msg.Content,
			FileName: msg.FileName,
		}
		if opts.IncludeThinking {
			out.Messages[i].Thinking = msg.Thinking
		}
	}

	return json.MarshalIndent(out, "", "  ")
}

// WriteFile exports a chat into dir and returns the written path. The
// file is named after the chat, sanitized for the filesystem.
func WriteFile(c models.Chat, dir string, opts Options) (string, error) {
	var (
		data []byte
		ext  string
		err  error
	)
	switch opts.Format {
	case FormatJSON:
		ext = ".json"
		data, err = ToJSON(c, opts)
		if err != nil {
			return "", fmt.Errorf("failed to encode chat: %w", err)
		}
	default:
		ext = ".md"
		data = []byte(ToMarkdown(c, opts))
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, SanitizeFilename(c.Name)+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// SanitizeFilename strips characters that are unsafe in file names.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "chat"
	}

	var sb strings.Builder
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			sb.WriteRune('-')
		default:
			sb.WriteRune(r)
		}
	}

	out := strings.Trim(sb.String(), ". ")
	if out == "" {
		return "chat"
	}
	return out
}
