package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/acejesus/aceai/internal/models"
)

// updateChatSelection handles input while the chat selector overlay is
// open. Printable characters filter the list.
func (m Model) updateChatSelection(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case chatsChangedMsg:
		return m, m.waitForEvent()

	case advisoryMsg:
		m.advisory = msg.text
		return m, m.waitForEvent()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			m.closeSelector()

		case "up", "ctrl+p":
			if n := len(m.filteredChats()); n > 0 {
				m.chatsCursor--
				if m.chatsCursor < 0 {
					m.chatsCursor = n - 1
				}
			}

		case "down", "ctrl+n":
			if n := len(m.filteredChats()); n > 0 {
				m.chatsCursor++
				if m.chatsCursor >= n {
					m.chatsCursor = 0
				}
			}

		case "enter":
			filtered := m.filteredChats()
			if len(filtered) > 0 && m.chatsCursor < len(filtered) {
				_ = m.manager.SetActive(filtered[m.chatsCursor].ID)
				m.closeSelector()
				m.refreshViewport()
				m.viewport.GotoBottom()
			}

		case "ctrl+d":
			filtered := m.filteredChats()
			if len(filtered) > 0 && m.chatsCursor < len(filtered) && !m.manager.IsStreaming() {
				_ = m.manager.DeleteChat(filtered[m.chatsCursor].ID)
				if m.chatsCursor > 0 {
					m.chatsCursor--
				}
				m.refreshViewport()
			}

		case "backspace":
			if len(m.chatsFilter) > 0 {
				m.chatsFilter = m.chatsFilter[:len(m.chatsFilter)-1]
				m.chatsCursor = 0
			}

		default:
			if len(msg.String()) == 1 {
				r := []rune(msg.String())[0]
				if r >= ' ' && r <= '~' {
					m.chatsFilter += msg.String()
					m.chatsCursor = 0
				}
			}
		}
	}

	return m, nil
}

func (m *Model) closeSelector() {
	m.selectingChat = false
	m.chatsCursor = 0
	m.chatsFilter = ""
}

// filteredChats returns the chat list narrowed by the current filter.
func (m Model) filteredChats() []models.Chat {
	chats := m.manager.Chats()
	if m.chatsFilter == "" {
		return chats
	}

	filter := strings.ToLower(m.chatsFilter)
	var filtered []models.Chat
	for _, c := range chats {
		if strings.Contains(strings.ToLower(c.Name), filter) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// renderChatSelector draws the chat picker overlay.
func (m Model) renderChatSelector() string {
	width := m.width - 8
	if width < 40 {
		width = 40
	}

	var content strings.Builder

	content.WriteString(selectorTitleStyle.Render("Your chats"))
	content.WriteString("\n\n")

	if m.chatsFilter != "" {
		content.WriteString(inputLabelStyle.Render("🔍 ") + m.chatsFilter + "_")
		content.WriteString("\n\n")
	}

	filtered := m.filteredChats()
	if len(filtered) == 0 {
		content.WriteString(hintStyle.Render("  No chats match"))
		content.WriteString("\n")
	} else {
		activeID := m.manager.ActiveID()

		maxItems := 10
		startIdx := 0
		if m.chatsCursor >= maxItems {
			startIdx = m.chatsCursor - maxItems + 1
		}
		endIdx := startIdx + maxItems
		if endIdx > len(filtered) {
			endIdx = len(filtered)
		}

		if startIdx > 0 {
			content.WriteString(hintStyle.Render("  ↑ more above") + "\n")
		}

		for i := startIdx; i < endIdx; i++ {
			c := filtered[i]
			cursor := "  "
			nameStyle := selectorItemStyle
			if i == m.chatsCursor {
				cursor = selectorCursorStyle.Render("▸ ")
				nameStyle = selectorSelectedStyle
			}

			line := fmt.Sprintf("%s%s %s", cursor, nameStyle.Render(c.Name),
				selectorMetaStyle.Render(fmt.Sprintf("(%d messages)", len(c.Messages))))
			if c.ID == activeID {
				line += selectorMetaStyle.Render("  • active")
			}
			content.WriteString(line + "\n")
		}

		if endIdx < len(filtered) {
			content.WriteString(hintStyle.Render("  ↓ more below") + "\n")
		}
	}

	content.WriteString("\n")

	shortcuts := []string{
		statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Navigate"),
		statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Open"),
		statusKeyStyle.Render("^D") + statusDescStyle.Render(" Delete"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" Back"),
	}
	content.WriteString(strings.Join(shortcuts, "  │  "))

	return selectorBoxStyle.Width(width).Render(content.String())
}
