package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/acejesus/aceai/internal/chat"
	"github.com/acejesus/aceai/internal/models"
	"github.com/acejesus/aceai/internal/render"
)

// Messages delivered to the program loop.
type (
	// chatsChangedMsg means manager state moved; redraw from a fresh
	// snapshot.
	chatsChangedMsg struct{}
	// streamDoneMsg means a submission finished end to end.
	streamDoneMsg struct{}
	// advisoryMsg carries a non-fatal warning for the banner.
	advisoryMsg struct{ text string }
)

// Events bridges chat.Manager callbacks into the bubbletea loop. Callbacks
// fire on the manager's goroutine; the channel hands them to Update.
type Events struct {
	ch    chan tea.Msg
	audio func() bool
}

// NewEvents creates the callback bridge. audio gates the notification
// bell; nil means always on.
func NewEvents(audio func() bool) *Events {
	return &Events{ch: make(chan tea.Msg, 64), audio: audio}
}

// Changed is wired to chat.WithOnChange.
func (e *Events) Changed() { e.send(chatsChangedMsg{}) }

// Advisory is wired to chat.WithOnAdvisory.
func (e *Events) Advisory(text string) { e.send(advisoryMsg{text}) }

// ResponseStart is wired to chat.WithOnResponseStart. The bell is a
// control character, so writing it mid-frame is safe.
func (e *Events) ResponseStart() {
	if e.audio == nil || e.audio() {
		os.Stderr.WriteString("\a")
	}
}

// send never blocks; a full queue just drops the redraw hint, and the
// next event repaints anyway.
func (e *Events) send(msg tea.Msg) {
	select {
	case e.ch <- msg:
	default:
	}
}

// Model is the chat TUI state.
type Model struct {
	manager *chat.Manager
	events  *Events

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	modelName string
	userName  string

	// editingID is the message being edited, empty outside edit mode.
	editingID string

	// Chat selector overlay state.
	selectingChat bool
	chatsCursor   int
	chatsFilter   string

	advisory string
	err      error

	ready  bool
	width  int
	height int
}

// ModelOption configures the TUI model.
type ModelOption func(*Model)

// WithModelName shows the completions model id in the header.
func WithModelName(name string) ModelOption {
	return func(m *Model) {
		m.modelName = name
	}
}

// WithUserName shows who is signed in. Empty means guest.
func WithUserName(name string) ModelOption {
	return func(m *Model) {
		m.userName = name
	}
}

// NewModel creates the chat TUI model. events must be the same bridge
// wired into the manager's callbacks.
func NewModel(manager *chat.Manager, events *Events, opts ...ModelOption) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	m := Model{
		manager:  manager,
		events:   events,
		textarea: ta,
		spinner:  s,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.waitForEvent(),
	)
}

// waitForEvent blocks on the callback bridge and re-arms after every
// received message.
func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events.ch
	return func() tea.Msg {
		return <-ch
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.selectingChat {
		return m.updateChatSelection(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case chatsChangedMsg:
		m.refreshViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.waitForEvent())
		if m.manager.IsStreaming() {
			cmds = append(cmds, m.spinner.Tick)
		}

	case advisoryMsg:
		m.advisory = msg.text
		cmds = append(cmds, m.waitForEvent())

	case streamDoneMsg:
		m.refreshViewport()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.manager.IsStreaming() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}
	}

	if !m.manager.IsStreaming() {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) layout() {
	headerHeight := 4
	inputHeight := 6
	statusHeight := 1
	padding := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := m.width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.refreshViewport()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true

	case "esc":
		if m.editingID != "" {
			_ = m.manager.CancelEdit(m.editingID)
			m.editingID = ""
			m.textarea.Reset()
			m.refreshViewport()
			return m, nil, true
		}
		return m, tea.Quit, true

	case "enter":
		input := strings.TrimSpace(m.textarea.Value())
		if m.manager.IsStreaming() || input == "" {
			return m, nil, true
		}
		if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
			return m, tea.Quit, true
		}

		m.advisory = ""
		m.err = nil
		m.textarea.Reset()

		if m.editingID != "" {
			id := m.editingID
			m.editingID = ""
			return m, tea.Batch(m.saveEdit(id, input), m.spinner.Tick), true
		}
		return m, tea.Batch(m.submit(input), m.spinner.Tick), true

	case "ctrl+n":
		if !m.manager.IsStreaming() {
			m.manager.CreateChat()
			m.refreshViewport()
		}
		return m, nil, true

	case "ctrl+l":
		m.selectingChat = true
		m.chatsCursor = 0
		m.chatsFilter = ""
		return m, nil, true

	case "ctrl+r":
		if id, ok := m.lastAssistantID(); ok && !m.manager.IsStreaming() {
			return m, tea.Batch(m.regenerate(id), m.spinner.Tick), true
		}
		return m, nil, true

	case "ctrl+e":
		if m.manager.IsStreaming() || m.editingID != "" {
			return m, nil, true
		}
		if id, content, ok := m.lastUserMessage(); ok {
			if err := m.manager.StartEdit(id); err == nil {
				m.editingID = id
				m.textarea.SetValue(content)
				m.refreshViewport()
			}
		}
		return m, nil, true

	case "ctrl+t":
		if id, ok := m.lastThinkingID(); ok {
			_ = m.manager.ToggleThinking(id)
		}
		return m, nil, true

	case "ctrl+y":
		if content, ok := m.lastAssistantContent(); ok {
			if err := clipboard.WriteAll(content); err != nil {
				m.advisory = "clipboard unavailable"
			} else {
				m.advisory = "response copied to clipboard"
			}
		}
		return m, nil, true
	}

	return m, nil, false
}

func (m Model) submit(input string) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		manager.Submit(context.Background(), input)
		return streamDoneMsg{}
	}
}

func (m Model) saveEdit(messageID, content string) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		if err := manager.SaveEdit(context.Background(), messageID, content); err != nil {
			return advisoryMsg{text: err.Error()}
		}
		return streamDoneMsg{}
	}
}

func (m Model) regenerate(messageID string) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		if err := manager.Regenerate(context.Background(), messageID); err != nil {
			return advisoryMsg{text: err.Error()}
		}
		return streamDoneMsg{}
	}
}

func (m Model) lastUserMessage() (id, content string, ok bool) {
	c, found := m.manager.ActiveChat()
	if !found {
		return "", "", false
	}
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == models.RoleUser {
			return c.Messages[i].ID, c.Messages[i].Content, true
		}
	}
	return "", "", false
}

func (m Model) lastAssistantID() (string, bool) {
	c, found := m.manager.ActiveChat()
	if !found {
		return "", false
	}
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == models.RoleAssistant {
			return c.Messages[i].ID, true
		}
	}
	return "", false
}

func (m Model) lastAssistantContent() (string, bool) {
	c, found := m.manager.ActiveChat()
	if !found {
		return "", false
	}
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == models.RoleAssistant && c.Messages[i].Content != "" {
			return c.Messages[i].Content, true
		}
	}
	return "", false
}

func (m Model) lastThinkingID() (string, bool) {
	c, found := m.manager.ActiveChat()
	if !found {
		return "", false
	}
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == models.RoleAssistant && c.Messages[i].Thinking != "" {
			return c.Messages[i].ID, true
		}
	}
	return "", false
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	c, ok := m.manager.ActiveChat()
	if !ok {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(renderTranscript(c, m.viewport.Width, m.editingID))
}

// renderTranscript draws a chat's messages at the given width. editingID
// marks the message currently open in the input box.
func renderTranscript(c models.Chat, width int, editingID string) string {
	var content strings.Builder
	bubbleWidth := width - 6

	for i, msg := range c.Messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == models.RoleUser {
			label := userLabelStyle.Render("⬤ You")
			if msg.ID == editingID {
				label += hintStyle.Render("  (editing)")
			}
			content.WriteString(label + "\n")
			if msg.FileName != "" {
				content.WriteString(fileTagStyle.Render("📎 "+msg.FileName) + "\n")
			}
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Content))
		} else {
			content.WriteString(assistantLabelStyle.Render("✦ AceAI") + "\n")

			if msg.Thinking != "" && msg.ThinkingExpanded {
				content.WriteString(thinkingStyle.Width(bubbleWidth - 4).Render("💭 " + msg.Thinking))
				content.WriteString("\n")
			}

			rendered, err := render.MarkdownWithWidth(msg.Content, bubbleWidth-4)
			if err != nil {
				rendered = msg.Content
			}
			rendered = strings.TrimRight(rendered, "\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
		}
		content.WriteString("\n")
	}

	return content.String()
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.selectingChat {
		return m.renderChatSelector()
	}

	var sections []string
	contentWidth := m.width - 4

	sections = append(sections, m.renderHeader(contentWidth))

	var messagesContent string
	c, _ := m.manager.ActiveChat()
	if len(c.Messages) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	var inputContent string
	if m.manager.IsStreaming() {
		inputContent = m.spinner.View() + loadingStyle.Render(" AceAI is thinking...")
	} else {
		label := inputLabelStyle.Render("You")
		if m.editingID != "" {
			label = editLabelStyle.Render("Editing")
		}
		inputContent = lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.advisory != "" {
		sections = append(sections, advisoryStyle.Render("⚠ "+m.advisory))
	}
	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(width int) string {
	parts := []string{titleStyle.Render("✦ AceAI")}
	if m.modelName != "" {
		parts = append(parts, hintStyle.Render("  •  "), subtitleStyle.Render(m.modelName))
	}
	who := "guest"
	if m.userName != "" {
		who = m.userName
	}
	parts = append(parts, hintStyle.Render("  •  "), subtitleStyle.Render(who))

	if c, ok := m.manager.ActiveChat(); ok {
		parts = append(parts, hintStyle.Render("  •  "), selectorMetaStyle.Render(c.Name))
	}

	content := lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	return headerStyle.Width(width).Render(content)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	title := welcomeTitleStyle.Width(width).Render("Welcome to AceAI")
	subtitle := welcomeStyle.Width(width).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(lipgloss.Center, "", title, "", subtitle, "")

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"^N", "New"},
		{"^L", "Chats"},
		{"^E", "Edit"},
		{"^R", "Retry"},
		{"^T", "Thinking"},
		{"^Y", "Copy"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// RunChat starts the chat TUI.
func RunChat(manager *chat.Manager, events *Events, opts ...ModelOption) error {
	p := tea.NewProgram(
		NewModel(manager, events, opts...),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

// Describe returns a one-line summary of a chat for list displays.
func Describe(c models.Chat) string {
	return fmt.Sprintf("%s (%d messages)", c.Name, len(c.Messages))
}
