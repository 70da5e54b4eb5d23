package tui

import (
	"context"
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/acejesus/aceai/internal/chat"
	"github.com/acejesus/aceai/internal/models"
)

var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// stripANSI removes terminal escape sequences so substring assertions see
// the text the way a reader does.
func stripANSI(s string) string {
	return ansiSeq.ReplaceAllString(s, "")
}

type stubStreamer struct {
	reply string
}

func (s *stubStreamer) StreamChat(_ context.Context, _ []models.CompletionMessage, onFragment func(string) error) error {
	return onFragment(s.reply)
}

func newTestModel(t *testing.T, reply string) Model {
	t.Helper()
	manager := chat.NewManager(&stubStreamer{reply: reply}, nil)
	m := NewModel(manager, NewEvents(func() bool { return false }),
		WithModelName("test-model"), WithUserName("Ada"))

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func TestWindowSizeReadiesModel(t *testing.T) {
	m := newTestModel(t, "hi")
	if !m.ready {
		t.Fatal("model should be ready after the first size message")
	}
	if !strings.Contains(m.View(), "Welcome to AceAI") {
		t.Error("empty chat should show the welcome screen")
	}
}

func TestHeaderShowsIdentity(t *testing.T) {
	m := newTestModel(t, "hi")
	view := m.View()
	for _, want := range []string{"AceAI", "test-model", "Ada"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestEnterSubmits(t *testing.T) {
	m := newTestModel(t, "the answer")
	m.textarea.SetValue("a question")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("enter with input should produce a command")
	}
	if m.textarea.Value() != "" {
		t.Error("input should clear on submit")
	}
}

func TestEnterOnBlankInputDoesNothing(t *testing.T) {
	m := newTestModel(t, "unused")
	m.textarea.SetValue("   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("blank input should not produce a command")
	}
}

func TestExitWordsQuit(t *testing.T) {
	for _, word := range []string{"exit", "quit", "/exit", "/quit"} {
		m := newTestModel(t, "unused")
		m.textarea.SetValue(word)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd == nil {
			t.Fatalf("%q should produce a quit command", word)
		}
		if msg := cmd(); msg != tea.Quit() {
			t.Errorf("%q produced %v, want quit", word, msg)
		}
	}
}

func TestCtrlNCreatesChat(t *testing.T) {
	m := newTestModel(t, "hi")
	before := len(m.manager.Chats())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = updated.(Model)

	if got := len(m.manager.Chats()); got != before+1 {
		t.Errorf("chats = %d, want %d", got, before+1)
	}
}

func TestChatSelectorFlow(t *testing.T) {
	m := newTestModel(t, "hi")
	m.manager.Submit(context.Background(), "name me")
	first := m.manager.ActiveID()
	m.manager.CreateChat()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = updated.(Model)
	if !m.selectingChat {
		t.Fatal("ctrl+l should open the selector")
	}
	if !strings.Contains(m.View(), "Your chats") {
		t.Error("selector overlay should render")
	}

	// Move to the second entry and open it.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.selectingChat {
		t.Error("selector should close on enter")
	}
	if m.manager.ActiveID() != first {
		t.Errorf("active = %s, want %s", m.manager.ActiveID(), first)
	}
}

func TestChatSelectorFilter(t *testing.T) {
	m := newTestModel(t, "hi")
	m.manager.Submit(context.Background(), "golang channels")
	m.manager.CreateChat()
	m.manager.Submit(context.Background(), "dinner recipes")

	m.selectingChat = true
	m.chatsFilter = "golang"

	filtered := m.filteredChats()
	if len(filtered) != 1 || !strings.Contains(filtered[0].Name, "golang") {
		t.Errorf("filtered = %+v", filtered)
	}
}

func TestEditFlow(t *testing.T) {
	m := newTestModel(t, "first answer")
	m.manager.Submit(context.Background(), "original question")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	m = updated.(Model)

	if m.editingID == "" {
		t.Fatal("ctrl+e should enter edit mode")
	}
	if m.textarea.Value() != "original question" {
		t.Errorf("textarea = %q", m.textarea.Value())
	}

	// Esc cancels the edit and restores the message.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.editingID != "" {
		t.Error("esc should leave edit mode")
	}
	c, _ := m.manager.ActiveChat()
	if c.Messages[0].Editing {
		t.Error("message should no longer be marked editing")
	}
}

func TestRenderTranscript(t *testing.T) {
	c := models.NewChat()
	user := models.NewMessage(models.RoleUser, "what is a goroutine?")
	user.FileName = "notes.txt"
	reply := models.NewMessage(models.RoleAssistant, "A lightweight thread.")
	reply.Thinking = "recall the runtime docs"
	reply.ThinkingExpanded = true
	c.Messages = append(c.Messages, user, reply)

	out := stripANSI(renderTranscript(c, 80, ""))
	for _, want := range []string{
		"You",
		"what is a goroutine?",
		"notes.txt",
		"AceAI",
		"lightweight thread",
		"recall the runtime docs",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q", want)
		}
	}

	// Collapsed thinking stays hidden.
	c.Messages[1].ThinkingExpanded = false
	out = stripANSI(renderTranscript(c, 80, ""))
	if strings.Contains(out, "recall the runtime docs") {
		t.Error("collapsed thinking should not render")
	}
}

func TestEventsBridge(t *testing.T) {
	e := NewEvents(func() bool { return false })

	e.Changed()
	if msg := <-e.ch; msg != (chatsChangedMsg{}) {
		t.Errorf("msg = %v", msg)
	}

	e.Advisory("save failed")
	if msg := <-e.ch; msg != (advisoryMsg{text: "save failed"}) {
		t.Errorf("msg = %v", msg)
	}

	// A full queue drops rather than blocks.
	for i := 0; i < cap(e.ch)+10; i++ {
		e.Changed()
	}
}

func TestFormatError(t *testing.T) {
	if FormatError(nil) != "" {
		t.Error("nil error should format empty")
	}
}
