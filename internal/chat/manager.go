// Package chat owns the in-memory conversation state: the chat list, the
// active chat, and the single in-flight response stream. All mutations are
// serialized through one mutex; callers observe state through cloned
// snapshots.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	apierrors "github.com/acejesus/aceai/internal/errors"
	"github.com/acejesus/aceai/internal/models"
	"github.com/acejesus/aceai/internal/stream"
)

// Streamer delivers assistant response fragments for a message sequence.
type Streamer interface {
	StreamChat(ctx context.Context, messages []models.CompletionMessage, onFragment func(string) error) error
}

// Analyzer answers a question about a previously uploaded file.
type Analyzer interface {
	AnalyzeFile(ctx context.Context, fileID, question string) (string, error)
}

// Manager coordinates chats and response streaming. At most one response
// stream runs at a time across all chats; submissions while one is active
// are dropped.
type Manager struct {
	mu        sync.Mutex
	chats     []models.Chat
	activeID  string
	streaming bool

	streamer Streamer
	analyzer Analyzer

	persist         func([]models.Chat) error
	onDelete        func(chatID string)
	onChange        func()
	onResponseStart func()
	onAdvisory      func(string)
}

// Option configures a Manager.
type Option func(*Manager)

// WithAnalyzer enables file analysis submissions.
func WithAnalyzer(a Analyzer) Option {
	return func(m *Manager) {
		m.analyzer = a
	}
}

// WithPersist installs the save hook invoked after every persisted
// mutation. A hook error surfaces through the advisory callback; it never
// fails the mutation itself.
func WithPersist(fn func([]models.Chat) error) Option {
	return func(m *Manager) {
		m.persist = fn
	}
}

// WithOnDelete installs a callback fired after a chat is removed from the
// list. The persist hook only upserts, so remote stores need the id to
// tombstone the document.
func WithOnDelete(fn func(chatID string)) Option {
	return func(m *Manager) {
		m.onDelete = fn
	}
}

// WithOnChange installs a callback fired after every state change.
func WithOnChange(fn func()) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}

// WithOnResponseStart installs a callback fired once per stream when the
// first visible answer text arrives.
func WithOnResponseStart(fn func()) Option {
	return func(m *Manager) {
		m.onResponseStart = fn
	}
}

// WithOnAdvisory installs a callback for non-fatal warnings, such as a
// failed save.
func WithOnAdvisory(fn func(string)) Option {
	return func(m *Manager) {
		m.onAdvisory = fn
	}
}

// NewManager creates a Manager seeded with the given chats. An empty seed
// gets a single default chat. The first chat becomes active.
func NewManager(streamer Streamer, seed []models.Chat, opts ...Option) *Manager {
	m := &Manager{
		streamer: streamer,
		chats:    models.CloneChats(seed),
	}
	if len(m.chats) == 0 {
		m.chats = []models.Chat{models.DefaultChat()}
	}
	m.activeID = m.chats[0].ID

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Chats returns a deep copy of the chat list.
func (m *Manager) Chats() []models.Chat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.CloneChats(m.chats)
}

// ActiveID returns the id of the active chat.
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// ActiveChat returns a deep copy of the active chat.
func (m *Manager) ActiveChat() (models.Chat, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.findChat(m.activeID); c != nil {
		return c.Clone(), true
	}
	return models.Chat{}, false
}

// IsStreaming reports whether a response stream is in flight.
func (m *Manager) IsStreaming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streaming
}

// CreateChat adds a fresh chat at the head of the list and makes it
// active.
func (m *Manager) CreateChat() models.Chat {
	m.mu.Lock()
	c := models.NewChat()
	m.chats = append([]models.Chat{c}, m.chats...)
	m.activeID = c.ID
	m.mu.Unlock()

	m.save()
	m.changed()
	return c.Clone()
}

// SetActive switches the active chat.
func (m *Manager) SetActive(id string) error {
	m.mu.Lock()
	if m.findChat(id) == nil {
		m.mu.Unlock()
		return apierrors.ErrChatNotFound
	}
	m.activeID = id
	m.mu.Unlock()

	m.changed()
	return nil
}

// DeleteChat removes a chat. Deleting the active chat promotes the first
// remaining chat; deleting the last chat leaves a fresh default chat.
func (m *Manager) DeleteChat(id string) error {
	m.mu.Lock()
	idx := -1
	for i := range m.chats {
		if m.chats[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return apierrors.ErrChatNotFound
	}

	m.chats = append(m.chats[:idx], m.chats[idx+1:]...)
	if len(m.chats) == 0 {
		m.chats = []models.Chat{models.DefaultChat()}
	}
	if m.activeID == id {
		m.activeID = m.chats[0].ID
	}
	m.mu.Unlock()

	if m.onDelete != nil {
		m.onDelete(id)
	}
	m.save()
	m.changed()
	return nil
}

// Submit sends user input to the active chat and streams the reply.
// Blank input and input during an active stream are dropped silently. The
// call blocks until the stream finishes.
func (m *Manager) Submit(ctx context.Context, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}

	m.mu.Lock()
	if m.streaming {
		m.mu.Unlock()
		return
	}
	c := m.findChat(m.activeID)
	if c == nil {
		m.mu.Unlock()
		return
	}
	m.streaming = true
	m.appendUserMessage(c, models.NewMessage(models.RoleUser, content))
	chatID := c.ID
	m.mu.Unlock()

	m.changed()
	m.streamReply(ctx, chatID)
}

// SaveEdit rewrites a user message in place, drops everything after it,
// and regenerates the reply from the edited history.
func (m *Manager) SaveEdit(ctx context.Context, messageID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return apierrors.ErrEmptyMessage
	}

	m.mu.Lock()
	if m.streaming {
		m.mu.Unlock()
		return apierrors.ErrStreamActive
	}
	c := m.findChat(m.activeID)
	if c == nil {
		m.mu.Unlock()
		return apierrors.ErrChatNotFound
	}
	idx := findMessage(c, messageID)
	if idx < 0 || c.Messages[idx].Role != models.RoleUser {
		m.mu.Unlock()
		return apierrors.ErrMessageNotFound
	}

	msg := &c.Messages[idx]
	msg.Content = content
	msg.Editing = false
	msg.OriginalContent = ""
	c.Messages = c.Messages[:idx+1]
	c.UpdatedAt = time.Now()

	m.streaming = true
	chatID := c.ID
	m.mu.Unlock()

	m.changed()
	m.streamReply(ctx, chatID)
	return nil
}

// Regenerate replaces an assistant message with a fresh reply. The turn is
// replayed as a new submission, so the user message that prompted it is
// appended again before streaming.
func (m *Manager) Regenerate(ctx context.Context, messageID string) error {
	m.mu.Lock()
	if m.streaming {
		m.mu.Unlock()
		return apierrors.ErrStreamActive
	}
	c := m.findChat(m.activeID)
	if c == nil {
		m.mu.Unlock()
		return apierrors.ErrChatNotFound
	}
	idx := findMessage(c, messageID)
	if idx <= 0 || c.Messages[idx].Role != models.RoleAssistant {
		m.mu.Unlock()
		return apierrors.ErrMessageNotFound
	}

	content := c.Messages[idx-1].Content
	c.Messages = c.Messages[:idx]
	c.UpdatedAt = time.Now()

	m.streaming = true
	m.appendUserMessage(c, models.NewMessage(models.RoleUser, content))
	chatID := c.ID
	m.mu.Unlock()

	m.changed()
	m.streamReply(ctx, chatID)
	return nil
}

// StartEdit marks a user message as being edited, remembering its current
// content for cancellation.
func (m *Manager) StartEdit(messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.findChat(m.activeID)
	if c == nil {
		return apierrors.ErrChatNotFound
	}
	idx := findMessage(c, messageID)
	if idx < 0 || c.Messages[idx].Role != models.RoleUser {
		return apierrors.ErrMessageNotFound
	}

	msg := &c.Messages[idx]
	msg.Editing = true
	msg.OriginalContent = msg.Content
	return nil
}

// CancelEdit restores an in-edit message to its original content.
func (m *Manager) CancelEdit(messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.findChat(m.activeID)
	if c == nil {
		return apierrors.ErrChatNotFound
	}
	idx := findMessage(c, messageID)
	if idx < 0 || !c.Messages[idx].Editing {
		return apierrors.ErrMessageNotFound
	}

	msg := &c.Messages[idx]
	msg.Editing = false
	msg.Content = msg.OriginalContent
	msg.OriginalContent = ""
	return nil
}

// ToggleThinking flips the reasoning panel on an assistant message.
func (m *Manager) ToggleThinking(messageID string) error {
	m.mu.Lock()
	c := m.findChat(m.activeID)
	if c == nil {
		m.mu.Unlock()
		return apierrors.ErrChatNotFound
	}
	idx := findMessage(c, messageID)
	if idx < 0 || c.Messages[idx].Thinking == "" {
		m.mu.Unlock()
		return apierrors.ErrMessageNotFound
	}
	c.Messages[idx].ThinkingExpanded = !c.Messages[idx].ThinkingExpanded
	m.mu.Unlock()

	m.changed()
	return nil
}

// SubmitFileQuestion asks the model about an uploaded file in the active
// chat. The reply arrives whole, not streamed; a placeholder stands in
// while analysis runs.
func (m *Manager) SubmitFileQuestion(ctx context.Context, fileID, fileName, question string) {
	question = strings.TrimSpace(question)
	if question == "" || m.analyzer == nil {
		return
	}

	m.mu.Lock()
	if m.streaming {
		m.mu.Unlock()
		return
	}
	c := m.findChat(m.activeID)
	if c == nil {
		m.mu.Unlock()
		return
	}
	m.streaming = true

	// A chat opened by a file question takes its name from the file, not
	// the question text.
	if len(c.Messages) == 0 && c.Name == models.DefaultChatName && fileName != "" {
		c.Name = models.DeriveName("Analysis of " + fileName)
	}

	userMsg := models.NewMessage(models.RoleUser, question)
	userMsg.FileID = fileID
	userMsg.FileName = fileName
	m.appendUserMessage(c, userMsg)

	reply := models.NewMessage(models.RoleAssistant, models.AnalyzingPlaceholder)
	c.Messages = append(c.Messages, reply)
	chatID := c.ID
	replyID := reply.ID
	m.mu.Unlock()

	m.changed()

	answer, err := m.analyzer.AnalyzeFile(ctx, fileID, question)
	if err != nil {
		answer = models.AnalysisApologyMessage
	}

	m.mu.Lock()
	if msg := m.lookupMessage(chatID, replyID); msg != nil {
		msg.Content = answer
	}
	m.streaming = false
	m.mu.Unlock()

	m.save()
	m.changed()
}

// ReplaceAll swaps in a fresh chat list, used when the remote store pushes
// an update. The swap is skipped while a stream is active so in-flight
// content is not clobbered. The active chat survives if it still exists.
func (m *Manager) ReplaceAll(chats []models.Chat) {
	m.mu.Lock()
	if m.streaming {
		m.mu.Unlock()
		return
	}
	m.chats = models.CloneChats(chats)
	if len(m.chats) == 0 {
		m.chats = []models.Chat{models.DefaultChat()}
	}
	if m.findChat(m.activeID) == nil {
		m.activeID = m.chats[0].ID
	}
	m.mu.Unlock()

	m.changed()
}

// streamReply appends an assistant message to the chat and fills it from
// the response stream. The streaming flag must already be set; it is
// cleared before returning.
func (m *Manager) streamReply(ctx context.Context, chatID string) {
	m.mu.Lock()
	c := m.findChat(chatID)
	if c == nil {
		m.streaming = false
		m.mu.Unlock()
		return
	}

	reply := models.NewMessage(models.RoleAssistant, "")
	c.Messages = append(c.Messages, reply)
	replyID := reply.ID

	history := make([]models.CompletionMessage, 0, len(c.Messages)+1)
	history = append(history, models.CompletionMessage{Role: models.RoleSystem, Content: models.SystemPrompt})
	for _, msg := range c.Messages[:len(c.Messages)-1] {
		history = append(history, msg.ToCompletion())
	}
	m.mu.Unlock()

	m.changed()

	parser := stream.NewParser(m.onResponseStart)
	apply := func(snap stream.Snapshot) {
		m.mu.Lock()
		if msg := m.lookupMessage(chatID, replyID); msg != nil {
			msg.Content = snap.Content
			msg.Thinking = snap.Thinking
			msg.ThinkingExpanded = snap.Expanded
		}
		m.mu.Unlock()
		m.changed()
	}

	err := m.streamer.StreamChat(ctx, history, func(fragment string) error {
		apply(parser.Feed(fragment))
		return nil
	})

	if err != nil {
		m.mu.Lock()
		if msg := m.lookupMessage(chatID, replyID); msg != nil {
			msg.Content = models.ApologyMessage
			msg.Thinking = ""
			msg.ThinkingExpanded = false
		}
		m.mu.Unlock()
	} else {
		apply(parser.Finish())
	}

	m.mu.Lock()
	if c := m.findChat(chatID); c != nil {
		c.UpdatedAt = time.Now()
	}
	m.streaming = false
	m.mu.Unlock()

	m.save()
	m.changed()
}

// appendUserMessage adds a user message and names the chat from its first
// message. Callers must hold the mutex.
func (m *Manager) appendUserMessage(c *models.Chat, msg models.Message) {
	if len(c.Messages) == 0 && c.Name == models.DefaultChatName {
		c.Name = models.DeriveName(msg.Content)
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}

// findChat returns the chat with the given id. Callers must hold the
// mutex; the pointer is invalid once it is released.
func (m *Manager) findChat(id string) *models.Chat {
	for i := range m.chats {
		if m.chats[i].ID == id {
			return &m.chats[i]
		}
	}
	return nil
}

// lookupMessage returns the message with the given id inside a chat.
// Callers must hold the mutex.
func (m *Manager) lookupMessage(chatID, messageID string) *models.Message {
	c := m.findChat(chatID)
	if c == nil {
		return nil
	}
	if idx := findMessage(c, messageID); idx >= 0 {
		return &c.Messages[idx]
	}
	return nil
}

func findMessage(c *models.Chat, messageID string) int {
	for i := range c.Messages {
		if c.Messages[i].ID == messageID {
			return i
		}
	}
	return -1
}

func (m *Manager) save() {
	if m.persist == nil {
		return
	}
	m.mu.Lock()
	snapshot := models.CloneChats(m.chats)
	m.mu.Unlock()

	if err := m.persist(snapshot); err != nil && m.onAdvisory != nil {
		m.onAdvisory("failed to save chats: " + err.Error())
	}
}

func (m *Manager) changed() {
	if m.onChange != nil {
		m.onChange()
	}
}
