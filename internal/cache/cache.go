// Package cache provides local key-value persistence for guest chats and
// preferences. It is the sole store for unauthenticated sessions and the
// unconditional backup for authenticated ones.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/acejesus/aceai/internal/models"
)

const (
	chatsFile = "guest_chats.json"
	prefsFile = "prefs.json"
)

// prefs is the preference blob kept alongside the chat list.
type prefs struct {
	AudioEnabled *bool `json:"audio_enabled,omitempty"`
	// TransferredUsers guards TransferGuestChats against running twice for
	// the same account.
	TransferredUsers []string `json:"transferred_users,omitempty"`
}

// Cache is a file-backed key-value store under a single directory.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a cache rooted at dir, creating it if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// LoadChats reads the serialized chat list. An empty, missing or corrupt
// blob yields a single default chat; the caller always gets a usable list.
func (c *Cache) LoadChats() []models.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(c.dir, chatsFile))
	if err != nil {
		return []models.Chat{models.DefaultChat()}
	}

	var chats []models.Chat
	if err := json.Unmarshal(data, &chats); err != nil || len(chats) == 0 {
		return []models.Chat{models.DefaultChat()}
	}
	return chats
}

// SaveChats writes the full chat list blob.
func (c *Cache) SaveChats(chats []models.Chat) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(chats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chats: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, chatsFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write chats: %w", err)
	}
	return nil
}

// ClearChats removes the stored chat list.
func (c *Cache) ClearChats() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(filepath.Join(c.dir, chatsFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear chats: %w", err)
	}
	return nil
}

// AudioEnabled reports the notification-sound preference. Defaults to true.
func (c *Cache) AudioEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.loadPrefs()
	if p.AudioEnabled == nil {
		return true
	}
	return *p.AudioEnabled
}

// SetAudioEnabled persists the notification-sound preference.
func (c *Cache) SetAudioEnabled(enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.loadPrefs()
	p.AudioEnabled = &enabled
	return c.savePrefs(p)
}

// Transferred reports whether guest chats were already migrated for userID.
func (c *Cache) Transferred(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range c.loadPrefs().TransferredUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// MarkTransferred records a completed guest-chat migration for userID.
func (c *Cache) MarkTransferred(userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.loadPrefs()
	for _, id := range p.TransferredUsers {
		if id == userID {
			return nil
		}
	}
	p.TransferredUsers = append(p.TransferredUsers, userID)
	return c.savePrefs(p)
}

func (c *Cache) loadPrefs() prefs {
	var p prefs
	data, err := os.ReadFile(filepath.Join(c.dir, prefsFile))
	if err != nil {
		return p
	}
	// Corrupt prefs fall back to defaults rather than failing.
	_ = json.Unmarshal(data, &p)
	return p
}

func (c *Cache) savePrefs(p prefs) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, prefsFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}
