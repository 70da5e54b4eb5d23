package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/acejesus/aceai/internal/models"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestCache_LoadChats_Empty(t *testing.T) {
	c := newTestCache(t)

	chats := c.LoadChats()
	if len(chats) != 1 {
		t.Fatalf("expected 1 default chat, got %d", len(chats))
	}
	if chats[0].ID != models.DefaultChatID {
		t.Errorf("ID = %s, want %s", chats[0].ID, models.DefaultChatID)
	}
}

func TestCache_SaveAndLoadChats(t *testing.T) {
	c := newTestCache(t)

	chat := models.NewChat()
	chat.Name = "greetings"
	chat.Messages = append(chat.Messages, models.NewMessage(models.RoleUser, "hi"))

	if err := c.SaveChats([]models.Chat{chat}); err != nil {
		t.Fatalf("SaveChats failed: %v", err)
	}

	loaded := c.LoadChats()
	if len(loaded) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(loaded))
	}
	if loaded[0].ID != chat.ID || loaded[0].Name != "greetings" {
		t.Errorf("loaded chat = %+v", loaded[0])
	}
	if len(loaded[0].Messages) != 1 || loaded[0].Messages[0].Content != "hi" {
		t.Errorf("messages did not round-trip: %+v", loaded[0].Messages)
	}
}

func TestCache_LoadChats_Corrupt(t *testing.T) {
	dir := t.TempDir()
	c, _ := New(dir)

	if err := os.WriteFile(filepath.Join(dir, "guest_chats.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	chats := c.LoadChats()
	if len(chats) != 1 || chats[0].ID != models.DefaultChatID {
		t.Errorf("corrupt blob should yield one default chat, got %+v", chats)
	}
}

func TestCache_ClearChats(t *testing.T) {
	c := newTestCache(t)

	chat := models.NewChat()
	chat.Messages = append(chat.Messages, models.NewMessage(models.RoleUser, "hi"))
	if err := c.SaveChats([]models.Chat{chat}); err != nil {
		t.Fatal(err)
	}
	if err := c.ClearChats(); err != nil {
		t.Fatalf("ClearChats failed: %v", err)
	}

	chats := c.LoadChats()
	if len(chats) != 1 || chats[0].ID != models.DefaultChatID {
		t.Errorf("expected default chat after clear, got %+v", chats)
	}

	// Clearing an already-empty cache is not an error.
	if err := c.ClearChats(); err != nil {
		t.Errorf("second ClearChats failed: %v", err)
	}
}

func TestCache_AudioPreference(t *testing.T) {
	c := newTestCache(t)

	if !c.AudioEnabled() {
		t.Error("audio should default to enabled")
	}
	if err := c.SetAudioEnabled(false); err != nil {
		t.Fatalf("SetAudioEnabled failed: %v", err)
	}
	if c.AudioEnabled() {
		t.Error("audio should be disabled after SetAudioEnabled(false)")
	}
}

func TestCache_TransferMarker(t *testing.T) {
	c := newTestCache(t)

	if c.Transferred("user-1") {
		t.Error("fresh cache should not report a transfer")
	}
	if err := c.MarkTransferred("user-1"); err != nil {
		t.Fatalf("MarkTransferred failed: %v", err)
	}
	if !c.Transferred("user-1") {
		t.Error("transfer marker was not persisted")
	}
	if c.Transferred("user-2") {
		t.Error("marker must be scoped per user")
	}

	// Marking twice stays idempotent.
	if err := c.MarkTransferred("user-1"); err != nil {
		t.Fatalf("second MarkTransferred failed: %v", err)
	}
}
