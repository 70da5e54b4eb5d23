package commands

import (
	"testing"
	"time"

	"github.com/acejesus/aceai/internal/config"
	"github.com/acejesus/aceai/internal/models"
)

func TestGetModel(t *testing.T) {
	cfg := config.DefaultConfig()

	modelFlag = ""
	if got := getModel(cfg); got != cfg.Model {
		t.Errorf("getModel = %s, want config default", got)
	}

	modelFlag = "llama-3.3-70b-versatile"
	defer func() { modelFlag = "" }()
	if got := getModel(cfg); got != "llama-3.3-70b-versatile" {
		t.Errorf("getModel = %s, want flag value", got)
	}
}

func TestRootSubcommands(t *testing.T) {
	want := []string{"chat", "login", "register", "logout", "whoami", "files", "export", "audio"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestPickChat(t *testing.T) {
	old := models.NewChat()
	old.Name = "Old chat"
	old.Messages = []models.Message{models.NewMessage(models.RoleUser, "hi")}
	old.UpdatedAt = time.Now().Add(-time.Hour)

	recent := models.NewChat()
	recent.Name = "Recent chat"
	recent.Messages = []models.Message{models.NewMessage(models.RoleUser, "hi")}
	recent.UpdatedAt = time.Now()

	empty := models.NewChat()
	empty.Name = "Empty chat"
	empty.UpdatedAt = time.Now().Add(time.Hour)

	chats := []models.Chat{old, recent, empty}

	// No target picks the most recent chat that has messages.
	got, err := pickChat(chats, "")
	if err != nil {
		t.Fatalf("pickChat failed: %v", err)
	}
	if got.ID != recent.ID {
		t.Errorf("picked %q, want %q", got.Name, recent.Name)
	}

	// Id match wins over name match.
	got, err = pickChat(chats, old.ID)
	if err != nil || got.ID != old.ID {
		t.Errorf("pickChat by id = %v, %v", got.Name, err)
	}

	// Name match is case-insensitive.
	got, err = pickChat(chats, "old CHAT")
	if err != nil || got.ID != old.ID {
		t.Errorf("pickChat by name = %v, %v", got.Name, err)
	}

	if _, err := pickChat(chats, "nope"); err == nil {
		t.Error("expected error for unknown chat")
	}

	if _, err := pickChat([]models.Chat{empty}, ""); err == nil {
		t.Error("expected error when only empty chats exist")
	}
}
