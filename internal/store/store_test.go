package store

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/acejesus/aceai/internal/models"
)

func TestPersistable(t *testing.T) {
	if persistable(models.DefaultChat()) {
		t.Error("empty placeholder chat should not persist")
	}

	withMessage := models.DefaultChat()
	withMessage.Messages = append(withMessage.Messages, models.NewMessage(models.RoleUser, "hi"))
	if !persistable(withMessage) {
		t.Error("placeholder chat with messages should persist")
	}

	if !persistable(models.NewChat()) {
		t.Error("a real chat should persist even while empty")
	}
}

func TestBatchFields(t *testing.T) {
	fields := make(map[string]string)
	for i := 0; i < 10; i++ {
		fields[fmt.Sprintf("chat-%02d", i)] = "doc"
	}

	batches := batchFields(fields, 4)
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}

	total := 0
	seen := make(map[string]bool)
	for _, b := range batches {
		if len(b) > 4 {
			t.Errorf("batch has %d entries, cap is 4", len(b))
		}
		total += len(b)
		for k := range b {
			if seen[k] {
				t.Errorf("field %s appears in two batches", k)
			}
			seen[k] = true
		}
	}
	if total != len(fields) {
		t.Errorf("batches carry %d fields, want %d", total, len(fields))
	}
}

func TestBatchFields_SmallInput(t *testing.T) {
	batches := batchFields(map[string]string{"a": "1"}, 400)
	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Errorf("batches = %+v", batches)
	}
	if len(batchFields(nil, 400)) != 0 {
		t.Error("no fields should produce no batches")
	}
}

func TestChatDocRoundTrip(t *testing.T) {
	c := models.NewChat()
	c.Messages = append(c.Messages, models.NewMessage(models.RoleUser, "hello"))

	encoded, err := json.Marshal(chatDoc{Chat: c, Deleted: true})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var doc chatDoc
	if err := json.Unmarshal(encoded, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !doc.Deleted {
		t.Error("tombstone flag lost")
	}
	if doc.Chat.ID != c.ID || len(doc.Chat.Messages) != 1 {
		t.Errorf("chat = %+v", doc.Chat)
	}
}

func TestSortChats(t *testing.T) {
	base := time.Now()
	chats := []models.Chat{
		{ID: "old", CreatedAt: base.Add(-2 * time.Hour)},
		{ID: "new", CreatedAt: base},
		{ID: "mid", CreatedAt: base.Add(-time.Hour)},
	}

	sortChats(chats)

	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if chats[i].ID != id {
			t.Errorf("chats[%d] = %s, want %s", i, chats[i].ID, id)
		}
	}
}

func TestKeys(t *testing.T) {
	if got := chatsKey("u1"); got != "aceai:users:u1:chats" {
		t.Errorf("chatsKey = %s", got)
	}
	if got := eventsChannel("u1"); got != "aceai:users:u1:events" {
		t.Errorf("eventsChannel = %s", got)
	}
}
