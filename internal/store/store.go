// Package store persists chats to Redis for signed-in users. Each user owns
// one hash of chat documents plus a pub/sub channel that broadcasts change
// events, so other sessions of the same account can reload.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apierrors "github.com/acejesus/aceai/internal/errors"
	"github.com/acejesus/aceai/internal/models"
)

const keyPrefix = "aceai:users:"

// saveBatchSize caps how many hash fields one pipelined write carries.
const saveBatchSize = 400

// changeEvent is the payload published after every write.
const changeEvent = "chats-updated"

// Store is the remote chat store.
type Store struct {
	client *redis.Client
}

// chatDoc wraps a chat for storage. Deleted chats stay in the hash as
// tombstones so a concurrent session does not resurrect them.
type chatDoc struct {
	Chat    models.Chat `json:"chat"`
	Deleted bool        `json:"deleted,omitempty"`
}

// New connects to Redis at the given URL (redis://...).
func New(url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apierrors.NewStoreError("connect", fmt.Errorf("invalid redis url: %w", err))
	}
	return &Store{client: redis.NewClient(opts)}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apierrors.NewStoreError("ping", err)
	}
	return nil
}

func chatsKey(userID string) string {
	return keyPrefix + userID + ":chats"
}

func eventsChannel(userID string) string {
	return keyPrefix + userID + ":events"
}

// Load returns the user's live chats, newest first. Tombstoned chats are
// filtered out; undecodable documents are skipped rather than failing the
// whole load.
func (s *Store) Load(ctx context.Context, userID string) ([]models.Chat, error) {
	raw, err := s.client.HGetAll(ctx, chatsKey(userID)).Result()
	if err != nil {
		return nil, apierrors.NewStoreError("load", err)
	}

	chats := make([]models.Chat, 0, len(raw))
	for _, encoded := range raw {
		var doc chatDoc
		if err := json.Unmarshal([]byte(encoded), &doc); err != nil {
			continue
		}
		if doc.Deleted {
			continue
		}
		chats = append(chats, doc.Chat)
	}
	sortChats(chats)
	return chats, nil
}

// Save writes the full chat list for a user and publishes a change event.
// Placeholder chats that never received a message are not persisted. Writes
// go out in pipelined batches so a large history does not build one giant
// command.
func (s *Store) Save(ctx context.Context, userID string, chats []models.Chat) error {
	fields := make(map[string]string, len(chats))
	for _, c := range chats {
		if !persistable(c) {
			continue
		}
		encoded, err := json.Marshal(chatDoc{Chat: c})
		if err != nil {
			return apierrors.NewStoreError("save", fmt.Errorf("failed to encode chat %s: %w", c.ID, err))
		}
		fields[c.ID] = string(encoded)
	}
	if len(fields) == 0 {
		return nil
	}

	key := chatsKey(userID)
	for _, batch := range batchFields(fields, saveBatchSize) {
		pipe := s.client.Pipeline()
		for field, value := range batch {
			pipe.HSet(ctx, key, field, value)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return apierrors.NewStoreError("save", err)
		}
	}

	s.publish(ctx, userID)
	return nil
}

// SoftDelete tombstones one chat and publishes a change event.
func (s *Store) SoftDelete(ctx context.Context, userID, chatID string) error {
	key := chatsKey(userID)
	encoded, err := s.client.HGet(ctx, key, chatID).Result()
	if err == redis.Nil {
		return apierrors.ErrChatNotFound
	}
	if err != nil {
		return apierrors.NewStoreError("delete", err)
	}

	var doc chatDoc
	if err := json.Unmarshal([]byte(encoded), &doc); err != nil {
		return apierrors.NewStoreError("delete", fmt.Errorf("corrupt chat document: %w", err))
	}
	doc.Deleted = true

	updated, err := json.Marshal(doc)
	if err != nil {
		return apierrors.NewStoreError("delete", err)
	}
	if err := s.client.HSet(ctx, key, chatID, string(updated)).Err(); err != nil {
		return apierrors.NewStoreError("delete", err)
	}

	s.publish(ctx, userID)
	return nil
}

// MarkAllDeleted tombstones every chat the user has.
func (s *Store) MarkAllDeleted(ctx context.Context, userID string) error {
	chats, err := s.Load(ctx, userID)
	if err != nil {
		return err
	}
	for _, c := range chats {
		if err := s.SoftDelete(ctx, userID, c.ID); err != nil && err != apierrors.ErrChatNotFound {
			return err
		}
	}
	return nil
}

// TransferGuestChats copies guest-session chats into the user's store under
// fresh ids. Empty chats are left behind. The caller is responsible for
// running the transfer at most once per user.
func (s *Store) TransferGuestChats(ctx context.Context, userID string, guestChats []models.Chat) error {
	transferable := make([]models.Chat, 0, len(guestChats))
	for _, c := range guestChats {
		if len(c.Messages) == 0 {
			continue
		}
		moved := c.Clone()
		moved.ID = uuid.NewString()
		transferable = append(transferable, moved)
	}
	if len(transferable) == 0 {
		return nil
	}
	return s.Save(ctx, userID, transferable)
}

// Subscribe listens for change events and reloads the chat list on each
// one, handing the result to onUpdate. A failed reload goes to onError and
// listening continues. The returned function stops the subscription.
func (s *Store) Subscribe(ctx context.Context, userID string, onUpdate func([]models.Chat), onError func(error)) func() {
	pubsub := s.client.Subscribe(ctx, eventsChannel(userID))

	go func() {
		for range pubsub.Channel() {
			chats, err := s.Load(ctx, userID)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			onUpdate(chats)
		}
	}()

	return func() {
		_ = pubsub.Close()
	}
}

// publish is best-effort: a lost event only delays other sessions until
// their next reload.
func (s *Store) publish(ctx context.Context, userID string) {
	_ = s.client.Publish(ctx, eventsChannel(userID), changeEvent).Err()
}

// persistable reports whether a chat is worth storing remotely. The
// default placeholder chat is skipped until it carries a message.
func persistable(c models.Chat) bool {
	if c.ID == models.DefaultChatID && len(c.Messages) == 0 {
		return false
	}
	return true
}

// batchFields splits a field map into maps of at most size entries.
func batchFields(fields map[string]string, size int) []map[string]string {
	if size <= 0 {
		size = len(fields)
	}

	// Deterministic batch contents make failures reproducible.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var batches []map[string]string
	current := make(map[string]string, size)
	for _, k := range keys {
		current[k] = fields[k]
		if len(current) == size {
			batches = append(batches, current)
			current = make(map[string]string, size)
		}
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// sortChats orders newest first.
func sortChats(chats []models.Chat) {
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})
}
