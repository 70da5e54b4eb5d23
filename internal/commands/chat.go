package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/acejesus/aceai/internal/auth"
	"github.com/acejesus/aceai/internal/cache"
	"github.com/acejesus/aceai/internal/chat"
	"github.com/acejesus/aceai/internal/config"
	apierrors "github.com/acejesus/aceai/internal/errors"
	"github.com/acejesus/aceai/internal/models"
	"github.com/acejesus/aceai/internal/store"
	"github.com/acejesus/aceai/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with AceAI.

Chats are kept locally for guests and synced through the remote store
when signed in. Type 'exit', 'quit', or press Ctrl+C to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

// persistence is the resolved chat storage for one session: local cache
// for guests, remote store for signed-in users.
type persistence struct {
	seed    []models.Chat
	persist func([]models.Chat) error

	remote *store.Store
	userID string
}

func (p *persistence) close() {
	if p.remote != nil {
		_ = p.remote.Close()
	}
}

func runChat() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	configDir, err := config.EnsureConfigDir()
	if err != nil {
		return err
	}
	local, err := cache.New(configDir)
	if err != nil {
		return fmt.Errorf("failed to open local cache: %w", err)
	}

	session := loadSessionQuiet()

	events := tui.NewEvents(func() bool {
		return local.AudioEnabled()
	})

	p, err := setupPersistence(cfg, local, session, events)
	if err != nil {
		return err
	}
	defer p.close()

	managerOpts := []chat.Option{
		chat.WithAnalyzer(client),
		chat.WithPersist(p.persist),
		chat.WithOnChange(events.Changed),
		chat.WithOnAdvisory(events.Advisory),
		chat.WithOnResponseStart(events.ResponseStart),
	}
	if p.remote != nil {
		// Saves only upsert; the remote document needs its tombstone.
		managerOpts = append(managerOpts, chat.WithOnDelete(func(chatID string) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			err := p.remote.SoftDelete(ctx, p.userID, chatID)
			if err != nil && !errors.Is(err, apierrors.ErrChatNotFound) {
				events.Advisory("failed to delete chat remotely: " + err.Error())
			}
		}))
	}
	manager := chat.NewManager(client, p.seed, managerOpts...)

	// Live updates from other sessions of the same account.
	if p.remote != nil {
		unsubscribe := p.remote.Subscribe(context.Background(), p.userID,
			func(chats []models.Chat) {
				manager.ReplaceAll(chats)
			},
			func(err error) {
				events.Advisory("lost sync with remote store: " + err.Error())
				manager.ReplaceAll(local.LoadChats())
			},
		)
		defer unsubscribe()
	}

	opts := []tui.ModelOption{tui.WithModelName(client.Model())}
	if session != nil {
		opts = append(opts, tui.WithUserName(session.DisplayName()))
	}
	return tui.RunChat(manager, events, opts...)
}

// loadSessionQuiet returns the persisted session or nil for guest mode.
// An expired session gets a note; chatting continues as guest.
func loadSessionQuiet() *auth.Session {
	path, err := config.GetSessionPath()
	if err != nil {
		return nil
	}
	session, err := auth.LoadSession(path)
	if err != nil {
		if errors.Is(err, apierrors.ErrSessionExpired) {
			fmt.Fprintln(os.Stderr, "Your session has expired. Run 'aceai login' to sign in again.")
		}
		return nil
	}
	return session
}

// setupPersistence picks where chats load from and save to. Guests use
// the local cache; signed-in users use the remote store, with a one-time
// transfer of their guest chats on first sign-in. A broken remote store
// degrades to the cache with a warning.
func setupPersistence(cfg config.Config, local *cache.Cache, session *auth.Session, events *tui.Events) (*persistence, error) {
	localOnly := func() (*persistence, error) {
		return &persistence{
			seed:    local.LoadChats(),
			persist: local.SaveChats,
		}, nil
	}

	if session == nil || cfg.RedisURL == "" {
		return localOnly()
	}

	remote, err := store.New(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := remote.Ping(pingCtx); err != nil {
		_ = remote.Close()
		fmt.Fprintln(os.Stderr, "Remote store unreachable; keeping chats locally for now.")
		return localOnly()
	}

	userID := session.UserID

	// First sign-in on this machine moves guest chats to the account.
	// The marker keeps a later logout/login from duplicating them.
	if !local.Transferred(userID) {
		transferCtx, cancelTransfer := context.WithTimeout(context.Background(), 15*time.Second)
		if err := remote.TransferGuestChats(transferCtx, userID, local.LoadChats()); err != nil {
			events.Advisory("failed to transfer guest chats: " + err.Error())
		} else {
			_ = local.MarkTransferred(userID)
			_ = local.ClearChats()
		}
		cancelTransfer()
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelLoad()
	seed, err := remote.Load(loadCtx, userID)
	if err != nil {
		_ = remote.Close()
		return nil, err
	}

	return &persistence{
		seed: seed,
		persist: func(chats []models.Chat) error {
			saveCtx, cancelSave := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancelSave()
			return remote.Save(saveCtx, userID, chats)
		},
		remote: remote,
		userID: userID,
	}, nil
}
