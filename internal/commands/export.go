package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/acejesus/aceai/internal/cache"
	"github.com/acejesus/aceai/internal/config"
	"github.com/acejesus/aceai/internal/export"
	"github.com/acejesus/aceai/internal/models"
	"github.com/acejesus/aceai/internal/store"
)

var (
	exportFormatFlag string
	exportDirFlag    string
)

var exportCmd = &cobra.Command{
	Use:   "export [chat]",
	Short: "Export a chat to a file",
	Long: `Export a chat transcript to Markdown or JSON.

The chat is matched by id or name; without an argument the most recent
chat is exported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		return runExport(target)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormatFlag, "format", "markdown", "Output format (markdown, json)")
	exportCmd.Flags().StringVar(&exportDirFlag, "dir", "", "Output directory (defaults to the configured export dir)")
}

func runExport(target string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	chats, err := loadAllChats(cfg)
	if err != nil {
		return err
	}

	c, err := pickChat(chats, target)
	if err != nil {
		return err
	}

	opts := export.DefaultOptions()
	switch strings.ToLower(exportFormatFlag) {
	case "markdown", "md":
		opts.Format = export.FormatMarkdown
	case "json":
		opts.Format = export.FormatJSON
	default:
		return fmt.Errorf("unknown format %q (markdown, json)", exportFormatFlag)
	}

	dir := exportDirFlag
	if dir == "" {
		dir = cfg.ExportDir
	}

	path, err := export.WriteFile(c, dir, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %q to %s\n", c.Name, path)
	return nil
}

// loadAllChats reads from the remote store when signed in, otherwise from
// the local cache.
func loadAllChats(cfg config.Config) ([]models.Chat, error) {
	session := loadSessionQuiet()
	if session != nil && cfg.RedisURL != "" {
		remote, err := store.New(cfg.RedisURL)
		if err == nil {
			defer remote.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if chats, err := remote.Load(ctx, session.UserID); err == nil {
				return chats, nil
			}
		}
	}

	configDir, err := config.EnsureConfigDir()
	if err != nil {
		return nil, err
	}
	local, err := cache.New(configDir)
	if err != nil {
		return nil, err
	}
	return local.LoadChats(), nil
}

// pickChat matches by id first, then case-insensitive name. An empty
// target picks the most recently updated chat with messages.
func pickChat(chats []models.Chat, target string) (models.Chat, error) {
	if target == "" {
		var best models.Chat
		found := false
		for _, c := range chats {
			if len(c.Messages) == 0 {
				continue
			}
			if !found || c.UpdatedAt.After(best.UpdatedAt) {
				best = c
				found = true
			}
		}
		if !found {
			return models.Chat{}, fmt.Errorf("no chats with messages to export")
		}
		return best, nil
	}

	for _, c := range chats {
		if c.ID == target {
			return c, nil
		}
	}
	for _, c := range chats {
		if strings.EqualFold(c.Name, target) {
			return c, nil
		}
	}
	return models.Chat{}, fmt.Errorf("no chat matching %q", target)
}
