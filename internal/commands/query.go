package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/acejesus/aceai/internal/config"
	"github.com/acejesus/aceai/internal/models"
	"github.com/acejesus/aceai/internal/render"
	"github.com/acejesus/aceai/internal/stream"
)

// runQuery executes a single query and prints the response. If rawOutput
// is true, only the raw response text is printed without decoration.
func runQuery(prompt string, rawOutput bool) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if cfg.Verbose && !rawOutput {
		fmt.Fprintf(os.Stderr, "[verbose] Model: %s\n", getModel(cfg))
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	var spin *spinner
	if !rawOutput {
		spin = newSpinner("AceAI is thinking")
		spin.start()
	}

	parser := stream.NewParser(nil)
	err = client.StreamChat(context.Background(), []models.CompletionMessage{
		{Role: models.RoleSystem, Content: models.SystemPrompt},
		{Role: models.RoleUser, Content: prompt},
	}, func(fragment string) error {
		parser.Feed(fragment)
		return nil
	})
	snap := parser.Finish()

	if err != nil {
		if !rawOutput {
			spin.stopWithError()
		}
		return fmt.Errorf("query failed: %w", err)
	}
	if !rawOutput {
		spin.stopWithSuccess("Done")
	}

	if outputFlag != "" {
		content := snap.Content
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if err := os.WriteFile(outputFlag, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}
		if !rawOutput {
			fmt.Fprintf(os.Stderr, "Response saved to %s\n", outputFlag)
		}
		return nil
	}

	if rawOutput {
		fmt.Println(snap.Content)
		return nil
	}

	if snap.Thinking != "" {
		fmt.Println(thinkingPanelStyle.Render("💭 " + snap.Thinking))
	}

	rendered, err := render.Markdown(snap.Content, render.DefaultOptions().WithStyle(cfg.MarkdownStyle))
	if err != nil {
		rendered = snap.Content
	}
	fmt.Println(assistantLabelStyle.Render("✦ AceAI"))
	fmt.Println(assistantBubbleStyle.Render(strings.TrimRight(rendered, "\n")))
	return nil
}
