// Package commands provides CLI commands for aceai.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/acejesus/aceai/internal/api"
	"github.com/acejesus/aceai/internal/config"
)

var (
	// Global flags
	modelFlag  string
	outputFlag string
	fileFlag   string
	rawFlag    bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "aceai [prompt]",
	Short: "Chat with AceAI from the terminal",
	Long: `aceai is a command-line client for the AceAI assistant. It streams
responses with visible reasoning, keeps chat history locally (and remotely
when signed in), and can analyze uploaded files.

Examples:
  aceai chat                       Start the interactive chat
  aceai "What is Go?"              Send a single query
  aceai -f prompt.md               Read prompt from file
  cat prompt.md | aceai            Read prompt from stdin
  aceai "Hello" -o response.md     Save response to file
  aceai login                      Sign in to sync chats`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("aceai %s (built %s)\n", Version, BuildTime)
			return nil
		}

		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return runQuery(string(data), rawFlag)
		}

		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runQuery(string(data), rawFlag)
		}

		if len(args) > 0 {
			return runQuery(args[0], rawFlag)
		}

		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	// Optional .env for API keys during development. Missing is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., deepseek-r1-distill-llama-70b)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the raw response without decoration")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(audioCmd)
}

// getModel returns the model to use (from flag or config)
func getModel(cfg config.Config) string {
	if modelFlag != "" {
		return modelFlag
	}
	return cfg.Model
}

// newAPIClient builds the completions client from config and environment.
func newAPIClient(cfg config.Config) (*api.Client, error) {
	key, err := config.APIKey()
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.APIURL, key,
		api.WithModel(getModel(cfg)),
		api.WithTemperature(cfg.Temperature),
	), nil
}
