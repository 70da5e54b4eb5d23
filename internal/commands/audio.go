package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acejesus/aceai/internal/cache"
	"github.com/acejesus/aceai/internal/config"
)

var audioCmd = &cobra.Command{
	Use:   "audio [on|off]",
	Short: "Toggle the response notification sound",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := config.EnsureConfigDir()
		if err != nil {
			return err
		}
		local, err := cache.New(configDir)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			state := "off"
			if local.AudioEnabled() {
				state = "on"
			}
			fmt.Printf("Notification sound is %s.\n", state)
			return nil
		}

		switch args[0] {
		case "on":
			if err := local.SetAudioEnabled(true); err != nil {
				return err
			}
			fmt.Println("Notification sound enabled.")
		case "off":
			if err := local.SetAudioEnabled(false); err != nil {
				return err
			}
			fmt.Println("Notification sound disabled.")
		default:
			return fmt.Errorf("expected 'on' or 'off', got %q", args[0])
		}
		return nil
	},
}
