package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratham/chatterm/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive conversation",
	Long: `Start the interactive chat TUI.

The stored conversation is loaded on startup. Press Ctrl+E to select a
message for in-place editing or deletion; press Ctrl+C or Esc to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	cfg, err := resolvedConfig()
	if err != nil {
		return err
	}

	controller, err := buildController(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up chat: %w", err)
	}

	return tui.Run(controller)
}
