package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratham/chatterm/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show resolved configuration",
	Long: `Print the configuration after merging the config file, environment
variables (CHAT_API_URL, CHAT_GEN_URL, CHAT_GEN_MODEL) and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolvedConfig()
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}

		path, _ := config.GetConfigPath()
		fmt.Printf("# %s\n%s\n", path, data)
		return nil
	},
}
