// Package commands provides the CLI commands for chatterm.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	apiURLFlag string
	modelFlag  string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chatterm [prompt]",
	Short: "Terminal chat with a persistent conversation",
	Long: `chatterm is a terminal chat client. Messages are generated by an
OpenAI-compatible service and every turn is persisted to a chat backend,
so the conversation survives restarts.

Examples:
  chatterm chat                   Start the interactive conversation
  chatterm "What is Go?"          Send a single question
  echo "Summarize this" | chatterm
  chatterm config                 Show resolved configuration`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("chatterm %s (built %s)\n", Version, BuildTime)
			return nil
		}

		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runQuery(string(data))
		}

		if len(args) > 0 {
			return runQuery(args[0])
		}

		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Base URL of the chat persistence service")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Generation model name")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
}
