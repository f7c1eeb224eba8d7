package commands

import (
	"context"
	"fmt"
	"strings"
)

// runQuery sends a single prompt through the conversation engine and prints
// the reply. The turn goes through the same protocol as the TUI: optimistic
// insert, generation, persistence, refresh.
func runQuery(prompt string) error {
	cfg, err := resolvedConfig()
	if err != nil {
		return err
	}

	controller, err := buildController(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Seed the history with the stored conversation. Best-effort: an
	// unreachable persistence service still allows a one-shot question.
	_ = controller.Refresh(ctx)

	turn, err := controller.BeginSend(prompt)
	if err != nil {
		return err
	}

	if err := controller.ResolveTurn(ctx, turn); err != nil {
		return fmt.Errorf("no reply: %w", err)
	}

	messages := controller.Messages()
	if len(messages) == 0 {
		return fmt.Errorf("no reply")
	}

	reply := messages[len(messages)-1].Content
	fmt.Println(strings.TrimSpace(reply))
	return nil
}
