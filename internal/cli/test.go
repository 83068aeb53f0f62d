package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test message and probe the AI backend",
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	cfg, flush, err := setupValidated()
	if err != nil {
		return err
	}
	defer flush()

	a := newApp(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var failed bool

	if a.provider == nil {
		fmt.Printf("✗ AI backend (%s): %v\n", cfg.AI.Provider, a.aiErr)
		failed = true
	} else if a.provider.IsAvailable(ctx) {
		fmt.Printf("✓ AI backend (%s) reachable\n", a.provider.Name())
	} else {
		fmt.Printf("✗ AI backend (%s) unreachable\n", a.provider.Name())
		failed = true
	}

	if a.sender.SendTestMessage(ctx) {
		fmt.Println("✓ Feishu test message sent")
	} else {
		fmt.Println("✗ Feishu test message failed")
		failed = true
	}

	if failed {
		return fmt.Errorf("system test failed")
	}
	return nil
}
