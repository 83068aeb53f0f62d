package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/aidaily/internal/pipeline"
	"github.com/spf13/cobra"
)

// onceCmd represents the once command
var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Collect, enrich and deliver one daily report",
	Long: `Once runs the full pipeline a single time:
- Collect the day's listings (live, cached snapshot, reference or placeholder data)
- Deduplicate by name
- Enrich with the configured AI backend
- Compile, persist and deliver the report to Feishu

Example:
  aidaily once
  aidaily once --config ./config.yaml -v`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, flush, err := setupValidated()
	if err != nil {
		return err
	}
	defer flush()

	a := newApp(cfg)
	if err := a.requireAI(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := a.pipeline.RunOnce(ctx)
	if errors.Is(err, pipeline.ErrDeliveryFailed) {
		fmt.Fprintf(os.Stderr, "✗ Report compiled (%d products) but delivery failed\n", r.RelevantCount)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	fmt.Printf("✓ Delivered report: %d AI products (%d analyzed)\n", r.RelevantCount, r.TotalAnalyzed)
	return nil
}
