package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusJSON bool

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and the latest report",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print status as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, flush, err := setup()
	if err != nil {
		return err
	}
	defer flush()

	st := newApp(cfg).pipeline.Status()

	if statusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}

	fmt.Printf("%s v%s\n", st.AppName, st.Version)
	fmt.Printf("  Timezone:          %s\n", st.Timezone)
	fmt.Printf("  AI provider:       %s (configured: %s)\n", st.AIProvider, yesNo(st.AIConfigured))
	fmt.Printf("  Feishu configured: %s\n", yesNo(st.FeishuConfigured))
	fmt.Printf("  Schedule:          collect %s, report %s\n", cfg.Schedule.DataCollectionTime, cfg.Schedule.DailyReportTime)
	if st.ReportDate == nil {
		fmt.Println("  Latest report:     none")
		return nil
	}
	fmt.Printf("  Latest report:     %s (%d products)\n", st.ReportDate.Format("2006-01-02 15:04"), st.ReportItems)
	return nil
}
