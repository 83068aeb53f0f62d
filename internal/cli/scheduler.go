package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const healthCheckSpec = "0 0 * * * *" // hourly

var healthAddr string

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run collection and delivery every day",
	Long: `Scheduler runs until interrupted:
- Data collection daily at schedule.data_collection_time
- Report delivery daily at schedule.daily_report_time
- Configuration health check every hour
- With --health-addr: GET /health, GET /status and POST /run

Times are HH:MM in app.timezone.

Example:
  aidaily scheduler
  aidaily scheduler --health-addr :8080`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.Flags().StringVar(&healthAddr, "health-addr", "", "serve /health, /status and POST /run on this address (disabled when empty)")
}

// dailySpec converts HH:MM into a seconds-first cron spec
func dailySpec(hhmm string) (string, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", fmt.Errorf("invalid schedule time %q (want HH:MM): %w", hhmm, err)
	}
	return fmt.Sprintf("0 %d %d * * *", t.Minute(), t.Hour()), nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, flush, err := setupValidated()
	if err != nil {
		return err
	}
	defer flush()

	a := newApp(cfg)
	if err := a.requireAI(); err != nil {
		return err
	}

	collectSpec, err := dailySpec(cfg.Schedule.DataCollectionTime)
	if err != nil {
		return err
	}
	reportSpec, err := dailySpec(cfg.Schedule.DailyReportTime)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.NewWithLocation(cfg.Location())

	if err := c.AddFunc(collectSpec, func() {
		zap.L().Info("scheduled data collection")
		if _, err := a.pipeline.Collect(ctx); err != nil {
			zap.L().Error("scheduled data collection failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule collection: %w", err)
	}

	if err := c.AddFunc(reportSpec, func() {
		zap.L().Info("scheduled daily report")
		if _, err := a.pipeline.Report(ctx); err != nil {
			zap.L().Error("scheduled daily report failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule report: %w", err)
	}

	if err := c.AddFunc(healthCheckSpec, func() {
		if issues := cfg.Validate(); len(issues) > 0 {
			zap.L().Warn("configuration health check failed", zap.Strings("issues", issues))
			return
		}
		st := a.pipeline.Status()
		zap.L().Info("health check",
			zap.Int("cached_items", st.CachedItems),
			zap.Bool("running", st.Running),
			zap.String("last_error", st.LastError),
		)
	}); err != nil {
		return fmt.Errorf("schedule health check: %w", err)
	}

	var srv *http.Server
	if healthAddr != "" {
		srv = &http.Server{
			Addr:              healthAddr,
			Handler:           newAPIRouter(a.pipeline),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			zap.L().Info("health endpoint listening", zap.String("addr", healthAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zap.L().Error("health endpoint stopped", zap.Error(err))
			}
		}()
	}

	if !a.sender.SendStartupNotification(ctx, cfg.Schedule) {
		zap.L().Warn("startup notification could not be delivered")
	}

	c.Start()
	zap.L().Info("scheduler started",
		zap.String("collect_at", cfg.Schedule.DataCollectionTime),
		zap.String("report_at", cfg.Schedule.DailyReportTime),
		zap.String("timezone", cfg.App.Timezone),
	)

	<-ctx.Done()
	zap.L().Info("shutting down scheduler")
	c.Stop()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("health endpoint shutdown", zap.Error(err))
		}
	}
	return nil
}
