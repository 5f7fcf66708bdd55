package cmd

import (
	"context"
	"fmt"

	"wscontest/core/config"
	"wscontest/core/database"
	"wscontest/core/logger"
	"wscontest/core/wikisource"
	"wscontest/feature/contest"
	"wscontest/feature/contest/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var granularityFlag string

// reconcileCmd runs one reconciliation batch over all contests.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Pull page status from Wikisource and update the registry",
	Long: `Run one reconciliation pass over all contests.

Expired contests are closed. For every active contest, the created pages of
each linked book are enumerated and their proofread/validate events merged
into the registry. Book-level failures are reported and do not abort the run.

Examples:
  # Default (per-contest commits)
  wscontest reconcile

  # Legacy single end-of-run commit
  wscontest reconcile --granularity run`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&granularityFlag, "granularity", "", "Commit granularity: contest, book or run (overrides config)")
	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if granularityFlag != "" {
		cfg.Reconcile.Granularity = granularityFlag
	}
	if !cfg.Reconcile.IsValidGranularity() {
		return fmt.Errorf("invalid granularity %q", cfg.Reconcile.Granularity)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	registry := contest.NewRegistry(db)
	if err := registry.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate registry schema: %w", err)
	}

	engine := reconcile.New(registry, wikisource.NewFactory(cfg.Wiki), l, cfg.Reconcile)

	l.Info("Starting reconciliation")
	report, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	printRunReport(l, report)
	return nil
}

// printRunReport prints a formatted run report using the logger.
func printRunReport(l *zap.Logger, report *reconcile.RunReport) {
	l = logger.WithRun(l, report.RunID)

	l.Info("Reconciliation report",
		zap.Int("contests", len(report.Contests)),
		zap.Int("pages", report.ProcessedPages()),
		zap.Int("failed_books", report.FailedBooks()),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)

	for _, c := range report.Contests {
		switch {
		case c.Err != "":
			l.Warn("Contest failed",
				zap.Uint("cid", c.CID),
				zap.String("contest", c.Name),
				zap.String("error", c.Err),
			)
		case c.Skipped:
			l.Info("Contest skipped",
				zap.Uint("cid", c.CID),
				zap.String("contest", c.Name),
				zap.Bool("closed", c.Closed),
			)
		default:
			for _, b := range c.Books {
				if b.Outcome == reconcile.OutcomeFailure {
					l.Warn("Book failed",
						zap.String("contest", c.Name),
						zap.String("book", b.Name),
						zap.String("error", b.Err),
					)
				}
			}
		}
	}
}
