package cmd

import (
	"context"
	"fmt"
	"time"

	"wscontest/core/config"
	"wscontest/core/database"
	"wscontest/core/logger"
	"wscontest/feature/contest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	contestName      string
	contestCreatedBy string
	contestStart     string
	contestEnd       string
	contestLang      string
	proofreadPoints  int
	validatePoints   int
	contestBooks     []string
	contestAdmins    []string
	contestJury      []string
)

// contestCmd is the parent command for contest management.
var contestCmd = &cobra.Command{
	Use:   "contest",
	Short: "Manage proofreading contests",
}

var contestCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a contest with its books and administrators",
	Long: `Create a contest. Book names are index titles; an "Index:" prefix is
stripped before storing.

Example:
  wscontest contest create --name Spring2024 --lang bn \
    --start 2024-03-01 --end 2024-04-01 \
    --proofread-points 2 --validate-points 3 \
    --book "Index:Some_Book.djvu" --admin Alice`,
	RunE: runContestCreate,
}

var contestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contests",
	RunE:  runContestList,
}

func init() {
	contestCreateCmd.Flags().StringVar(&contestName, "name", "", "Contest name (required)")
	contestCreateCmd.Flags().StringVar(&contestCreatedBy, "created-by", "", "Creator identity")
	contestCreateCmd.Flags().StringVar(&contestStart, "start", "", "Start date, YYYY-MM-DD (required)")
	contestCreateCmd.Flags().StringVar(&contestEnd, "end", "", "End date, YYYY-MM-DD (required)")
	contestCreateCmd.Flags().StringVar(&contestLang, "lang", "", "Wikisource language code (required)")
	contestCreateCmd.Flags().IntVar(&proofreadPoints, "proofread-points", 0, "Points per proofread page")
	contestCreateCmd.Flags().IntVar(&validatePoints, "validate-points", 0, "Points per validated page")
	contestCreateCmd.Flags().StringArrayVar(&contestBooks, "book", nil, "Book index title (repeatable)")
	contestCreateCmd.Flags().StringArrayVar(&contestAdmins, "admin", nil, "Administrator user name (repeatable)")
	contestCreateCmd.Flags().StringArrayVar(&contestJury, "jury", nil, "Jury member user name (repeatable)")

	contestCmd.AddCommand(contestCreateCmd)
	contestCmd.AddCommand(contestListCmd)
	RootCmd.AddCommand(contestCmd)
}

// setupService loads config and wires a contest service for CLI commands.
func setupService() (*contest.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	registry := contest.NewRegistry(db)
	if err := registry.Migrate(); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate registry schema: %w", err)
	}

	return contest.NewService(registry, l), l, nil
}

func runContestCreate(cmd *cobra.Command, args []string) error {
	svc, l, err := setupService()
	if err != nil {
		return err
	}

	start, err := time.Parse("2006-01-02", contestStart)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", contestStart, err)
	}
	end, err := time.Parse("2006-01-02", contestEnd)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", contestEnd, err)
	}

	created, err := svc.CreateContest(context.Background(), contest.CreateContestInput{
		Name:              contestName,
		CreatedBy:         contestCreatedBy,
		StartDate:         start,
		EndDate:           end,
		Lang:              contestLang,
		PointPerProofread: proofreadPoints,
		PointPerValidate:  validatePoints,
		BookNames:         contestBooks,
		Admins:            contestAdmins,
		Jury:              contestJury,
	})
	if err != nil {
		return err
	}

	l.Info("Contest created", zap.Uint("cid", created.CID), zap.String("name", created.Name))
	return nil
}

func runContestList(cmd *cobra.Command, args []string) error {
	svc, l, err := setupService()
	if err != nil {
		return err
	}

	summaries, err := svc.ListContests(context.Background())
	if err != nil {
		return err
	}

	for _, s := range summaries {
		l.Info("Contest",
			zap.Uint("cid", s.CID),
			zap.String("name", s.Name),
			zap.String("start", s.StartDate.Format("02-01-2006")),
			zap.String("end", s.EndDate.Format("02-01-2006")),
			zap.Bool("active", s.Status),
		)
	}
	if len(summaries) == 0 {
		l.Info("No contests found")
	}
	return nil
}
