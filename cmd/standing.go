package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// standingCmd prints the computed standing of one contest.
var standingCmd = &cobra.Command{
	Use:   "standing <cid>",
	Short: "Show per-user scores for a contest",
	Args:  cobra.ExactArgs(1),
	RunE:  runStanding,
}

func init() {
	RootCmd.AddCommand(standingCmd)
}

func runStanding(cmd *cobra.Command, args []string) error {
	cid, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid contest id %q: %w", args[0], err)
	}

	svc, l, err := setupService()
	if err != nil {
		return err
	}

	detail, err := svc.GetContest(context.Background(), uint(cid))
	if err != nil {
		return err
	}

	l.Info("Contest standing",
		zap.Uint("cid", detail.Standing.CID),
		zap.String("name", detail.Standing.Name),
		zap.Strings("books", detail.Books),
		zap.Int("users", len(detail.Standing.Users)),
	)

	for _, u := range detail.Standing.Users {
		l.Info("User score",
			zap.String("user", u.UserName),
			zap.Int("proofread", u.ProofreadCount),
			zap.Int("validated", u.ValidatedCount),
			zap.Int("points", u.Points),
		)
	}
	return nil
}
