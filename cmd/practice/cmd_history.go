package main

import (
	"context"
	"fmt"

	"phonics-coach/internal/history"
	"phonics-coach/internal/models"
	"phonics-coach/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyStats bool
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent attempts or per-target progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if historyLimit <= 0 {
				return fmt.Errorf("limit must be positive, got %d", historyLimit)
			}
			store, err := history.Open(opts.historyPath)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			if historyStats {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return printStats(cmd.OutOrStdout(), opts.output, stats)
			}

			entries, err := store.Recent(cmd.Context(), historyLimit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), opts.output, entries)
		},
	}
	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of attempts to show")
	cmd.Flags().BoolVar(&historyStats, "stats", false, "show per-target averages instead")
	return cmd
}

// saveAttempt stores one attempt. Callers that save many attempts keep a
// store open instead.
func saveAttempt(ctx context.Context, target string, a *models.Attempt) error {
	store, err := history.Open(opts.historyPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	id, err := store.Insert(ctx, target, *a)
	if err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	logger.L().Debug("attempt_saved", "id", id, "target", target, "accuracy", a.Accuracy)
	return nil
}
