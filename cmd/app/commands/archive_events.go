package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	webhookUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase"
)

// RunArchiveEvents flags processed and failed ledger rows older than days as archived.
// Archived rows keep deduplicating deliveries; they only drop out of default listings.
func RunArchiveEvents(
	ctx context.Context,
	eventUseCase webhookUsecase.EventUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if days < 1 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("archiving webhook events",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := eventUseCase.Archive(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to archive webhook events: %w", err)
	}

	if format == "json" {
		err = writeJSON(writer, map[string]any{
			"count":   count,
			"days":    days,
			"dry_run": dryRun,
		})
	} else if dryRun {
		_, err = fmt.Fprintf(writer, "Dry-run mode: Would archive %d webhook event(s) older than %d day(s)\n", count, days)
	} else {
		_, err = fmt.Fprintf(writer, "Successfully archived %d webhook event(s) older than %d day(s)\n", count, days)
	}
	if err != nil {
		return err
	}

	logger.Info("archive completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)
	return nil
}
