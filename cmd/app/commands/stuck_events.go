package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
	webhookUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase"
)

type stuckEventView struct {
	ID         string `json:"id"`
	Provider   string `json:"provider"`
	EventID    string `json:"event_id,omitempty"`
	Status     string `json:"status"`
	OrderID    string `json:"order_id,omitempty"`
	Attempts   int    `json:"attempts"`
	Deliveries int    `json:"deliveries"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// RunStuckEvents lists ledger rows that have sat in received or processing for at least
// olderThan. These are deliveries whose processing was interrupted and which no provider
// retry has reclaimed yet.
func RunStuckEvents(
	ctx context.Context,
	eventUseCase webhookUsecase.EventUseCase,
	logger *slog.Logger,
	writer io.Writer,
	olderThan time.Duration,
	limit int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if limit < 1 {
		return fmt.Errorf("limit must be a positive number, got: %d", limit)
	}

	logger.Info("listing stuck webhook events",
		slog.Duration("older_than", olderThan),
		slog.Int("limit", limit),
	)

	events, err := eventUseCase.ListStuck(ctx, olderThan, limit)
	if err != nil {
		return fmt.Errorf("failed to list stuck events: %w", err)
	}

	views := make([]stuckEventView, 0, len(events))
	for _, e := range events {
		views = append(views, toStuckEventView(e))
	}

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"older_than": olderThan.String(),
			"count":      len(views),
			"events":     views,
		})
	}

	if len(views) == 0 {
		_, err = fmt.Fprintf(writer, "No webhook events stuck for more than %s\n", olderThan)
		return err
	}

	_, _ = fmt.Fprintf(writer, "%d webhook event(s) stuck for more than %s:\n", len(views), olderThan)
	for _, v := range views {
		_, _ = fmt.Fprintf(writer, "  %s  provider=%s status=%s attempts=%d deliveries=%d updated=%s",
			v.ID, v.Provider, v.Status, v.Attempts, v.Deliveries, v.UpdatedAt)
		if v.EventID != "" {
			_, _ = fmt.Fprintf(writer, " event_id=%s", v.EventID)
		}
		if v.OrderID != "" {
			_, _ = fmt.Fprintf(writer, " order_id=%s", v.OrderID)
		}
		_, _ = fmt.Fprintln(writer)
	}
	return nil
}

func toStuckEventView(e *webhookDomain.Event) stuckEventView {
	v := stuckEventView{
		ID:         e.ID.String(),
		Provider:   e.Provider,
		Status:     string(e.Status),
		Attempts:   e.Attempts,
		Deliveries: e.Deliveries,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if e.EventID != nil {
		v.EventID = *e.EventID
	}
	if e.OrderID != nil {
		v.OrderID = e.OrderID.String()
	}
	if e.ErrorMessage != nil {
		v.Error = *e.ErrorMessage
	}
	return v
}
