package worker

import (
	"context"
	"fmt"
	"log/slog"

	"grafico/internal/amqp"
	"grafico/internal/archive"
	"grafico/internal/core"
	"grafico/internal/storage"
)

// ArchiveWorker copies saved chart requests from SQLite into the long term
// archive (Google Sheets in production).
type ArchiveWorker struct {
	storage   *storage.SQLiteRepository
	archive   archive.Writer
	batchSize int
}

func NewArchiveWorker(storage *storage.SQLiteRepository, archive archive.Writer, batchSize int) *ArchiveWorker {
	return &ArchiveWorker{
		storage:   storage,
		archive:   archive,
		batchSize: batchSize,
	}
}

// HandleSavedMessage processes a single saved-chart message from AMQP
func (w *ArchiveWorker) HandleSavedMessage(ctx context.Context, msg *amqp.ChartSavedMessage) error {
	slog.InfoContext(ctx, "Processing saved message",
		"id", msg.ID,
		"kind", msg.Kind)

	req, err := w.storage.GetChartRequest(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get chart request from storage: %w", err)
	}

	return w.archiveRequest(ctx, req.ID, req)
}

// ProcessPending archives any chart requests that haven't been archived yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *ArchiveWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingArchive(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending archive: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending chart requests", "count", len(pending))

	for _, req := range pending {
		if err := w.archiveRequest(ctx, req.ID, req); err != nil {
			slog.ErrorContext(ctx, "Failed to archive chart request", "id", req.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck archives pending chart requests at worker startup. Useful to
// recover from missed AMQP messages or worker downtime.
func (w *ArchiveWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.ListPendingArchive(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending archive for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending chart requests found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending chart requests on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, req := range pending {
		if err := w.archiveRequest(ctx, req.ID, req); err != nil {
			slog.ErrorContext(ctx, "Failed to archive chart request during startup",
				"id", req.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup archive completed",
		"total", len(pending),
		"archived", successCount,
		"errors", errorCount)

	return nil
}

func (w *ArchiveWorker) archiveRequest(ctx context.Context, id string, req core.ChartRequest) error {
	ref, err := w.archive.Append(ctx, req)
	if err != nil {
		return fmt.Errorf("append to archive: %w", err)
	}

	if err := w.storage.MarkArchived(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as archived", "id", id, "error", err)
		// Don't return error here - the archive write actually worked
	}

	slog.InfoContext(ctx, "Successfully archived chart request",
		"id", id,
		"archive_ref", ref)

	return nil
}
