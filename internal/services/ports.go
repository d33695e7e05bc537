package services

import (
	"context"

	"grafico/internal/amqp"
	"grafico/internal/core"
)

// Ports the chart service depends on. Implemented by storage.SQLiteRepository
// and amqp.Client in production, by in-memory fakes in tests.
type (
	TransactionStore interface {
		CountTransactions(ctx context.Context, f core.DataFilter) (int, error)
		ListTransactions(ctx context.Context, f core.DataFilter) ([]core.Transaction, error)
	}

	ChartRequestStore interface {
		SaveChartRequest(ctx context.Context, req core.ChartRequest) (core.ChartRequest, error)
		ListRecentChartRequests(ctx context.Context, limit int) ([]core.ChartRequest, error)
	}

	SavedPublisher interface {
		PublishChartSaved(ctx context.Context, msg *amqp.ChartSavedMessage) error
	}
)
