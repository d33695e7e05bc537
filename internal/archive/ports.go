package archive

import (
	"context"

	"grafico/internal/core"
)

// Ports for outbound adapters.
type (
	// Writer appends a chart request to long term archive storage.
	Writer interface {
		Append(ctx context.Context, req core.ChartRequest) (rowRef string, err error)
	}
)
