package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"grafico/internal/core"

	_ "modernc.org/sqlite"
)

// Timestamps are stored as RFC 3339 strings in UTC; lexicographic order then
// matches chronological order, so range filters and ORDER BY work as plain
// string comparisons. Chart request timestamps use a fixed-width fractional
// part, so rows written within the same second still sort correctly.
const (
	timeLayout  = time.RFC3339
	stampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CountTransactions reports how many rows match the filter, so callers can
// refuse oversized requests before fetching anything.
func (r *SQLiteRepository) CountTransactions(ctx context.Context, f core.DataFilter) (int, error) {
	where, args := transactionFilter(f)
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

// ListTransactions returns the matching rows ordered ascending by occurrence
// time, the order the aggregator requires.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f core.DataFilter) ([]core.Transaction, error) {
	where, args := transactionFilter(f)
	rows, err := r.db.QueryContext(ctx,
		"SELECT occurred_at, amount, category, source FROM transactions"+where+" ORDER BY occurred_at ASC, id ASC",
		args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var occurredAt, amount, category, source string
		if err := rows.Scan(&occurredAt, &amount, &category, &source); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		ts, err := time.Parse(timeLayout, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse transaction time %q: %w", occurredAt, err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse transaction amount %q: %w", amount, err)
		}
		txs = append(txs, core.Transaction{
			OccurredAt: ts,
			Amount:     amt,
			Category:   category,
			Source:     source,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// InsertTransaction adds one transaction row. The ingestion system owns this
// table in production; this write path serves seeding and tests.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions (occurred_at, amount, category, source) VALUES (?, ?, ?, ?)",
		tx.OccurredAt.UTC().Format(timeLayout), tx.Amount.String(), tx.Category, tx.Source)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// SaveChartRequest appends a chart request and returns it with the generated
// identifier and server timestamp filled in. Rows are never overwritten.
func (r *SQLiteRepository) SaveChartRequest(ctx context.Context, req core.ChartRequest) (core.ChartRequest, error) {
	req.ID = uuid.NewString()
	req.CreatedAt = time.Now().UTC()

	filterJSON, err := json.Marshal(req.DataFilter)
	if err != nil {
		return core.ChartRequest{}, fmt.Errorf("marshal data filter: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO chart_requests (id, prompt, data_filter, specification, created_at) VALUES (?, ?, ?, ?, ?)",
		req.ID, req.Prompt, string(filterJSON), req.Specification, req.CreatedAt.Format(stampLayout))
	if err != nil {
		return core.ChartRequest{}, fmt.Errorf("insert chart request: %w", err)
	}

	slog.InfoContext(ctx, "Chart request saved",
		"id", req.ID,
		"kind", req.DataFilter.Kind,
		"prompt_len", len(req.Prompt))

	return req, nil
}

// ListRecentChartRequests returns up to limit requests, newest first. Rows
// whose stored specification or filter no longer parse are skipped and
// logged: historical charts are best-effort convenience data, and one corrupt
// row must not break the listing.
func (r *SQLiteRepository) ListRecentChartRequests(ctx context.Context, limit int) ([]core.ChartRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, prompt, data_filter, specification, created_at FROM chart_requests ORDER BY created_at DESC, id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("list chart requests: %w", err)
	}
	defer rows.Close()

	var reqs []core.ChartRequest
	for rows.Next() {
		req, err := scanChartRequest(rows.Scan)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable chart request row", "error", err)
			continue
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chart requests: %w", err)
	}
	return reqs, nil
}

// GetChartRequest loads a single chart request by identifier.
func (r *SQLiteRepository) GetChartRequest(ctx context.Context, id string) (core.ChartRequest, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, prompt, data_filter, specification, created_at FROM chart_requests WHERE id = ?", id)
	req, err := scanChartRequest(row.Scan)
	if err != nil {
		return core.ChartRequest{}, fmt.Errorf("get chart request %s: %w", id, err)
	}
	return req, nil
}

// ListPendingArchive returns un-archived chart requests, oldest first, for
// the archive worker's periodic scan.
func (r *SQLiteRepository) ListPendingArchive(ctx context.Context, limit int) ([]core.ChartRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, prompt, data_filter, specification, created_at FROM chart_requests WHERE archived_at IS NULL ORDER BY created_at ASC, id ASC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("list pending archive: %w", err)
	}
	defer rows.Close()

	var reqs []core.ChartRequest
	for rows.Next() {
		req, err := scanChartRequest(rows.Scan)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable chart request row", "error", err)
			continue
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending archive: %w", err)
	}
	return reqs, nil
}

// MarkArchived records that a chart request reached the archive sink.
func (r *SQLiteRepository) MarkArchived(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE chart_requests SET archived_at = ? WHERE id = ?",
		time.Now().UTC().Format(stampLayout), id)
	if err != nil {
		return fmt.Errorf("mark chart request archived: %w", err)
	}
	return nil
}

func scanChartRequest(scan func(dest ...any) error) (core.ChartRequest, error) {
	var req core.ChartRequest
	var filterJSON, createdAt string
	if err := scan(&req.ID, &req.Prompt, &filterJSON, &req.Specification, &createdAt); err != nil {
		return core.ChartRequest{}, err
	}
	if err := json.Unmarshal([]byte(filterJSON), &req.DataFilter); err != nil {
		return core.ChartRequest{}, fmt.Errorf("parse data filter: %w", err)
	}
	if !json.Valid([]byte(req.Specification)) {
		return core.ChartRequest{}, fmt.Errorf("specification is not valid JSON")
	}
	ts, err := time.Parse(stampLayout, createdAt)
	if err != nil {
		return core.ChartRequest{}, fmt.Errorf("parse created_at: %w", err)
	}
	req.CreatedAt = ts
	return req, nil
}

// transactionFilter builds the WHERE clause for a data filter. Timestamps are
// stored RFC 3339 UTC, so range comparisons stay string comparisons.
func transactionFilter(f core.DataFilter) (string, []any) {
	var clauses []string
	var args []any
	if f.Start != nil {
		clauses = append(clauses, "occurred_at >= ?")
		args = append(args, f.Start.UTC().Format(timeLayout))
	}
	if f.End != nil {
		clauses = append(clauses, "occurred_at <= ?")
		args = append(args, f.End.UTC().Format(timeLayout))
	}
	if f.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, f.Source)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
