package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"grafico/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "grafico.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedTransaction(t *testing.T, repo *SQLiteRepository, day string, amount string, category, source string) {
	t.Helper()
	ts, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("parse amount: %v", err)
	}
	err = repo.InsertTransaction(context.Background(), core.Transaction{
		OccurredAt: ts, Amount: amt, Category: category, Source: source,
	})
	if err != nil {
		t.Fatalf("insert transaction: %v", err)
	}
}

func TestTransactionsCountAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedTransaction(t, repo, "2025-03-05", "-50", "food", "manual")
	seedTransaction(t, repo, "2025-03-01", "100", "salary", "import")
	seedTransaction(t, repo, "2025-03-10", "-20", "transport", "manual")

	count, err := repo.CountTransactions(ctx, core.DataFilter{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}

	txs, err := repo.ListTransactions(ctx, core.DataFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(txs))
	}
	// Ascending by occurrence time regardless of insert order
	if !txs[0].OccurredAt.Before(txs[1].OccurredAt) || !txs[1].OccurredAt.Before(txs[2].OccurredAt) {
		t.Fatalf("rows not ordered ascending: %v", txs)
	}
	if txs[0].Amount.String() != "100" {
		t.Fatalf("expected exact decimal round trip, got %s", txs[0].Amount)
	}

	// Source filter
	count, err = repo.CountTransactions(ctx, core.DataFilter{Source: "manual"})
	if err != nil {
		t.Fatalf("count filtered: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 manual rows, got %d", count)
	}

	// Date range filter
	start := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)
	txs, err = repo.ListTransactions(ctx, core.DataFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("list ranged: %v", err)
	}
	if len(txs) != 1 || txs[0].Category != "food" {
		t.Fatalf("expected the food row only, got %v", txs)
	}
}

func TestChartRequestSaveAndListRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.SaveChartRequest(ctx, core.ChartRequest{
		Prompt:        "balance over time",
		DataFilter:    core.DataFilter{Kind: core.FilterKindSystem},
		Specification: `{"type":"line"}`,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated id")
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("expected server timestamp")
	}

	second, err := repo.SaveChartRequest(ctx, core.ChartRequest{
		Prompt:        "spending by category",
		DataFilter:    core.DataFilter{Kind: core.FilterKindUser},
		Specification: `{"type":"pie"}`,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("ids must be unique")
	}

	reqs, err := repo.ListRecentChartRequests(ctx, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(reqs))
	}
	if reqs[0].ID != second.ID {
		t.Fatalf("expected newest first, got %s", reqs[0].ID)
	}
	// The kind tag round-trips unchanged
	if reqs[0].DataFilter.Kind != core.FilterKindUser || reqs[1].DataFilter.Kind != core.FilterKindSystem {
		t.Fatalf("filter kinds did not round trip: %v", reqs)
	}

	got, err := repo.GetChartRequest(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Specification != first.Specification {
		t.Fatalf("specification did not round trip: %q", got.Specification)
	}
}

func TestListRecentSkipsCorruptRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.SaveChartRequest(ctx, core.ChartRequest{
		Prompt:        "keep me",
		DataFilter:    core.DataFilter{Kind: core.FilterKindUser},
		Specification: `{"type":"pie"}`,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Corrupt a row behind the repository's back
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO chart_requests (id, prompt, data_filter, specification, created_at) VALUES (?, ?, ?, ?, ?)",
		"corrupt", "broken", `{"kind":"user"}`, `{not json`, time.Now().UTC().Format(stampLayout))
	if err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}

	reqs, err := repo.ListRecentChartRequests(ctx, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(reqs) != 1 || reqs[0].Prompt != "keep me" {
		t.Fatalf("expected corrupt row skipped, got %v", reqs)
	}
}

func TestArchiveLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.SaveChartRequest(ctx, core.ChartRequest{
		Prompt:        "trend",
		DataFilter:    core.DataFilter{Kind: core.FilterKindSystem},
		Specification: `{"type":"line"}`,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	pending, err := repo.ListPendingArchive(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != saved.ID {
		t.Fatalf("expected 1 pending row, got %v", pending)
	}

	if err := repo.MarkArchived(ctx, saved.ID); err != nil {
		t.Fatalf("mark archived: %v", err)
	}

	pending, err = repo.ListPendingArchive(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows, got %v", pending)
	}
}
