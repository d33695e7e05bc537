package google

import (
	"context"
	"testing"
	"time"

	"grafico/internal/core"
)

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Fatal("expected error without GOOGLE_SPREADSHEET_ID")
	}
}

func TestFormatRange(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter core.DataFilter
		want   string
	}{
		{"open", core.DataFilter{}, "* .. *"},
		{"closed", core.DataFilter{Start: &start, End: &end}, "2025-03-01 .. 2025-03-31"},
		{"open end", core.DataFilter{Start: &start}, "2025-03-01 .. *"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRange(tt.filter); got != tt.want {
				t.Errorf("formatRange() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendRequiresService(t *testing.T) {
	c := &Client{spreadsheetID: "sheet", archiveSheet: "Charts"}
	req := core.ChartRequest{
		ID:            "id-1",
		Prompt:        "trend",
		Specification: `{"type":"line"}`,
		CreatedAt:     time.Now(),
	}
	if _, err := c.Append(context.Background(), req); err == nil {
		t.Fatal("expected error when service is not initialized")
	}
}
