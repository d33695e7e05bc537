package memory

import (
	"context"
	"testing"
	"time"

	"grafico/internal/core"
)

func TestMemoryStoreAppend(t *testing.T) {
	s := New()
	req := core.ChartRequest{
		ID:            "id-1",
		Prompt:        "spending by category",
		DataFilter:    core.DataFilter{Kind: core.FilterKindUser},
		Specification: `{"type":"pie"}`,
		CreatedAt:     time.Now(),
	}

	ref, err := s.Append(context.Background(), req)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	items := s.Items()
	if len(items) != 1 || items[0].ID != "id-1" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Append(context.Background(), core.ChartRequest{ID: "x"})
	if err == nil {
		t.Fatal("expected error for invalid request")
	}
	if len(s.Items()) != 0 {
		t.Fatal("invalid request must not be stored")
	}
}
