package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionDirection(t *testing.T) {
	cases := []struct {
		amount string
		want   Direction
	}{
		{"100", Inflow},
		{"0", Inflow},
		{"-0.01", Outflow},
	}
	for _, tc := range cases {
		amt, _ := decimal.NewFromString(tc.amount)
		tx := Transaction{Amount: amt}
		if got := tx.Direction(); got != tc.want {
			t.Fatalf("amount %s: expected %s, got %s", tc.amount, tc.want, got)
		}
	}
}

func TestDataFilterValidate(t *testing.T) {
	day := func(d int) *time.Time {
		ts := time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}

	if err := (DataFilter{Start: day(1), End: day(30), Kind: FilterKindUser}).Validate(); err != nil {
		t.Fatalf("valid filter rejected: %v", err)
	}
	if err := (DataFilter{}).Validate(); err != nil {
		t.Fatalf("empty filter rejected: %v", err)
	}
	if err := (DataFilter{Start: day(30), End: day(1)}).Validate(); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if err := (DataFilter{Kind: "robot"}).Validate(); !errors.Is(err, ErrInvalidFilterKind) {
		t.Fatalf("expected ErrInvalidFilterKind, got %v", err)
	}
}

func TestChartRequestValidate(t *testing.T) {
	valid := ChartRequest{
		Prompt:        "spending by category",
		Specification: `{"type":"pie"}`,
		DataFilter:    DataFilter{Kind: FilterKindUser},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	r := valid
	r.Prompt = "   "
	if err := r.Validate(); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}

	r = valid
	r.Prompt = strings.Repeat("x", MaxPromptLen+1)
	if err := r.Validate(); !errors.Is(err, ErrPromptTooLong) {
		t.Fatalf("expected ErrPromptTooLong, got %v", err)
	}

	r = valid
	r.Specification = ""
	if err := r.Validate(); !errors.Is(err, ErrEmptySpec) {
		t.Fatalf("expected ErrEmptySpec, got %v", err)
	}
}
