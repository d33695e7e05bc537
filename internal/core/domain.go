package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

const (
	// FilterKindSystem marks chart requests created automatically after a
	// successful generation.
	FilterKindSystem FilterKind = "system"
	// FilterKindUser marks chart requests explicitly saved by the user.
	FilterKindUser FilterKind = "user"
)

// MaxPromptLen caps the stored prompt/title length.
const MaxPromptLen = 200

type (
	Direction  string
	FilterKind string

	// Transaction is one row of the user's transaction history. Rows arrive
	// from the ingestion side pre-deduplicated and ordered ascending by
	// OccurredAt; the pipeline never mutates them.
	Transaction struct {
		OccurredAt time.Time
		Amount     decimal.Decimal // signed: positive inflow, negative outflow
		Category   string          // empty when the upstream parser assigned none
		Source     string          // originating account or platform
	}

	// SeriesPoint is a single (label, value) pair. Value is already rounded
	// for presentation; keep raw decimals for any further arithmetic.
	SeriesPoint struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}

	// Series is a named ordered sequence of points feeding one chart dimension.
	// Labels are unique within a series.
	Series struct {
		Name   string        `json:"name"`
		Points []SeriesPoint `json:"points"`
	}

	// DataFilter describes the transaction slice a chart was built from.
	// It is persisted next to the specification so a chart can be re-served
	// or re-generated later.
	DataFilter struct {
		Start  *time.Time `json:"start,omitempty"`
		End    *time.Time `json:"end,omitempty"`
		Source string     `json:"source,omitempty"`
		Kind   FilterKind `json:"kind"`
	}

	// ChartRequest pairs an originating prompt and filter with the resulting
	// specification. Immutable once persisted.
	ChartRequest struct {
		ID            string
		Prompt        string
		DataFilter    DataFilter
		Specification string // serialized chart spec, opaque at this layer
		CreatedAt     time.Time
	}
)

var (
	ErrEmptyPrompt       = errors.New("empty prompt")
	ErrPromptTooLong     = errors.New("prompt too long")
	ErrEmptySpec         = errors.New("empty specification")
	ErrInvalidDateRange  = errors.New("start date after end date")
	ErrInvalidFilterKind = errors.New("invalid filter kind")
)

// Direction derives the transaction direction from the amount sign.
// A zero amount counts as an inflow so classification stays total.
func (t Transaction) Direction() Direction {
	if t.Amount.IsNegative() {
		return Outflow
	}
	return Inflow
}

// Magnitude returns the absolute amount.
func (t Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}

func (k FilterKind) IsValid() bool {
	return k == FilterKindSystem || k == FilterKindUser
}

func (f DataFilter) Validate() error {
	if f.Start != nil && f.End != nil && f.Start.After(*f.End) {
		return ErrInvalidDateRange
	}
	if f.Kind != "" && !f.Kind.IsValid() {
		return ErrInvalidFilterKind
	}
	return nil
}

func (r ChartRequest) Validate() error {
	if len(strings.TrimSpace(r.Prompt)) == 0 {
		return ErrEmptyPrompt
	}
	if len(r.Prompt) > MaxPromptLen {
		return ErrPromptTooLong
	}
	if strings.TrimSpace(r.Specification) == "" {
		return ErrEmptySpec
	}
	return r.DataFilter.Validate()
}
