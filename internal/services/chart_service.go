package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"grafico/internal/amqp"
	"grafico/internal/chart"
	"grafico/internal/core"
)

// ChartService turns a natural language prompt into a validated chart
// specification and records every generated or explicitly saved chart.
type ChartService struct {
	transactions TransactionStore
	requests     ChartRequestStore
	publisher    SavedPublisher
	maxRows      int
	pageSize     int
}

// GenerateResult carries the outcome of one generation. Saved is false when
// the specification was produced but recording it failed.
type GenerateResult struct {
	Spec    chart.Spec
	Request core.ChartRequest
	Saved   bool
}

func NewChartService(transactions TransactionStore, requests ChartRequestStore, publisher SavedPublisher, maxRows, pageSize int) *ChartService {
	return &ChartService{
		transactions: transactions,
		requests:     requests,
		publisher:    publisher,
		maxRows:      maxRows,
		pageSize:     pageSize,
	}
}

// Generate runs the full pipeline: classify the prompt, aggregate the
// matching transactions, build and validate the specification, then persist
// the request. A persistence failure does not discard the result; the caller
// still gets the specification with Saved set to false.
func (s *ChartService) Generate(ctx context.Context, prompt string, filter core.DataFilter) (GenerateResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return GenerateResult{}, core.ErrEmptyPrompt
	}
	if len(prompt) > core.MaxPromptLen {
		return GenerateResult{}, core.ErrPromptTooLong
	}
	if filter.Kind == "" {
		filter.Kind = core.FilterKindSystem
	}
	if err := filter.Validate(); err != nil {
		return GenerateResult{}, err
	}

	count, err := s.transactions.CountTransactions(ctx, filter)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("count transactions: %w", err)
	}
	if count == 0 {
		return GenerateResult{}, fmt.Errorf("%w: filter matched nothing", core.ErrEmptyDataset)
	}
	if count > s.maxRows {
		return GenerateResult{}, fmt.Errorf("%w: %d rows, limit %d", core.ErrDatasetTooLarge, count, s.maxRows)
	}

	records, err := s.transactions.ListTransactions(ctx, filter)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("list transactions: %w", err)
	}
	if len(records) == 0 {
		return GenerateResult{}, fmt.Errorf("%w: filter matched nothing", core.ErrEmptyDataset)
	}

	intent := chart.ClassifyIntent(prompt)
	series, err := chart.Aggregate(records, intent)
	if err != nil {
		return GenerateResult{}, err
	}

	spec := chart.BuildSpec(series, intent)
	if err := chart.ValidateSpec(spec); err != nil {
		return GenerateResult{}, err
	}

	text, err := spec.Encode()
	if err != nil {
		return GenerateResult{}, fmt.Errorf("encode specification: %w", err)
	}

	result := GenerateResult{Spec: spec}

	// Record the generation. A storage failure here must not cost the user
	// the chart they asked for.
	saved, err := s.requests.SaveChartRequest(ctx, core.ChartRequest{
		Prompt:        prompt,
		DataFilter:    filter,
		Specification: text,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to record chart generation",
			"error", err, "intent", intent)
		return result, nil
	}

	result.Request = saved
	result.Saved = true
	s.publishSaved(ctx, saved)
	return result, nil
}

// Save persists a chart request the user explicitly asked to keep. The
// specification is validated before anything touches storage.
func (s *ChartService) Save(ctx context.Context, prompt string, filter core.DataFilter, specText string) (core.ChartRequest, error) {
	spec, err := chart.DecodeSpec(specText)
	if err != nil {
		return core.ChartRequest{}, fmt.Errorf("%w: %v", core.ErrSpecInvalid, err)
	}
	if err := chart.ValidateSpec(spec); err != nil {
		return core.ChartRequest{}, err
	}

	if filter.Kind == "" {
		filter.Kind = core.FilterKindUser
	}

	req := core.ChartRequest{
		Prompt:        prompt,
		DataFilter:    filter,
		Specification: specText,
	}
	if err := req.Validate(); err != nil {
		return core.ChartRequest{}, err
	}

	saved, err := s.requests.SaveChartRequest(ctx, req)
	if err != nil {
		return core.ChartRequest{}, fmt.Errorf("%w: %v", core.ErrPersistence, err)
	}

	s.publishSaved(ctx, saved)
	return saved, nil
}

// ListRecent returns the newest chart requests, newest first. A non-positive
// or oversized limit falls back to the configured page size.
func (s *ChartService) ListRecent(ctx context.Context, limit int) ([]core.ChartRequest, error) {
	if limit <= 0 || limit > s.pageSize {
		limit = s.pageSize
	}
	return s.requests.ListRecentChartRequests(ctx, limit)
}

func (s *ChartService) publishSaved(ctx context.Context, req core.ChartRequest) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping saved message")
		return
	}

	msg := amqp.NewChartSavedMessage(req.ID, req.DataFilter.Kind)
	if err := s.publisher.PublishChartSaved(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish saved message",
			"id", req.ID, "error", err)
		// Don't fail the request - the chart is saved locally
	}
}
