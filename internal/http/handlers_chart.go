package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"grafico/internal/core"
)

type filterPayload struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Source    string `json:"source,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

type generateRequest struct {
	Prompt    string `json:"prompt"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Source    string `json:"source,omitempty"`
}

type generateResponse struct {
	RequestID     string          `json:"request_id,omitempty"`
	Saved         bool            `json:"saved"`
	Specification json.RawMessage `json:"specification"`
}

type saveRequest struct {
	Title         string          `json:"title,omitempty"`
	Prompt        string          `json:"prompt,omitempty"`
	Specification json.RawMessage `json:"specification"`
	DataFilter    *filterPayload  `json:"data_filter,omitempty"`
}

type chartEntry struct {
	ID            string          `json:"id"`
	Prompt        string          `json:"prompt"`
	DataFilter    filterPayload   `json:"data_filter"`
	Specification json.RawMessage `json:"specification"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	filter, err := buildFilter(filterPayload{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Source:    req.Source,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.charts.Generate(r.Context(), sanitizeInput(req.Prompt), filter)
	if err != nil {
		s.writeGenerateError(w, r, err)
		return
	}

	if result.Saved {
		s.invalidateRecent()
	}

	spec, err := json.Marshal(result.Spec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal specification", "error", err)
		writeError(w, http.StatusInternalServerError, "generation_failed", "could not encode specification")
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		RequestID:     result.Request.ID,
		Saved:         result.Saved,
		Specification: spec,
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	// A user-supplied title takes precedence over the original prompt.
	prompt := sanitizeInput(req.Title)
	if prompt == "" {
		prompt = sanitizeInput(req.Prompt)
	}

	var payload filterPayload
	if req.DataFilter != nil {
		payload = *req.DataFilter
	}
	filter, err := buildFilter(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	saved, err := s.charts.Save(r.Context(), prompt, filter, string(req.Specification))
	if err != nil {
		s.writeSaveError(w, r, err)
		return
	}

	s.invalidateRecent()
	writeJSON(w, http.StatusCreated, map[string]string{"id": saved.ID})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a number")
			return
		}
		limit = n
	}

	key := s.recentKey(limit)
	if cached, ok := s.recentCache.Get(key); ok {
		writeJSON(w, http.StatusOK, map[string]any{"charts": toEntries(cached)})
		return
	}

	charts, err := s.charts.ListRecent(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list recent charts", "error", err)
		writeError(w, http.StatusInternalServerError, "listing_failed", "could not list recent charts")
		return
	}

	s.recentCache.Set(key, charts)
	writeJSON(w, http.StatusOK, map[string]any{"charts": toEntries(charts)})
}

func (s *Server) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyPrompt),
		errors.Is(err, core.ErrPromptTooLong),
		errors.Is(err, core.ErrInvalidDateRange),
		errors.Is(err, core.ErrInvalidFilterKind):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, core.ErrEmptyDataset):
		writeError(w, http.StatusUnprocessableEntity, "empty_dataset", err.Error())
	case errors.Is(err, core.ErrDatasetTooLarge):
		writeError(w, http.StatusUnprocessableEntity, "dataset_too_large", err.Error())
	case errors.Is(err, core.ErrUnsupportedAggregation):
		writeError(w, http.StatusUnprocessableEntity, "unsupported_aggregation", err.Error())
	default:
		slog.ErrorContext(r.Context(), "Chart generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "generation_failed", "chart generation failed")
	}
}

func (s *Server) writeSaveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyPrompt),
		errors.Is(err, core.ErrPromptTooLong),
		errors.Is(err, core.ErrInvalidDateRange),
		errors.Is(err, core.ErrInvalidFilterKind):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, core.ErrSpecInvalid), errors.Is(err, core.ErrEmptySpec):
		writeError(w, http.StatusUnprocessableEntity, "invalid_specification", err.Error())
	default:
		slog.ErrorContext(r.Context(), "Chart save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "save_failed", "chart save failed")
	}
}

// buildFilter converts wire-format dates into a DataFilter. The end date is
// inclusive, so it extends to the last instant of that day.
func buildFilter(p filterPayload) (core.DataFilter, error) {
	filter := core.DataFilter{
		Source: strings.TrimSpace(p.Source),
		Kind:   core.FilterKind(strings.TrimSpace(p.Kind)),
	}

	if v := strings.TrimSpace(p.StartDate); v != "" {
		start, err := parseDate(v)
		if err != nil {
			return core.DataFilter{}, fmt.Errorf("invalid start_date %q: use YYYY-MM-DD", v)
		}
		filter.Start = &start
	}
	if v := strings.TrimSpace(p.EndDate); v != "" {
		end, err := parseDate(v)
		if err != nil {
			return core.DataFilter{}, fmt.Errorf("invalid end_date %q: use YYYY-MM-DD", v)
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
		filter.End = &end
	}

	if err := filter.Validate(); err != nil {
		return core.DataFilter{}, err
	}
	return filter, nil
}

func toEntries(charts []core.ChartRequest) []chartEntry {
	entries := make([]chartEntry, 0, len(charts))
	for _, c := range charts {
		payload := filterPayload{
			Source: c.DataFilter.Source,
			Kind:   string(c.DataFilter.Kind),
		}
		if c.DataFilter.Start != nil {
			payload.StartDate = c.DataFilter.Start.UTC().Format("2006-01-02")
		}
		if c.DataFilter.End != nil {
			payload.EndDate = c.DataFilter.End.UTC().Format("2006-01-02")
		}
		entries = append(entries, chartEntry{
			ID:            c.ID,
			Prompt:        c.Prompt,
			DataFilter:    payload,
			Specification: json.RawMessage(c.Specification),
			CreatedAt:     c.CreatedAt,
		})
	}
	return entries
}
