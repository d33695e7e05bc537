package memory

import (
	"context"
	"fmt"
	"sync"

	"grafico/internal/core"
)

// Store keeps archived chart requests in memory. Used in tests and as a
// fallback when no spreadsheet is configured.
type Store struct {
	mu    sync.Mutex
	items []core.ChartRequest
}

func New() *Store {
	return &Store{}
}

// Append stores the request and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, req core.ChartRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, req)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Items returns a copy of everything archived so far.
func (s *Store) Items() []core.ChartRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ChartRequest(nil), s.items...)
}
