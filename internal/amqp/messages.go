package amqp

import (
	"encoding/json"
	"time"

	"grafico/internal/core"
)

// ChartSavedMessage announces a persisted chart request. It carries only the
// identifier and the filter kind, the worker fetches the full row from the
// database before archiving it.
type ChartSavedMessage struct {
	ID        string          `json:"id"`
	Kind      core.FilterKind `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewChartSavedMessage creates a saved-chart message for the given request.
func NewChartSavedMessage(id string, kind core.FilterKind) *ChartSavedMessage {
	return &ChartSavedMessage{
		ID:        id,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChartSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChartSavedMessageFromJSON creates a message from JSON bytes
func ChartSavedMessageFromJSON(data []byte) (*ChartSavedMessage, error) {
	var msg ChartSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
