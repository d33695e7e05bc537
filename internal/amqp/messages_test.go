package amqp

import (
	"testing"
	"time"

	"grafico/internal/core"
)

func TestChartSavedMessageRoundTrip(t *testing.T) {
	msg := NewChartSavedMessage("a2c4e6", core.FilterKindUser)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := ChartSavedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("ChartSavedMessageFromJSON() error = %v", err)
	}

	if got.ID != msg.ID {
		t.Errorf("ID = %q, want %q", got.ID, msg.ID)
	}
	if got.Kind != msg.Kind {
		t.Errorf("Kind = %q, want %q", got.Kind, msg.Kind)
	}
	if !got.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, msg.Timestamp)
	}
}

func TestChartSavedMessageFromJSONInvalid(t *testing.T) {
	if _, err := ChartSavedMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestNewChartSavedMessageTimestamp(t *testing.T) {
	before := time.Now()
	msg := NewChartSavedMessage("id", core.FilterKindSystem)
	after := time.Now()

	if msg.Timestamp.Before(before) || msg.Timestamp.After(after) {
		t.Errorf("Timestamp %v outside [%v, %v]", msg.Timestamp, before, after)
	}
}
