package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// RecordAddedMessage announces a newly stored record. It carries only what
// a consumer needs to find the affected month; the record itself stays in
// the store.
type RecordAddedMessage struct {
	ID        string          `json:"id"`
	Kind      core.RecordKind `json:"kind"`
	Date      core.Date       `json:"date"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewRecordAddedMessage(kind core.RecordKind, id string, date core.Date) *RecordAddedMessage {
	return &RecordAddedMessage{
		ID:        id,
		Kind:      kind,
		Date:      date,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordAddedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordAddedMessageFromJSON decodes a message and rejects ones without an
// ID or a date.
func RecordAddedMessageFromJSON(data []byte) (*RecordAddedMessage, error) {
	var msg RecordAddedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("record added message without id")
	}
	if msg.Date.IsZero() {
		return nil, fmt.Errorf("record added message %s: %w", msg.ID, core.ErrInvalidDate)
	}
	return &msg, nil
}
