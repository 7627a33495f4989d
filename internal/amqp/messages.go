package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EntryChangedRoutingKey is the routing key of EntryChangedMessage.
const EntryChangedRoutingKey = "entry.changed"

// ExportRequestMessage asks the worker to generate and deliver one report.
// Parameters stay loosely typed strings so that bad input is rejected by
// the worker rather than lost during decoding.
type ExportRequestMessage struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Format      string    `json:"format"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	Year        int       `json:"year,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// EntryChangedMessage announces a mutation of the entry collection.
type EntryChangedMessage struct {
	EntryID string    `json:"entryId"`
	Op      string    `json:"op"`
	At      time.Time `json:"at"`
}

func NewExportRequestMessage(kind, format, from, to string, year int) *ExportRequestMessage {
	return &ExportRequestMessage{
		ID:          uuid.NewString(),
		Kind:        kind,
		Format:      format,
		From:        from,
		To:          to,
		Year:        year,
		RequestedAt: time.Now().UTC(),
	}
}

func (m *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *EntryChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryChangedMessageFromJSON(data []byte) (*EntryChangedMessage, error) {
	var msg EntryChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
