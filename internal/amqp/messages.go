package amqp

import (
	"encoding/json"
	"time"
)

// MovementsChangedMessage tells the export worker that movements of a
// kind changed. It carries no movement data; the worker reloads from
// the database before exporting.
type MovementsChangedMessage struct {
	Kind      string    `json:"kind"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMovementsChangedMessage(kind string, count int) *MovementsChangedMessage {
	return &MovementsChangedMessage{
		Kind:      kind,
		Count:     count,
		Timestamp: time.Now(),
	}
}

func (m *MovementsChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MovementsChangedMessageFromJSON(data []byte) (*MovementsChangedMessage, error) {
	var msg MovementsChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
