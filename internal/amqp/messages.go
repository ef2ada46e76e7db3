package amqp

import (
	"encoding/json"
	"time"

	"quattrini/internal/core"
)

// AlertMessage is the wire form of an emitted alert.
type AlertMessage struct {
	ID        string        `json:"id"`
	Kind      core.Severity `json:"type"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewAlertMessage(a core.Alert) *AlertMessage {
	return &AlertMessage{
		ID:        a.ID,
		Kind:      a.Kind,
		Message:   a.Message,
		Timestamp: time.Now(),
	}
}

// Alert converts the message back into a domain alert.
func (m *AlertMessage) Alert() core.Alert {
	return core.Alert{ID: m.ID, Kind: m.Kind, Message: m.Message}
}

func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
