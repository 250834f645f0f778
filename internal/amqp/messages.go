package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage announces that a group's ledger changed on some
// instance. Receivers rebuild their own snapshots from the database.
type LedgerChangedMessage struct {
	GroupID    string    `json:"group_id"`
	InstanceID string    `json:"instance_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a message stamped with the current time.
func NewLedgerChangedMessage(groupID, instanceID string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		GroupID:    groupID,
		InstanceID: instanceID,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON parses a message. A message without a group
// is rejected.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.GroupID == "" {
		return nil, errMissingGroup
	}
	return &msg, nil
}
