package amqp

import (
	"encoding/json"
	"time"
)

// EntryRecordedMessage announces a new ledger entry. It only carries the id;
// consumers read the entry itself from the database.
type EntryRecordedMessage struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryRecordedMessage(id int64, userID string) *EntryRecordedMessage {
	return &EntryRecordedMessage{
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

func (m *EntryRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryRecordedMessageFromJSON(data []byte) (*EntryRecordedMessage, error) {
	var msg EntryRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
