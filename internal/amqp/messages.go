package amqp

import (
	"encoding/json"
	"time"
)

// DatasetImportedMessage announces that a new dataset was stored. Consumers
// reload from their source; the message carries no invoice data.
type DatasetImportedMessage struct {
	BatchID     string    `json:"batch_id"`
	Source      string    `json:"source"`
	Salespeople int       `json:"salespeople"`
	Lines       int       `json:"lines"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewDatasetImportedMessage creates a message stamped with the current time
func NewDatasetImportedMessage(batchID, source string, salespeople, lines int) *DatasetImportedMessage {
	return &DatasetImportedMessage{
		BatchID:     batchID,
		Source:      source,
		Salespeople: salespeople,
		Lines:       lines,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetImportedMessageFromJSON creates a message from JSON bytes
func DatasetImportedMessageFromJSON(data []byte) (*DatasetImportedMessage, error) {
	var msg DatasetImportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
