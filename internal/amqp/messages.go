package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// ParseRequestMessage asks the worker to parse one document. It carries ids
// only; the worker loads the document itself.
type ParseRequestMessage struct {
	DocumentID string    `json:"documentId"`
	CallerUID  string    `json:"callerUid"`
	RequestID  string    `json:"requestId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewParseRequestMessage(documentID, callerUID, requestID string) *ParseRequestMessage {
	return &ParseRequestMessage{
		DocumentID: documentID,
		CallerUID:  callerUID,
		RequestID:  requestID,
		Timestamp:  time.Now().UTC(),
	}
}

func (m *ParseRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseRequestMessageFromJSON(data []byte) (*ParseRequestMessage, error) {
	var msg ParseRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.DocumentID == "" {
		return nil, errors.New("parse request without documentId")
	}
	return &msg, nil
}
