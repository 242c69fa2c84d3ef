package server

import (
	"encoding/json"
	"time"

	"github.com/lox/holdemroom/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// WelcomeData is the first message on every connection.
type WelcomeData struct {
	ConnectionID string `json:"connection_id"`
	Holder       bool   `json:"holder"`
}

// EventData wraps a table event with its type so clients can decode it.
type EventData struct {
	Type  game.EventType `json:"type"`
	Event game.GameEvent `json:"event"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
