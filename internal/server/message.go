package server

import (
	"encoding/json"
	"time"

	"github.com/lox/cardroom/internal/game"
)

// MessageType identifies the type of a websocket message
type MessageType string

const (
	// Client -> Server
	MessageTypeJoin   MessageType = "join"
	MessageTypeLeave  MessageType = "leave"
	MessageTypeStart  MessageType = "start"
	MessageTypeAction MessageType = "action"
	MessageTypeChat   MessageType = "send-message"

	// Server -> Client
	MessageTypeJoined          MessageType = "joined"
	MessageTypePlayerLeft      MessageType = "player-left"
	MessageTypeTableUpdated    MessageType = "table-updated"
	MessageTypeActionPerformed MessageType = "action-performed"
	MessageTypeChatMessage     MessageType = "chat-message"
	MessageTypeError           MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the base websocket envelope
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
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

// Client -> Server payloads

type JoinData struct {
	TableID string `json:"tableId"`
	Name    string `json:"name"`
	Stakes  string `json:"stakes,omitempty"` // named preset from config, optional
}

type LeaveData struct {
	TableID string `json:"tableId"`
}

type StartData struct {
	TableID string `json:"tableId"`
}

type ActionData struct {
	TableID string `json:"tableId"`
	Action  string `json:"action"`
	Amount  int    `json:"amount,omitempty"`
}

type ChatData struct {
	TableID string `json:"tableId"`
	Text    string `json:"text"`
}

// Server -> Client payloads

type JoinedData struct {
	TableID  string `json:"tableId"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Chips    int    `json:"chips"`
	Position int    `json:"position"`
}

type PlayerLeftData struct {
	TableID  string `json:"tableId"`
	PlayerID string `json:"playerId"`
}

// TableUpdatedData carries the entire table snapshot, already
// redacted for its recipient. Clients re-render from scratch.
type TableUpdatedData struct {
	Table game.Snapshot `json:"table"`
}

type ActionPerformedData struct {
	TableID    string `json:"tableId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Action     string `json:"action"`
	Amount     int    `json:"amount"`
}

type ChatMessageData struct {
	ID        string    `json:"id"`
	TableID   string    `json:"tableId"`
	PlayerID  string    `json:"playerId"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
