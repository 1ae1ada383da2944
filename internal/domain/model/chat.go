package model

import (
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser    Sender = "user"
	SenderPersona Sender = "persona"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
)

// DeliveryStatus is cosmetic only; it is never driven by a real delivery
// confirmation.
type DeliveryStatus string

const (
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
)

// ChatMessage is one entry in a chat log. For image messages Body holds the
// media URL. IDs are random UUIDs so rapid sequential sends cannot collide.
type ChatMessage struct {
	ID        string         `json:"id"`
	Sender    Sender         `json:"sender"`
	Body      string         `json:"body"`
	Type      MessageType    `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Status    DeliveryStatus `json:"status,omitempty"`
}

func NewUserMessage(body string, typ MessageType) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Sender:    SenderUser,
		Body:      body,
		Type:      typ,
		Timestamp: time.Now(),
		Status:    StatusSent,
	}
}

func NewPersonaMessage(body string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Sender:    SenderPersona,
		Body:      body,
		Type:      MessageText,
		Timestamp: time.Now(),
	}
}

// RecentWindow returns the last n messages of log.
func RecentWindow(log []ChatMessage, n int) []ChatMessage {
	if n <= 0 || len(log) <= n {
		return log
	}
	return log[len(log)-n:]
}
