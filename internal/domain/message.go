package domain

import (
	"strings"
	"time"
)

// MessageDirection tells whether a message was sent by the user or received from the contact.
type MessageDirection string

// MessageDirection values.
const (
	MessageSent     MessageDirection = "sent"
	MessageReceived MessageDirection = "received"
)

// Message is one entry in a conversation thread with a contact.
type Message struct {
	ID        string
	ContactID string
	Sender    string
	Body      string
	Direction MessageDirection
	SentAt    time.Time
}

// MessageInput holds write-time values for creating one message.
type MessageInput struct {
	ID        string
	ContactID string
	Sender    string
	Body      string
	Direction MessageDirection
}

// NewMessage validates one message. Blank bodies are rejected.
func NewMessage(in MessageInput, now time.Time) (Message, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ContactID = strings.TrimSpace(in.ContactID)
	in.Body = strings.TrimSpace(in.Body)
	in.Direction = MessageDirection(strings.ToLower(strings.TrimSpace(string(in.Direction))))
	if in.ID == "" || in.ContactID == "" {
		return Message{}, ErrInvalidID
	}
	if in.Body == "" {
		return Message{}, ErrInvalidBody
	}
	switch in.Direction {
	case "":
		in.Direction = MessageSent
	case MessageSent, MessageReceived:
	default:
		return Message{}, ErrInvalidDirection
	}
	sender := strings.TrimSpace(in.Sender)
	if sender == "" && in.Direction == MessageSent {
		sender = "You"
	}
	return Message{
		ID:        in.ID,
		ContactID: in.ContactID,
		Sender:    sender,
		Body:      in.Body,
		Direction: in.Direction,
		SentAt:    now.UTC(),
	}, nil
}
