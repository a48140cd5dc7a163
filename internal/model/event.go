package model

import (
	"time"
)

// EventType represents the type of conversation event.
type EventType string

const (
	EventTypeCreated EventType = "created"
)

// ConversationEvent represents a lifecycle event of a conversation.
type ConversationEvent struct {
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Type           EventType `json:"type"`
	Source         string    `json:"source"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
}
