// Package model defines data structures for the chat backend.
package model

import (
	"time"
)

// Default conversation titles.
const (
	DefaultChatTitle         = "New Chat"
	DefaultConversationTitle = "New Conversation"
	ImportTitlePrefix        = "Imported Chat - "
)

// ConversationListLimit caps GET /conversations/{user_id}.
const ConversationListLimit = 50

// Conversation represents a conversation thread owned by a user.
type Conversation struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateConversationRequest is the request to create a new conversation.
type CreateConversationRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title,omitempty"`
}

// CreateConversationResponse is returned after creating a conversation.
type CreateConversationResponse struct {
	ConversationID string `json:"conversation_id"`
}
