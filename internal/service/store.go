// Package service provides business logic for the chat backend.
package service

import (
	"context"
	"time"

	"github.com/dshrivastava925/Clothing-Site/internal/model"
)

// ConversationStore persists conversations.
type ConversationStore interface {
	// CreateConversation inserts conv and sets conv.ID.
	CreateConversation(ctx context.Context, conv *model.Conversation) error
	// GetConversation returns model.ErrConversationNotFound for unknown or malformed ids.
	GetConversation(ctx context.Context, id string) (*model.Conversation, error)
	ListConversations(ctx context.Context, userID string, limit int) ([]model.Conversation, error)
	TouchConversation(ctx context.Context, id string, at time.Time) error
}

// MessageStore persists messages.
type MessageStore interface {
	// InsertMessage inserts msg and sets msg.ID. It returns
	// model.ErrDuplicateOrder when msg.Order is already taken.
	InsertMessage(ctx context.Context, msg *model.Message) error
	InsertMessages(ctx context.Context, msgs []*model.Message) error
	// MaxOrder returns 0 for a conversation without messages.
	MaxOrder(ctx context.Context, conversationID string) (int, error)
	// RecentMessages returns the limit highest-ordered messages, ascending.
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]model.Message, error)
}

// EventPublisher fans out stored messages and conversation events.
type EventPublisher interface {
	PublishMessage(ctx context.Context, msg *model.Message) error
	PublishConversation(ctx context.Context, event *model.ConversationEvent) error
}
