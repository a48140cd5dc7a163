package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshrivastava925/Clothing-Site/internal/model"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
	"github.com/dshrivastava925/Clothing-Site/pkg/metrics"
)

// Conversation sources, used as metric labels and in events.
const (
	SourceChat   = "chat"
	SourceAPI    = "api"
	SourceImport = "import"
)

// ConversationService handles conversation operations.
type ConversationService struct {
	conversations ConversationStore
	messages      MessageStore
	events        notifier
	logger        *logger.Logger
}

// NewConversationService creates a new conversation service. publisher may be nil.
func NewConversationService(
	conversations ConversationStore,
	messages MessageStore,
	publisher EventPublisher,
	log *logger.Logger,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		events:        notifier{publisher: publisher, logger: log},
		logger:        log,
	}
}

// Create creates a conversation for the user. An empty title becomes
// model.DefaultConversationTitle.
func (s *ConversationService) Create(ctx context.Context, req *model.CreateConversationRequest) (*model.Conversation, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, invalid("user_id is required")
	}

	title := req.Title
	if title == "" {
		title = model.DefaultConversationTitle
	}
	return s.create(ctx, req.UserID, title, SourceAPI)
}

func (s *ConversationService) create(ctx context.Context, userID, title, source string) (*model.Conversation, error) {
	now := time.Now().UTC()
	conv := &model.Conversation{
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.conversations.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	metrics.ConversationsTotal.WithLabelValues(source).Inc()
	s.logger.Info("conversation created",
		zap.String("conversation_id", conv.ID),
		zap.String("user_id", userID),
		zap.String("source", source),
	)
	s.events.conversation(ctx, conv, source)

	return conv, nil
}

// Get retrieves a conversation by ID.
func (s *ConversationService) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	return s.conversations.GetConversation(ctx, conversationID)
}

// ListByUser returns the user's most recently updated conversations.
func (s *ConversationService) ListByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	convs, err := s.conversations.ListConversations(ctx, userID, model.ConversationListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	return convs, nil
}

// Messages returns every message of a conversation ordered by message_order.
// An unknown conversation yields an empty list.
func (s *ConversationService) Messages(ctx context.Context, conversationID string) ([]model.Message, error) {
	msgs, err := s.messages.ListMessages(ctx, conversationID)
	if err != nil {
		if errors.Is(err, model.ErrInvalidID) {
			return nil, invalid("invalid conversation ID format")
		}
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

// Touch bumps updated_at to at.
func (s *ConversationService) Touch(ctx context.Context, conversationID string, at time.Time) error {
	if err := s.conversations.TouchConversation(ctx, conversationID, at); err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	return nil
}
