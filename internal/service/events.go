package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dshrivastava925/Clothing-Site/internal/model"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
	"github.com/dshrivastava925/Clothing-Site/pkg/metrics"
)

// notifier publishes best-effort: failures are logged and counted only.
type notifier struct {
	publisher EventPublisher
	logger    *logger.Logger
}

func (n notifier) message(ctx context.Context, msg *model.Message) {
	if n.publisher == nil {
		return
	}
	if err := n.publisher.PublishMessage(ctx, msg); err != nil {
		metrics.EventPublishFailures.WithLabelValues("message").Inc()
		n.logger.Warn("failed to publish message",
			zap.String("conversation_id", msg.ConversationID),
			zap.Error(err),
		)
	}
}

func (n notifier) conversation(ctx context.Context, conv *model.Conversation, source string) {
	if n.publisher == nil {
		return
	}
	err := n.publisher.PublishConversation(ctx, &model.ConversationEvent{
		ConversationID: conv.ID,
		UserID:         conv.UserID,
		Type:           model.EventTypeCreated,
		Source:         source,
		Title:          conv.Title,
		CreatedAt:      conv.CreatedAt,
	})
	if err != nil {
		metrics.EventPublishFailures.WithLabelValues("conversation").Inc()
		n.logger.Warn("failed to publish conversation event",
			zap.String("conversation_id", conv.ID),
			zap.Error(err),
		)
	}
}
