package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dshrivastava925/Clothing-Site/internal/llm"
	"github.com/dshrivastava925/Clothing-Site/internal/model"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
	"github.com/dshrivastava925/Clothing-Site/pkg/metrics"
	"github.com/dshrivastava925/Clothing-Site/pkg/tracing"
)

// ReplyStatus tags how an assistant reply was produced.
type ReplyStatus int

const (
	// ReplyOK carries provider text.
	ReplyOK ReplyStatus = iota
	// ReplyDegraded carries the provider failure.
	ReplyDegraded
	// ReplyUnconfigured means no provider is set up.
	ReplyUnconfigured
)

func (s ReplyStatus) String() string {
	switch s {
	case ReplyOK:
		return "ok"
	case ReplyDegraded:
		return "degraded"
	case ReplyUnconfigured:
		return "unconfigured"
	}
	return "unknown"
}

// Reply is the outcome of asking the completion provider for an answer.
// Degraded and unconfigured replies still render user-facing text.
type Reply struct {
	Status ReplyStatus
	Text   string
	Cause  error
}

// Content returns the text stored and returned as the assistant message.
func (r Reply) Content() string {
	if r.Status == ReplyDegraded {
		return "Sorry, I encountered an error: " + r.Cause.Error()
	}
	return r.Text
}

func unconfiguredReply(keyEnvVar string) Reply {
	return Reply{
		Status: ReplyUnconfigured,
		Text:   fmt.Sprintf("AI service not configured. Please set %s.", keyEnvVar),
	}
}

// ChatSettings configures completion calls.
type ChatSettings struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// KeyEnvVar names the variable to set when no provider is configured.
	KeyEnvVar string
	// Timeout bounds a completion call; zero means no bound.
	Timeout time.Duration
}

// ChatService runs chat turns.
type ChatService struct {
	conversations *ConversationService
	messages      MessageStore
	sequencer     *Sequencer
	llmClient     llm.Client
	settings      ChatSettings
	events        notifier
	tracer        trace.Tracer
	logger        *logger.Logger
}

// NewChatService creates a chat service. llmClient and publisher may be nil.
func NewChatService(
	conversations *ConversationService,
	messages MessageStore,
	sequencer *Sequencer,
	llmClient llm.Client,
	settings ChatSettings,
	publisher EventPublisher,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		messages:      messages,
		sequencer:     sequencer,
		llmClient:     llmClient,
		settings:      settings,
		events:        notifier{publisher: publisher, logger: log},
		tracer:        tracing.Tracer("chat"),
		logger:        log,
	}
}

// Send stores the user message, asks the provider for a reply over the
// most recent context, stores the reply and bumps the conversation.
//
// The writes of a turn are not cancelled when the caller goes away.
func (s *ChatService) Send(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, invalid("user_id is required")
	}
	if req.Message == "" {
		return nil, invalid("message is required")
	}

	ctx = context.WithoutCancel(ctx)
	ctx, span := s.tracer.Start(ctx, "chat.send")
	defer span.End()

	conv, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("conversation.id", conv.ID))

	userMsg := &model.Message{
		ConversationID: conv.ID,
		Role:           model.RoleUser,
		Content:        req.Message,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.sequencer.Append(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}
	s.events.message(ctx, userMsg)

	history, err := s.messages.RecentMessages(ctx, conv.ID, model.ContextWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load context: %w", err)
	}

	reply := s.complete(ctx, history)

	assistantMsg := &model.Message{
		ConversationID: conv.ID,
		Role:           model.RoleAssistant,
		Content:        reply.Content(),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.sequencer.Append(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to store assistant message: %w", err)
	}
	s.events.message(ctx, assistantMsg)

	if err := s.conversations.Touch(ctx, conv.ID, time.Now().UTC()); err != nil {
		return nil, err
	}

	return &model.ChatResponse{
		Response:       assistantMsg.Content,
		ConversationID: conv.ID,
	}, nil
}

func (s *ChatService) resolve(ctx context.Context, req *model.ChatRequest) (*model.Conversation, error) {
	if req.ConversationID != "" {
		return s.conversations.Get(ctx, req.ConversationID)
	}
	return s.conversations.create(ctx, req.UserID, model.DefaultChatTitle, SourceChat)
}

// complete never fails: provider errors become a degraded reply.
func (s *ChatService) complete(ctx context.Context, history []model.Message) Reply {
	if s.llmClient == nil {
		metrics.RecordCompletion("none", ReplyUnconfigured.String(), 0)
		return unconfiguredReply(s.settings.KeyEnvVar)
	}

	provider := s.llmClient.Name()
	ctx, span := s.tracer.Start(ctx, "llm.complete", trace.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", s.settings.Model),
		attribute.Int("llm.context_messages", len(history)),
	))
	defer span.End()

	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}

	messages := make([]llm.ChatMessage, len(history))
	for i, msg := range history {
		messages[i] = llm.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	start := time.Now()
	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		Model:       s.settings.Model,
		Messages:    messages,
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		metrics.RecordCompletion(provider, ReplyDegraded.String(), elapsed)
		s.logger.Warn("completion failed",
			zap.String("provider", provider),
			zap.Error(err),
		)
		return Reply{Status: ReplyDegraded, Cause: err}
	}

	metrics.RecordCompletion(provider, ReplyOK.String(), elapsed)
	metrics.RecordTokens(resp.Model, resp.TokensIn, resp.TokensOut)

	return Reply{Status: ReplyOK, Text: resp.Content}
}
