package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/dshrivastava925/Clothing-Site/internal/model"
)

const (
	// StreamName is the name of the chat stream.
	StreamName = "CHAT"

	// SubjectPrefix is the prefix for all chat subjects.
	SubjectPrefix = "chat"
)

// Publisher writes chat events to JetStream.
type Publisher struct {
	client *Client
	js     jetstream.JetStream
}

// ErrDisconnected is returned by publishes while the connection is down.
var ErrDisconnected = errors.New("nats: not connected")

// NewPublisher creates a publisher on the client's JetStream context.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client, js: client.JetStream()}
}

// EnsureStream ensures the chat stream exists.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	if _, err := p.js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Chat messages and conversation events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// MessageSubject returns the subject for a message.
func MessageSubject(conversationID string, role model.Role) string {
	return fmt.Sprintf("%s.%s.msg.%s", SubjectPrefix, conversationID, role)
}

// EventSubject returns the subject for a conversation event.
func EventSubject(conversationID string, eventType model.EventType) string {
	return fmt.Sprintf("%s.%s.event.%s", SubjectPrefix, conversationID, eventType)
}

// PublishMessage publishes a stored message.
func (p *Publisher) PublishMessage(ctx context.Context, msg *model.Message) error {
	return p.publish(ctx, MessageSubject(msg.ConversationID, msg.Role), msg)
}

// PublishConversation publishes a conversation lifecycle event.
func (p *Publisher) PublishConversation(ctx context.Context, event *model.ConversationEvent) error {
	return p.publish(ctx, EventSubject(event.ConversationID, event.Type), event)
}

func (p *Publisher) publish(ctx context.Context, subject string, v any) error {
	// Fail fast rather than waiting out the publish timeout on every turn.
	if !p.client.IsConnected() {
		return fmt.Errorf("failed to publish %s: %w", subject, ErrDisconnected)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", subject, err)
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}
