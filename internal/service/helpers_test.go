package service

import (
	"context"
	"sync"

	"github.com/dshrivastava925/Clothing-Site/internal/llm"
	"github.com/dshrivastava925/Clothing-Site/internal/model"
	"github.com/dshrivastava925/Clothing-Site/internal/storetest"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
)

type recordingPublisher struct {
	mu            sync.Mutex
	messages      []model.Message
	conversations []model.ConversationEvent
	err           error
}

func (p *recordingPublisher) PublishMessage(ctx context.Context, msg *model.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, *msg)
	return p.err
}

func (p *recordingPublisher) PublishConversation(ctx context.Context, event *model.ConversationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conversations = append(p.conversations, *event)
	return p.err
}

type fixture struct {
	store         *storetest.Memory
	publisher     *recordingPublisher
	conversations *ConversationService
	sequencer     *Sequencer
	chat          *ChatService
	imports       *ImportService
}

func newFixture(client llm.Client) *fixture {
	store := storetest.NewMemory()
	pub := &recordingPublisher{}
	log := logger.Nop()

	convs := NewConversationService(store, store, pub, log)
	seq := NewSequencer(store)
	chat := NewChatService(convs, store, seq, client, ChatSettings{
		Model:       "test-model",
		Temperature: 0.7,
		MaxTokens:   2048,
		KeyEnvVar:   "GROQ_API_KEY",
	}, pub, log)

	return &fixture{
		store:         store,
		publisher:     pub,
		conversations: convs,
		sequencer:     seq,
		chat:          chat,
		imports:       NewImportService(convs, store, log),
	}
}

func messagesOf(store *storetest.Memory, conversationID string) []model.Message {
	var out []model.Message
	for _, msg := range store.Messages() {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out
}
