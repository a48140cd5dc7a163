// Package storetest provides an in-memory conversation and message store
// for tests.
package storetest

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dshrivastava925/Clothing-Site/internal/model"
)

// Memory implements the service stores over maps. The zero value is not
// usable; call NewMemory.
type Memory struct {
	mu            sync.Mutex
	nextID        int
	conversations map[string]model.Conversation
	messages      []model.Message

	// FailInsertMessagesAt makes the n-th InsertMessages call (1-based) fail.
	FailInsertMessagesAt int
	insertManyCalls      int

	// ListErr, when set, is returned by ListConversations.
	ListErr error

	// MaxOrderHook runs after MaxOrder reads, outside the store lock.
	MaxOrderHook func(conversationID string)
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{conversations: make(map[string]model.Conversation)}
}

func (m *Memory) newID() string {
	m.nextID++
	return fmt.Sprintf("%024x", m.nextID)
}

func validID(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

// CreateConversation implements service.ConversationStore.
func (m *Memory) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv.ID = m.newID()
	m.conversations[conv.ID] = *conv
	return nil
}

// GetConversation implements service.ConversationStore.
func (m *Memory) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.conversations[id]
	if !ok {
		return nil, model.ErrConversationNotFound
	}
	return &conv, nil
}

// ListConversations implements service.ConversationStore.
func (m *Memory) ListConversations(ctx context.Context, userID string, limit int) ([]model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var convs []model.Conversation
	for _, conv := range m.conversations {
		if conv.UserID == userID {
			convs = append(convs, conv)
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		if convs[i].UpdatedAt.Equal(convs[j].UpdatedAt) {
			return convs[i].ID > convs[j].ID
		}
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	if len(convs) > limit {
		convs = convs[:limit]
	}
	return convs, nil
}

// TouchConversation implements service.ConversationStore.
func (m *Memory) TouchConversation(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.conversations[id]
	if !ok {
		return model.ErrConversationNotFound
	}
	conv.UpdatedAt = at
	m.conversations[id] = conv
	return nil
}

// SetUpdatedAt overrides a conversation's updated_at.
func (m *Memory) SetUpdatedAt(id string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.conversations[id]
	conv.UpdatedAt = at
	m.conversations[id] = conv
}

// Conversations returns a snapshot of all conversations.
func (m *Memory) Conversations() []model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	convs := make([]model.Conversation, 0, len(m.conversations))
	for _, conv := range m.conversations {
		convs = append(convs, conv)
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].ID < convs[j].ID })
	return convs
}

// Messages returns a snapshot of all messages in insertion order.
func (m *Memory) Messages() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]model.Message(nil), m.messages...)
}

func (m *Memory) insertLocked(msg *model.Message) error {
	if !validID(msg.ConversationID) {
		return model.ErrInvalidID
	}
	for _, existing := range m.messages {
		if existing.ConversationID == msg.ConversationID && existing.Order == msg.Order {
			return fmt.Errorf("%w: conversation %s order %d", model.ErrDuplicateOrder, msg.ConversationID, msg.Order)
		}
	}
	msg.ID = m.newID()
	m.messages = append(m.messages, *msg)
	return nil
}

// InsertMessage implements service.MessageStore.
func (m *Memory) InsertMessage(ctx context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.insertLocked(msg)
}

// InsertMessages implements service.MessageStore.
func (m *Memory) InsertMessages(ctx context.Context, msgs []*model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertManyCalls++
	if m.FailInsertMessagesAt > 0 && m.insertManyCalls == m.FailInsertMessagesAt {
		return fmt.Errorf("insert many failed on call %d", m.insertManyCalls)
	}
	for _, msg := range msgs {
		if err := m.insertLocked(msg); err != nil {
			return err
		}
	}
	return nil
}

// MaxOrder implements service.MessageStore.
func (m *Memory) MaxOrder(ctx context.Context, conversationID string) (int, error) {
	if !validID(conversationID) {
		return 0, model.ErrInvalidID
	}

	m.mu.Lock()
	last := 0
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && msg.Order > last {
			last = msg.Order
		}
	}
	hook := m.MaxOrderHook
	m.mu.Unlock()

	if hook != nil {
		hook(conversationID)
	}
	return last, nil
}

func (m *Memory) sorted(conversationID string) []model.Message {
	var msgs []model.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			msgs = append(msgs, msg)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Order < msgs[j].Order })
	return msgs
}

// RecentMessages implements service.MessageStore.
func (m *Memory) RecentMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	if !validID(conversationID) {
		return nil, model.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.sorted(conversationID)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// ListMessages implements service.MessageStore.
func (m *Memory) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	if !validID(conversationID) {
		return nil, model.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sorted(conversationID), nil
}
