package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshrivastava925/Clothing-Site/internal/model"
	"github.com/dshrivastava925/Clothing-Site/pkg/metrics"
)

// Sequencer assigns message_order values.
//
// NextOrder alone is a read of the current maximum and races with concurrent
// writers. Append serialises read-then-insert per conversation within this
// process; across processes the unique (conversation_id, message_order)
// index rejects the loser with model.ErrDuplicateOrder.
type Sequencer struct {
	messages MessageStore

	mu    sync.Mutex
	locks map[string]*conversationLock
}

type conversationLock struct {
	mu   sync.Mutex
	refs int
}

// NewSequencer creates a sequencer over the message store.
func NewSequencer(messages MessageStore) *Sequencer {
	return &Sequencer{
		messages: messages,
		locks:    make(map[string]*conversationLock),
	}
}

// NextOrder returns one more than the highest stored order, or 1.
func (s *Sequencer) NextOrder(ctx context.Context, conversationID string) (int, error) {
	last, err := s.messages.MaxOrder(ctx, conversationID)
	if err != nil {
		return 0, fmt.Errorf("failed to read message order: %w", err)
	}
	return last + 1, nil
}

// Append sets msg.Order to the next order and inserts msg.
func (s *Sequencer) Append(ctx context.Context, msg *model.Message) error {
	unlock := s.lock(msg.ConversationID)
	defer unlock()

	order, err := s.NextOrder(ctx, msg.ConversationID)
	if err != nil {
		return err
	}
	msg.Order = order

	if err := s.messages.InsertMessage(ctx, msg); err != nil {
		return err
	}

	metrics.MessagesTotal.WithLabelValues(string(msg.Role)).Inc()
	return nil
}

func (s *Sequencer) lock(conversationID string) func() {
	s.mu.Lock()
	l, ok := s.locks[conversationID]
	if !ok {
		l = &conversationLock{}
		s.locks[conversationID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, conversationID)
		}
		s.mu.Unlock()
	}
}

// pending reports how many conversations currently hold a lock entry.
func (s *Sequencer) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
