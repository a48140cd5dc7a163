package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/dshrivastava925/Clothing-Site/internal/model"
	"github.com/dshrivastava925/Clothing-Site/internal/storetest"
)

const convID = "0000000000000000000000aa"

func TestNextOrder_EmptyConversation(t *testing.T) {
	seq := NewSequencer(storetest.NewMemory())

	order, err := seq.NextOrder(context.Background(), convID)
	if err != nil {
		t.Fatal(err)
	}
	if order != 1 {
		t.Errorf("expected 1, got %d", order)
	}
}

func TestNextOrder_GapTolerant(t *testing.T) {
	store := storetest.NewMemory()
	ctx := context.Background()
	for _, o := range []int{1, 2, 7} {
		if err := store.InsertMessage(ctx, &model.Message{ConversationID: convID, Order: o}); err != nil {
			t.Fatal(err)
		}
	}

	order, err := NewSequencer(store).NextOrder(ctx, convID)
	if err != nil {
		t.Fatal(err)
	}
	if order != 8 {
		t.Errorf("expected 8, got %d", order)
	}
}

func TestNextOrder_InvalidID(t *testing.T) {
	_, err := NewSequencer(storetest.NewMemory()).NextOrder(context.Background(), "nope")
	if !errors.Is(err, model.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestNextOrder_IsNotAtomicOnItsOwn(t *testing.T) {
	store := storetest.NewMemory()
	seq := NewSequencer(store)
	ctx := context.Background()

	a, _ := seq.NextOrder(ctx, convID)
	b, _ := seq.NextOrder(ctx, convID)
	if a != b {
		t.Fatalf("expected both readers to see %d, got %d", a, b)
	}

	if err := store.InsertMessage(ctx, &model.Message{ConversationID: convID, Order: a}); err != nil {
		t.Fatal(err)
	}
	err := store.InsertMessage(ctx, &model.Message{ConversationID: convID, Order: b})
	if !errors.Is(err, model.ErrDuplicateOrder) {
		t.Fatalf("expected ErrDuplicateOrder for the losing writer, got %v", err)
	}
}

func TestAppend_ConcurrentWritersGetDistinctOrders(t *testing.T) {
	store := storetest.NewMemory()
	seq := NewSequencer(store)
	ctx := context.Background()

	const writers = 32
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- seq.Append(ctx, &model.Message{ConversationID: convID, Role: model.RoleUser})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	var orders []int
	for _, msg := range store.Messages() {
		orders = append(orders, msg.Order)
	}
	sort.Ints(orders)
	if len(orders) != writers {
		t.Fatalf("expected %d messages, got %d", writers, len(orders))
	}
	for i, o := range orders {
		if o != i+1 {
			t.Fatalf("expected orders 1..%d, got %v", writers, orders)
		}
	}

	if n := seq.pending(); n != 0 {
		t.Errorf("expected lock table to drain, %d entries left", n)
	}
}

func TestAppend_IndependentConversationsDoNotBlock(t *testing.T) {
	store := storetest.NewMemory()
	seq := NewSequencer(store)
	ctx := context.Background()
	other := "0000000000000000000000bb"

	entered := make(chan struct{})
	release := make(chan struct{})
	store.MaxOrderHook = func(id string) {
		if id == convID {
			close(entered)
			<-release
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- seq.Append(ctx, &model.Message{ConversationID: convID})
	}()
	<-entered

	if err := seq.Append(ctx, &model.Message{ConversationID: other}); err != nil {
		t.Fatalf("append to other conversation: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}
