package mongodb

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dshrivastava925/Clothing-Site/internal/model"
)

// MessageRepository stores messages.
type MessageRepository struct {
	gateway *Gateway
}

// NewMessageRepository creates a message repository.
func NewMessageRepository(gateway *Gateway) *MessageRepository {
	return &MessageRepository{gateway: gateway}
}

// InsertMessage inserts msg and sets its ID. A clash on the
// (conversation_id, message_order) index yields model.ErrDuplicateOrder.
func (r *MessageRepository) InsertMessage(ctx context.Context, msg *model.Message) error {
	doc, err := newMessageDoc(msg)
	if err != nil {
		return err
	}

	coll, err := r.gateway.collection(MessagesCollection)
	if err != nil {
		return err
	}

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: conversation %s order %d", model.ErrDuplicateOrder, msg.ConversationID, msg.Order)
		}
		return fmt.Errorf("failed to insert message: %w", err)
	}

	msg.ID = doc.ID.Hex()
	return nil
}

// InsertMessages inserts msgs as one batch.
func (r *MessageRepository) InsertMessages(ctx context.Context, msgs []*model.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	docs := make([]any, 0, len(msgs))
	for _, msg := range msgs {
		doc, err := newMessageDoc(msg)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	coll, err := r.gateway.collection(MessagesCollection)
	if err != nil {
		return err
	}

	if _, err := coll.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", model.ErrDuplicateOrder, err)
		}
		return fmt.Errorf("failed to insert messages: %w", err)
	}

	for i, msg := range msgs {
		msg.ID = docs[i].(messageDoc).ID.Hex()
	}
	return nil
}

// MaxOrder returns the highest message_order of a conversation, or 0 when
// it has no messages.
func (r *MessageRepository) MaxOrder(ctx context.Context, conversationID string) (int, error) {
	oid, err := parseID(conversationID)
	if err != nil {
		return 0, err
	}

	coll, err := r.gateway.collection(MessagesCollection)
	if err != nil {
		return 0, err
	}

	opts := options.FindOne().
		SetSort(bson.D{{Key: "message_order", Value: -1}}).
		SetProjection(bson.D{{Key: "message_order", Value: 1}})

	var doc messageDoc
	if err := coll.FindOne(ctx, bson.M{"conversation_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find last message: %w", err)
	}
	return doc.Order, nil
}

// RecentMessages returns the limit highest-ordered messages of a
// conversation in ascending order.
func (r *MessageRepository) RecentMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	msgs, err := r.find(ctx, conversationID, options.Find().
		SetSort(bson.D{{Key: "message_order", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	slices.Reverse(msgs)
	return msgs, nil
}

// ListMessages returns every message of a conversation in ascending order.
func (r *MessageRepository) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	return r.find(ctx, conversationID, options.Find().
		SetSort(bson.D{{Key: "message_order", Value: 1}}))
}

func (r *MessageRepository) find(ctx context.Context, conversationID string, opts *options.FindOptionsBuilder) ([]model.Message, error) {
	oid, err := parseID(conversationID)
	if err != nil {
		return nil, err
	}

	coll, err := r.gateway.collection(MessagesCollection)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{"conversation_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}

	var docs []messageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	msgs := make([]model.Message, 0, len(docs))
	for _, doc := range docs {
		msgs = append(msgs, doc.toModel())
	}
	return msgs, nil
}
