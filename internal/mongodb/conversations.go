package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dshrivastava925/Clothing-Site/internal/model"
)

// ConversationRepository stores conversations.
type ConversationRepository struct {
	gateway *Gateway
}

// NewConversationRepository creates a conversation repository.
func NewConversationRepository(gateway *Gateway) *ConversationRepository {
	return &ConversationRepository{gateway: gateway}
}

// CreateConversation inserts conv and sets its ID to the one minted on insert.
func (r *ConversationRepository) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	coll, err := r.gateway.collection(ConversationsCollection)
	if err != nil {
		return err
	}

	res, err := coll.InsertOne(ctx, conversationDoc{
		UserID:    conv.UserID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	conv.ID = oid.Hex()
	return nil
}

// GetConversation fetches a conversation by id.
func (r *ConversationRepository) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, model.ErrConversationNotFound
	}

	coll, err := r.gateway.collection(ConversationsCollection)
	if err != nil {
		return nil, err
	}

	var doc conversationDoc
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}

	conv := doc.toModel()
	return &conv, nil
}

// ListConversations returns up to limit conversations of a user, most
// recently updated first.
func (r *ConversationRepository) ListConversations(ctx context.Context, userID string, limit int) ([]model.Conversation, error) {
	coll, err := r.gateway.collection(ConversationsCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	var docs []conversationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}

	convs := make([]model.Conversation, 0, len(docs))
	for _, doc := range docs {
		convs = append(convs, doc.toModel())
	}
	return convs, nil
}

// TouchConversation sets updated_at.
func (r *ConversationRepository) TouchConversation(ctx context.Context, id string, at time.Time) error {
	oid, err := parseID(id)
	if err != nil {
		return model.ErrConversationNotFound
	}

	coll, err := r.gateway.collection(ConversationsCollection)
	if err != nil {
		return err
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"updated_at": at}})
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrConversationNotFound
	}
	return nil
}
