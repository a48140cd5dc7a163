package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dshrivastava925/Clothing-Site/internal/model"
)

type conversationDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    string        `bson:"user_id"`
	Title     string        `bson:"title"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

type messageDoc struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	ConversationID bson.ObjectID `bson:"conversation_id"`
	Role           string        `bson:"role"`
	Content        string        `bson:"content"`
	CreatedAt      time.Time     `bson:"created_at"`
	Order          int           `bson:"message_order"`
}

func (d conversationDoc) toModel() model.Conversation {
	return model.Conversation{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d messageDoc) toModel() model.Message {
	return model.Message{
		ID:             d.ID.Hex(),
		ConversationID: d.ConversationID.Hex(),
		Role:           model.Role(d.Role),
		Content:        d.Content,
		CreatedAt:      d.CreatedAt,
		Order:          d.Order,
	}
}

func newMessageDoc(msg *model.Message) (messageDoc, error) {
	convID, err := parseID(msg.ConversationID)
	if err != nil {
		return messageDoc{}, err
	}
	return messageDoc{
		ID:             bson.NewObjectID(),
		ConversationID: convID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
		Order:          msg.Order,
	}, nil
}

// parseID converts a hex string into an ObjectID.
func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, model.ErrInvalidID
	}
	return oid, nil
}
