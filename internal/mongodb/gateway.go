// Package mongodb provides the MongoDB storage gateway and repositories for
// conversations and messages.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
)

const (
	// ConversationsCollection holds conversation documents.
	ConversationsCollection = "conversations"

	// MessagesCollection holds message documents.
	MessagesCollection = "messages"
)

// ErrNotReady is returned when the gateway is used before Initialize succeeded.
var ErrNotReady = errors.New("database not initialized")

// Config holds MongoDB connection configuration.
type Config struct {
	URL            string
	Database       string
	ConnectTimeout time.Duration
}

// Gateway owns the MongoDB client lifecycle.
type Gateway struct {
	cfg    Config
	logger *logger.Logger

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
}

// NewGateway creates a gateway. No connection is made until Initialize.
func NewGateway(cfg Config, log *logger.Logger) *Gateway {
	return &Gateway{cfg: cfg, logger: log}
}

// Initialize connects, verifies the server is reachable and provisions
// indexes. Calling it again after success is a no-op.
func (g *Gateway) Initialize(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db != nil {
		return nil
	}

	opts := options.Client().ApplyURI(g.cfg.URL)
	if g.cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(g.cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(g.cfg.ConnectTimeout)
	}

	g.logger.Info("connecting to MongoDB", zap.String("database", g.cfg.Database))

	client, err := mongo.Connect(opts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(g.cfg.Database)
	g.ensureIndexes(ctx, db)

	g.client = client
	g.db = db

	g.logger.Info("MongoDB connected")
	return nil
}

// indexModels lists the indexes the repositories rely on. Names are left
// to the server default so that an existing index on the same keys, such as
// conversation_id_1_message_order_1, is recognised instead of conflicting.
func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		ConversationsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		},
		MessagesCollection: {
			{Keys: bson.D{{Key: "conversation_id", Value: 1}}},
			{
				Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "message_order", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}
}

// ensureIndexes creates the indexes. Failures are logged and otherwise
// ignored.
func (g *Gateway) ensureIndexes(ctx context.Context, db *mongo.Database) {
	for name, indexes := range indexModels() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			if name == MessagesCollection {
				// Usually a non-unique conversation_id_1_message_order_1 left
				// by an older deployment; it has to be dropped by hand.
				g.logger.Warn("unique message order index is missing; duplicate orders are only prevented within this process",
					zap.String("collection", name),
					zap.Error(err),
				)
				continue
			}
			g.logger.Error("failed to create indexes",
				zap.String("collection", name),
				zap.Error(err),
			)
		}
	}
}

// Close disconnects the client. It is safe to call on a gateway that was
// never initialized, and more than once.
func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client == nil {
		return nil
	}

	g.logger.Info("closing MongoDB connection")
	err := g.client.Disconnect(ctx)
	g.client = nil
	g.db = nil
	return err
}

// Database returns the database handle, or ErrNotReady.
func (g *Gateway) Database() (*mongo.Database, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.db == nil {
		return nil, ErrNotReady
	}
	return g.db, nil
}

// Ping checks that the primary is reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	g.mu.RLock()
	client := g.client
	g.mu.RUnlock()

	if client == nil {
		return ErrNotReady
	}
	return client.Ping(ctx, readpref.Primary())
}

func (g *Gateway) collection(name string) (*mongo.Collection, error) {
	db, err := g.Database()
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}
