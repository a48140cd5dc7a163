// Package main is the entry point for the API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dshrivastava925/Clothing-Site/internal/config"
	"github.com/dshrivastava925/Clothing-Site/internal/handler"
	"github.com/dshrivastava925/Clothing-Site/internal/llm"
	"github.com/dshrivastava925/Clothing-Site/internal/mongodb"
	natsclient "github.com/dshrivastava925/Clothing-Site/internal/nats"
	"github.com/dshrivastava925/Clothing-Site/internal/service"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
	"github.com/dshrivastava925/Clothing-Site/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	ctx := context.Background()

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chat-backend", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to MongoDB
	gateway := mongodb.NewGateway(mongodb.Config{
		URL:            cfg.MongoURL,
		Database:       cfg.DatabaseName,
		ConnectTimeout: cfg.MongoConnectTimeout,
	}, log)
	if err := gateway.Initialize(ctx); err != nil {
		log.Error("failed to connect to MongoDB", zap.Error(err))
		os.Exit(1)
	}

	// Event fan-out is optional
	var publisher service.EventPublisher
	if cfg.NATSURL != "" {
		natsClient, err := natsclient.Connect(ctx, natsclient.Config{
			URL:   cfg.NATSURL,
			Token: cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("NATS unavailable, events disabled", zap.Error(err))
		} else {
			defer natsClient.Close()
			pub := natsclient.NewPublisher(natsClient)
			if err := pub.EnsureStream(ctx); err != nil {
				log.Warn("failed to ensure stream, events disabled", zap.Error(err))
			} else {
				publisher = pub
			}
		}
	}

	// Initialize LLM client
	completion := cfg.Completion()
	llmClient := newCompletionClient(completion, log)

	// Initialize services
	conversations := mongodb.NewConversationRepository(gateway)
	messages := mongodb.NewMessageRepository(gateway)

	conversationSvc := service.NewConversationService(conversations, messages, publisher, log)
	chatSvc := service.NewChatService(conversationSvc, messages, service.NewSequencer(messages), llmClient, service.ChatSettings{
		Model:       completion.Model,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		KeyEnvVar:   completion.KeyEnvVar,
		Timeout:     cfg.CompletionTimeout,
	}, publisher, log)
	importSvc := service.NewImportService(conversationSvc, messages, log)

	router := handler.NewRouter(handler.Handlers{
		Health:        handler.NewHealthHandler(gateway),
		Chat:          handler.NewChatHandler(chatSvc, log),
		Conversations: handler.NewConversationHandler(conversationSvc, log),
		Messages:      handler.NewMessageHandler(conversationSvc, log),
		Upload:        handler.NewUploadHandler(importSvc, cfg.UploadMaxBytes, log),
	}, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	if err := gateway.Close(shutdownCtx); err != nil {
		log.Error("failed to close MongoDB connection", zap.Error(err))
	}

	log.Info("server stopped")
}

// newCompletionClient returns nil, so that AI replies are disabled, when no
// key is set or the provider cannot be created.
func newCompletionClient(c config.Completion, log *logger.Logger) llm.Client {
	if c.APIKey == "" {
		log.Warn("no completion API key set, AI replies disabled", zap.String("env", c.KeyEnvVar))
		return nil
	}

	client, err := llm.NewClient(llm.Options{
		Provider: llm.Provider(c.Provider),
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
	})
	if err != nil {
		log.Warn("failed to create LLM client, AI replies disabled", zap.Error(err))
		return nil
	}
	return client
}
