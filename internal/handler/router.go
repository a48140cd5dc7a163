package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshrivastava925/Clothing-Site/internal/middleware"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
)

// Handlers groups the endpoint handlers served by the router.
type Handlers struct {
	Health        *HealthHandler
	Chat          *ChatHandler
	Conversations *ConversationHandler
	Messages      *MessageHandler
	Upload        *UploadHandler
}

// NewRouter wires the HTTP surface.
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	r.Get("/", h.Health.Root)
	r.Get("/health", h.Health.Health)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/chat", h.Chat.Send)

	// {id} is a user id on the list route and a conversation id on the
	// messages route.
	r.Post("/conversations", h.Conversations.Create)
	r.Get("/conversations/{id}", h.Conversations.ListByUser)
	r.Get("/conversations/{id}/messages", h.Messages.List)

	r.Post("/data/upload", h.Upload.Upload)

	return r
}
