package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshrivastava925/Clothing-Site/internal/llm"
	"github.com/dshrivastava925/Clothing-Site/internal/llm/llmtest"
	"github.com/dshrivastava925/Clothing-Site/internal/middleware"
	"github.com/dshrivastava925/Clothing-Site/internal/model"
	"github.com/dshrivastava925/Clothing-Site/internal/service"
	"github.com/dshrivastava925/Clothing-Site/internal/storetest"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

type testServer struct {
	store   *storetest.Memory
	handler http.Handler
}

func newTestServer(client llm.Client, db Pinger) *testServer {
	return newTestServerWithLogger(client, db, logger.Nop())
}

func newTestServerWithLogger(client llm.Client, db Pinger, log *logger.Logger) *testServer {
	store := storetest.NewMemory()

	convs := service.NewConversationService(store, store, nil, log)
	chat := service.NewChatService(convs, store, service.NewSequencer(store), client, service.ChatSettings{
		Model:       "test-model",
		Temperature: 0.7,
		MaxTokens:   2048,
		KeyEnvVar:   "GROQ_API_KEY",
	}, nil, log)
	imports := service.NewImportService(convs, store, log)

	return &testServer{
		store: store,
		handler: NewRouter(Handlers{
			Health:        NewHealthHandler(db),
			Chat:          NewChatHandler(chat, log),
			Conversations: NewConversationHandler(convs, log),
			Messages:      NewMessageHandler(convs, log),
			Upload:        NewUploadHandler(imports, 1<<20, log),
		}, log),
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(t *testing.T, field, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/data/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestRoot(t *testing.T) {
	s := newTestServer(nil, fakePinger{})

	rec := s.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["message"] != "Simple AI Chat Backend" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		status   string
		database string
	}{
		{"connected", nil, "healthy", "connected"},
		{"disconnected", errors.New("no server"), "unhealthy", "disconnected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil, fakePinger{err: tt.pingErr})

			rec := s.do(t, http.MethodGet, "/health", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			body := decode[map[string]string](t, rec)
			if body["status"] != tt.status || body["database"] != tt.database {
				t.Errorf("unexpected body %v", body)
			}
		})
	}
}

func TestChat_NewConversation(t *testing.T) {
	client := &llmtest.Client{Reply: "Hi there!"}
	s := newTestServer(client, fakePinger{})

	rec := s.do(t, http.MethodPost, "/api/chat", `{"message":"Hello","user_id":"u1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decode[model.ChatResponse](t, rec)
	if resp.Response != "Hi there!" {
		t.Errorf("expected provider reply, got %q", resp.Response)
	}
	if resp.ConversationID == "" {
		t.Fatal("expected a conversation id")
	}

	rec = s.do(t, http.MethodGet, "/conversations/"+resp.ConversationID+"/messages", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	msgs := decode[[]model.Message](t, rec)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[0].Order != 1 || msgs[1].Role != model.RoleAssistant || msgs[1].Order != 2 {
		t.Errorf("unexpected history %+v", msgs)
	}
}

func TestChat_Unconfigured(t *testing.T) {
	s := newTestServer(nil, fakePinger{})

	rec := s.do(t, http.MethodPost, "/api/chat", `{"message":"Hello","user_id":"u1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[model.ChatResponse](t, rec)
	if resp.Response != "AI service not configured. Please set GROQ_API_KEY." {
		t.Errorf("unexpected reply %q", resp.Response)
	}
}

func TestChat_ProviderFailureStillSucceeds(t *testing.T) {
	s := newTestServer(&llmtest.Client{Err: errors.New("rate limited")}, fakePinger{})

	rec := s.do(t, http.MethodPost, "/api/chat", `{"message":"Hello","user_id":"u1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[model.ChatResponse](t, rec)
	if resp.Response != "Sorry, I encountered an error: rate limited" {
		t.Errorf("unexpected reply %q", resp.Response)
	}
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed body", `{"message":`, http.StatusBadRequest},
		{"missing message", `{"user_id":"u1"}`, http.StatusBadRequest},
		{"missing user", `{"message":"hi"}`, http.StatusBadRequest},
		{"unknown conversation", `{"message":"hi","user_id":"u1","conversation_id":"0000000000000000000000ff"}`, http.StatusNotFound},
		{"invalid conversation id", `{"message":"hi","user_id":"u1","conversation_id":"nope"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&llmtest.Client{Reply: "ok"}, fakePinger{})

			rec := s.do(t, http.MethodPost, "/api/chat", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if body := decode[map[string]string](t, rec); body["detail"] == "" {
				t.Errorf("expected a detail message, got %v", body)
			}
			if n := len(s.store.Messages()); n != 0 {
				t.Errorf("expected no messages written, got %d", n)
			}
		})
	}
}

func TestConversations_CreateAndList(t *testing.T) {
	s := newTestServer(nil, fakePinger{})

	rec := s.do(t, http.MethodPost, "/conversations", `{"user_id":"u1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	created := decode[model.CreateConversationResponse](t, rec)
	if created.ConversationID == "" {
		t.Fatal("expected a conversation id")
	}

	s.do(t, http.MethodPost, "/conversations", `{"user_id":"u2","title":"other"}`)

	rec = s.do(t, http.MethodGet, "/conversations/u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	convs := decode[[]model.Conversation](t, rec)
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation for u1, got %d", len(convs))
	}
	if convs[0].ID != created.ConversationID || convs[0].Title != model.DefaultConversationTitle {
		t.Errorf("unexpected conversation %+v", convs[0])
	}

	rec = s.do(t, http.MethodGet, "/conversations/"+created.ConversationID+"/messages", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty history, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestConversations_ListUnknownUser(t *testing.T) {
	s := newTestServer(nil, fakePinger{})

	rec := s.do(t, http.MethodGet, "/conversations/nobody", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty list, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestConversations_CreateRequiresUser(t *testing.T) {
	s := newTestServer(nil, fakePinger{})

	if rec := s.do(t, http.MethodPost, "/conversations", `{"title":"x"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/conversations", `not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestMessages_IDHandling(t *testing.T) {
	s := newTestServer(nil, fakePinger{})

	rec := s.do(t, http.MethodGet, "/conversations/not-an-id/messages", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/conversations/0000000000000000000000ff/messages", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty list for unknown id, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestUpload(t *testing.T) {
	s := newTestServer(nil, fakePinger{})

	csv := "user_id,role,content\nb,user,hey\na,user,hi\na,assistant,hello\n"
	rec := s.upload(t, "file", "history.csv", csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	result := decode[model.ImportResult](t, rec)
	if result.Message != "CSV processed successfully" || result.RecordsProcessed != 3 || result.ConversationsCreated != 2 {
		t.Errorf("unexpected result %+v", result)
	}

	convs := decode[[]model.Conversation](t, s.do(t, http.MethodGet, "/conversations/a", ""))
	if len(convs) != 1 || convs[0].Title != "Imported Chat - history.csv" {
		t.Fatalf("unexpected imported conversations %+v", convs)
	}
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		filename string
		content  string
	}{
		{"wrong extension", "file", "history.txt", "user_id,role,content\n"},
		{"missing column", "file", "history.csv", "user_id,content\nu,hi\n"},
		{"missing field", "upload", "history.csv", "user_id,role,content\n"},
		{"too large", "file", "history.csv", "user_id,role,content\n" + strings.Repeat("u,user,x\n", 1<<17)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil, fakePinger{})

			rec := s.upload(t, tt.field, tt.filename, tt.content)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if n := len(s.store.Conversations()); n != 0 {
				t.Errorf("expected no conversations, got %d", n)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(nil, fakePinger{})
	s.do(t, http.MethodGet, "/", "")

	rec := s.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("expected request counter in exposition")
	}
}

func TestInternalErrorLoggedWithCorrelationID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := newTestServerWithLogger(nil, fakePinger{}, &logger.Logger{Logger: zap.New(core)})
	s.store.ListErr = errors.New("connection reset")

	req := httptest.NewRequest(http.MethodGet, "/conversations/u1", nil)
	req.Header.Set(middleware.CorrelationIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decode[map[string]string](t, rec); body["detail"] != "failed to list conversations" {
		t.Errorf("unexpected detail %v", body)
	}

	entries := logs.FilterMessage("failed to list conversations").All()
	if len(entries) != 1 {
		t.Fatalf("expected one error log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["correlation_id"]; got != "req-42" {
		t.Errorf("expected correlation_id req-42, got %v", got)
	}
}
