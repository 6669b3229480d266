package devbackend_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wuwenbin0122/debate-hub/internal/backend"
	"github.com/wuwenbin0122/debate-hub/internal/devbackend"
	"github.com/wuwenbin0122/debate-hub/internal/models"
	"github.com/wuwenbin0122/debate-hub/internal/screens"
	"github.com/wuwenbin0122/debate-hub/internal/utils"
)

func setupTestRouter(t *testing.T, rebuttal devbackend.RebuttalFunc) (*gin.Engine, *devbackend.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := devbackend.NewMemoryStore()
	store.Seed()

	router := gin.New()
	devbackend.NewServer(store, rebuttal, nil).RegisterRoutes(router)
	return router, store
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}

	req, err := http.NewRequest(method, path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, data []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestListOrdersByLastActivity(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/conversations", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var conversations []models.Conversation
	decodeBody(t, rec.Body.Bytes(), &conversations)

	if len(conversations) != 3 {
		t.Fatalf("expected 3 seeded conversations, got %d", len(conversations))
	}
	if conversations[0].Topic != "Dogs are human's best friends" || conversations[0].MessageCount != 2 {
		t.Fatalf("unexpected first conversation: %+v", conversations[0])
	}
	if conversations[2].Side != models.SideUnknown {
		t.Fatalf("expected null side preserved, got %q", conversations[2].Side)
	}
}

func TestGetUnknownConversation(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/conversations/404", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestPostMessageAppendsUserAndBot(t *testing.T) {
	router, store := setupTestRouter(t, devbackend.CannedRebuttal)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/conversations/1/messages", map[string]string{"message": "Cats are cleaner"}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	detail, err := store.Get(context.Background(), "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Message) != 4 {
		t.Fatalf("expected user and bot messages appended, got %d entries", len(detail.Message))
	}
	if detail.Message[2].Role != models.RoleUser || detail.Message[3].Role != models.RoleBot {
		t.Fatalf("unexpected roles: %+v", detail.Message[2:])
	}
	if !strings.Contains(detail.Message[3].Message, "in favour of") {
		t.Fatalf("expected pro bot rebuttal, got %q", detail.Message[3].Message)
	}
}

func TestPostMessageValidation(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/conversations/1/messages", map[string]string{"message": "  "}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/conversations/99/messages", map[string]string{"message": "hi"}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestCreateConversation(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/conversations", map[string]string{"topic": "Tabs over spaces"}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 without a side, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/conversations", map[string]string{"topic": "Tabs over spaces", "side": "con"}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	var created models.Conversation
	decodeBody(t, rec.Body.Bytes(), &created)
	if created.ID != "4" || created.Side != models.SidePro {
		t.Fatalf("expected the bot to take the side opposite the creator, got %+v", created)
	}
}

// A debate started "supporting" a topic shows the creator's messages as pro
// and has the bot argue against it.
func TestCreatedDebateKeepsCreatorStance(t *testing.T) {
	router, _ := setupTestRouter(t, devbackend.CannedRebuttal)
	server := httptest.NewServer(router)
	defer server.Close()

	client := backend.NewClient(utils.BackendConfig{BaseURL: server.URL})
	ctx := context.Background()

	created, err := client.CreateConversation(ctx, "Remote work wins", models.SidePro)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	detail := screens.NewConversationDetail(*created, client, nil)
	detail.Load(ctx)
	if err := detail.SubmitMessage(ctx, "I support this"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if messages := detail.Messages(); len(messages) != 1 || messages[0].Side != models.SidePro {
		t.Fatalf("expected optimistic message on the creator's pro side, got %+v", messages)
	}

	reloaded := screens.NewConversationDetail(*created, client, nil)
	reloaded.Load(ctx)

	messages := reloaded.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected user message and rebuttal, got %+v", messages)
	}
	if messages[0].Side != models.SidePro || messages[0].Content != "I support this" {
		t.Fatalf("expected creator message on the pro side, got %+v", messages[0])
	}
	if messages[1].Side != models.SideCon || !strings.Contains(messages[1].Content, "against") {
		t.Fatalf("expected bot rebuttal on the con side, got %+v", messages[1])
	}
}

// The screens, talking to the reference backend through the real client,
// keep the optimistic message after a successful post.
func TestScreensAgainstReferenceBackend(t *testing.T) {
	router, _ := setupTestRouter(t, devbackend.CannedRebuttal)
	server := httptest.NewServer(router)
	defer server.Close()

	client := backend.NewClient(utils.BackendConfig{BaseURL: server.URL})
	ctx := context.Background()

	list := screens.NewConversationList(client, nil)
	list.Load(ctx)

	conversation, ok := list.Select("2")
	if !ok {
		t.Fatalf("expected conversation 2 in list, got %+v", list.Conversations())
	}

	detail := screens.NewConversationDetail(conversation, client, nil)
	detail.Load(ctx)

	messages := detail.Messages()
	if len(messages) != 1 || messages[0].Side != models.SideCon {
		t.Fatalf("expected bot message on the con side, got %+v", messages)
	}

	if err := detail.SubmitMessage(ctx, "Focus time matters more."); err != nil {
		t.Fatalf("submit: %v", err)
	}

	messages = detail.Messages()
	if len(messages) != 2 || messages[1].Side != models.SidePro {
		t.Fatalf("expected optimistic user message on the pro side, got %+v", messages)
	}

	reloaded := screens.NewConversationDetail(conversation, client, nil)
	reloaded.Load(ctx)
	if got := len(reloaded.Messages()); got != 3 {
		t.Fatalf("expected user message and rebuttal persisted, got %d messages", got)
	}
}
