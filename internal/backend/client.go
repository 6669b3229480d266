package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/wuwenbin0122/debate-hub/internal/models"
	"github.com/wuwenbin0122/debate-hub/internal/utils"
)

type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the debate backend. Every call is a single attempt.
type Client struct {
	baseURL string
	client  HTTPDoer
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = utils.OrNop(logger)
	}
}

func NewClient(cfg utils.BackendConfig, opts ...Option) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = utils.DefaultBackendBaseURL
	}

	c := &Client{
		baseURL: base,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListConversations fetches GET /conversations. Ordering is kept as returned.
func (c *Client) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var conversations []models.Conversation
	if err := c.do(ctx, http.MethodGet, "/conversations", nil, &conversations); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	return conversations, nil
}

// GetConversation fetches a conversation with its message history.
func (c *Client) GetConversation(ctx context.Context, id models.ConversationID) (*models.ConversationDetailResponse, error) {
	if id.IsZero() {
		return nil, ErrMissingConversationID
	}

	var detail models.ConversationDetailResponse
	if err := c.do(ctx, http.MethodGet, conversationPath(id), nil, &detail); err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", id, err)
	}
	return &detail, nil
}

// PostMessage sends a user message. The acknowledgement body is ignored.
func (c *Client) PostMessage(ctx context.Context, id models.ConversationID, text string) error {
	if id.IsZero() {
		return ErrMissingConversationID
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	payload := models.MessagePayload{Message: text}
	if err := c.do(ctx, http.MethodPost, conversationPath(id)+"/messages", payload, nil); err != nil {
		return fmt.Errorf("post message to %s: %w", id, err)
	}
	return nil
}

// CreateConversation opens a new debate on topic with the creator's stance.
func (c *Client) CreateConversation(ctx context.Context, topic string, side models.Side) (*models.Conversation, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	var conversation models.Conversation
	payload := models.NewConversationPayload{Topic: topic, Side: side}
	if err := c.do(ctx, http.MethodPost, "/conversations", payload, &conversation); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &conversation, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if in != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("backend request", zap.String("method", method), zap.String("path", path))

	response, err := c.client.Do(request)
	if err != nil {
		return fmt.Errorf("call backend: %w", err)
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return buildAPIError(response.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func conversationPath(id models.ConversationID) string {
	return "/conversations/" + url.PathEscape(id.String())
}
