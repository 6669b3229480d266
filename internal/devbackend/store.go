package devbackend

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/wuwenbin0122/debate-hub/internal/models"
)

var ErrNotFound = errors.New("devbackend: conversation not found")

// Store persists conversations for the reference backend.
type Store interface {
	List(ctx context.Context) ([]models.Conversation, error)
	Get(ctx context.Context, id models.ConversationID) (*models.ConversationDetailResponse, error)
	AppendMessage(ctx context.Context, id models.ConversationID, role models.Role, text string) error
	Create(ctx context.Context, topic string, side models.Side) (*models.Conversation, error)
}

type memoryConversation struct {
	id           models.ConversationID
	topic        string
	side         models.Side
	createdAt    time.Time
	lastActivity time.Time
	history      []models.APIMessage
}

func (c *memoryConversation) summary() models.Conversation {
	return models.Conversation{
		ID:           c.id,
		Topic:        c.topic,
		CreatedAt:    models.NewTimestamp(c.createdAt),
		MessageCount: len(c.history),
		LastActivity: models.NewTimestamp(c.lastActivity),
		Side:         c.side,
	}
}

type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[models.ConversationID]*memoryConversation
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		byID:   make(map[models.ConversationID]*memoryConversation),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns conversations with the most recent activity first.
func (s *MemoryStore) List(ctx context.Context) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversations := make([]models.Conversation, 0, len(s.byID))
	for _, c := range s.byID {
		conversations = append(conversations, c.summary())
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		if conversations[i].LastActivity.Equal(conversations[j].LastActivity.Time) {
			return conversations[i].ID < conversations[j].ID
		}
		return conversations[i].LastActivity.After(conversations[j].LastActivity.Time)
	})
	return conversations, nil
}

func (s *MemoryStore) Get(ctx context.Context, id models.ConversationID) (*models.ConversationDetailResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	count := len(c.history)
	lastActivity := models.NewTimestamp(c.lastActivity)
	return &models.ConversationDetailResponse{
		ConversationID: c.id,
		Message:        append([]models.APIMessage{}, c.history...),
		Side:           c.side,
		Topic:          c.topic,
		CreatedAt:      models.NewTimestamp(c.createdAt),
		LastActivity:   &lastActivity,
		MessageCount:   &count,
	}, nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, id models.ConversationID, role models.Role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	c.history = append(c.history, models.APIMessage{Role: role, Message: text})
	c.lastActivity = s.now()
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, topic string, side models.Side) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := s.insertLocked(topic, side, now, now)
	summary := c.summary()
	return &summary, nil
}

func (s *MemoryStore) insertLocked(topic string, side models.Side, createdAt, lastActivity time.Time, history ...models.APIMessage) *memoryConversation {
	c := &memoryConversation{
		id:           models.ConversationID(strconv.FormatInt(s.nextID, 10)),
		topic:        topic,
		side:         side,
		createdAt:    createdAt,
		lastActivity: lastActivity,
		history:      history,
	}
	s.nextID++
	s.byID[c.id] = c
	return c
}

// Seed loads a few sample debates for local development.
func (s *MemoryStore) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := func(value string) time.Time {
		t, _ := time.Parse(time.RFC3339, value)
		return t
	}

	s.insertLocked("Dogs are human's best friends", models.SidePro,
		at("2024-01-15T10:30:00Z"), at("2024-01-15T14:45:00Z"),
		models.APIMessage{Role: models.RoleBot, Message: "Dogs have lived alongside people for thousands of years."},
		models.APIMessage{Role: models.RoleUser, Message: "Cats have too, and they ask for far less."},
	)
	s.insertLocked("Remote work is more productive than office work", models.SideCon,
		at("2024-01-14T09:15:00Z"), at("2024-01-14T16:20:00Z"),
		models.APIMessage{Role: models.RoleBot, Message: "Offices make collaboration effortless."},
	)
	s.insertLocked("Social media has improved human connection", models.SideUnknown,
		at("2024-01-13T11:00:00Z"), at("2024-01-13T18:30:00Z"),
	)
}
