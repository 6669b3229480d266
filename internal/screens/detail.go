package screens

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wuwenbin0122/debate-hub/internal/debate"
	"github.com/wuwenbin0122/debate-hub/internal/models"
	"github.com/wuwenbin0122/debate-hub/internal/utils"
)

type MessageBackend interface {
	GetConversation(ctx context.Context, id models.ConversationID) (*models.ConversationDetailResponse, error)
	PostMessage(ctx context.Context, id models.ConversationID, text string) error
}

type EventKind string

const (
	EventLoaded   EventKind = "loaded"
	EventAppended EventKind = "appended"
	EventRemoved  EventKind = "removed"
)

// Event is a change to a detail screen. Messages is always the full list
// after the change, so a subscriber that missed events can resync from any
// single one.
type Event struct {
	Kind     EventKind        `json:"kind"`
	Message  *models.Message  `json:"message,omitempty"`
	Messages []models.Message `json:"messages"`
}

// ConversationDetail is the state behind one conversation's detail screen.
type ConversationDetail struct {
	conversation models.Conversation
	backend      MessageBackend
	logger       *zap.Logger
	now          func() time.Time

	mu          sync.Mutex
	messages    []models.Message
	meta        *models.Meta
	loading     bool
	subscribers map[int]chan Event
	nextSub     int
}

func NewConversationDetail(conversation models.Conversation, backend MessageBackend, logger *zap.Logger) *ConversationDetail {
	return &ConversationDetail{
		conversation: conversation,
		backend:      backend,
		logger: utils.OrNop(logger).Named("conversation_detail").
			With(zap.String("conversation_id", conversation.ID.String())),
		now:         func() time.Time { return time.Now().UTC() },
		loading:     true,
		subscribers: make(map[int]chan Event),
	}
}

// Conversation returns the conversation this screen shows. When it was opened
// without a list entry the topic comes from the loaded detail.
func (d *ConversationDetail) Conversation() models.Conversation {
	d.mu.Lock()
	defer d.mu.Unlock()

	conversation := d.conversation
	if d.meta != nil {
		if conversation.Topic == "" {
			conversation.Topic = d.meta.Topic
		}
		if !conversation.Side.Known() {
			conversation.Side = d.meta.Side
		}
		if conversation.CreatedAt.IsZero() {
			conversation.CreatedAt = d.meta.CreatedAt
		}
	}
	return conversation
}

// Load fetches and maps the conversation history. Failures are logged and
// leave the message list untouched.
func (d *ConversationDetail) Load(ctx context.Context) {
	d.mu.Lock()
	d.loading = true
	d.mu.Unlock()

	meta, messages, err := d.fetch(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false

	if err != nil {
		d.logger.Error("failed to fetch messages", zap.Error(err))
		return
	}

	d.meta = &meta
	d.messages = messages
	d.publishLocked(Event{Kind: EventLoaded})
}

func (d *ConversationDetail) fetch(ctx context.Context) (models.Meta, []models.Message, error) {
	detail, err := d.backend.GetConversation(ctx, d.conversation.ID)
	if err != nil {
		return models.Meta{}, nil, err
	}

	meta, messages, err := debate.TransformDetail(detail)
	if err != nil {
		return models.Meta{}, nil, fmt.Errorf("map conversation %s: %w", d.conversation.ID, err)
	}
	return meta, messages, nil
}

func (d *ConversationDetail) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

func (d *ConversationDetail) Messages() []models.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Message(nil), d.messages...)
}

func (d *ConversationDetail) Meta() (models.Meta, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.meta == nil {
		return models.Meta{}, false
	}
	return *d.meta, true
}

// SubmitMessage appends a local message right away, then posts it. If the
// post fails the local message is removed again and the error is logged and
// returned. Blank text is ignored.
//
// The local id is the list length at call time, so two submissions in flight
// at once can receive the same id.
func (d *ConversationDetail) SubmitMessage(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	optimistic := d.appendOptimistic(trimmed)

	if err := d.backend.PostMessage(ctx, d.conversation.ID, trimmed); err != nil {
		d.logger.Error("failed to send message", zap.Int("message_id", optimistic.ID), zap.Error(err))
		d.rollback(optimistic)
		return err
	}

	return nil
}

func (d *ConversationDetail) appendOptimistic(content string) models.Message {
	d.mu.Lock()
	defer d.mu.Unlock()

	side := models.SideUnknown
	timestamp := models.NewTimestamp(d.now())
	conversationID := d.conversation.ID
	if d.meta != nil {
		side = d.meta.Side
		if !d.meta.CreatedAt.IsZero() {
			timestamp = d.meta.CreatedAt
		}
		if !d.meta.ConversationID.IsZero() {
			conversationID = d.meta.ConversationID
		}
	}

	message := models.Message{
		ID:             len(d.messages) + 1,
		Content:        content,
		Side:           debate.ComputeSide(models.RoleUser, side),
		Timestamp:      timestamp,
		ConversationID: conversationID,
	}

	d.messages = append(d.messages, message)
	d.publishLocked(Event{Kind: EventAppended, Message: &message})

	return message
}

func (d *ConversationDetail) rollback(optimistic models.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.messages[:0:0]
	for _, message := range d.messages {
		if message.ID != optimistic.ID {
			kept = append(kept, message)
		}
	}
	d.messages = kept
	d.publishLocked(Event{Kind: EventRemoved, Message: &optimistic})
}

// Subscribe registers for change events. Delivery never blocks the screen;
// events that do not fit in the buffer are dropped. The returned func
// unsubscribes and closes the channel.
func (d *ConversationDetail) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}

	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	ch := make(chan Event, buffer)
	d.subscribers[id] = ch
	d.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subscribers, id)
			d.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

func (d *ConversationDetail) publishLocked(event Event) {
	event.Messages = append([]models.Message{}, d.messages...)
	for _, ch := range d.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
