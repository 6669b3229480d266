package screens

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wuwenbin0122/debate-hub/internal/models"
	"github.com/wuwenbin0122/debate-hub/internal/utils"
)

type ConversationSource interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
}

// ConversationList is the state behind the conversation list screen. It is
// created unloaded and reports Loading until the first Load finishes.
type ConversationList struct {
	source ConversationSource
	logger *zap.Logger

	mu            sync.RWMutex
	conversations []models.Conversation
	loading       bool
}

func NewConversationList(source ConversationSource, logger *zap.Logger) *ConversationList {
	return &ConversationList{
		source:  source,
		logger:  utils.OrNop(logger).Named("conversation_list"),
		loading: true,
	}
}

// Load fetches the conversation set. A failure is logged and leaves the list
// as it was; it is never returned to the caller.
func (l *ConversationList) Load(ctx context.Context) {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	conversations, err := l.source.ListConversations(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false

	if err != nil {
		l.logger.Error("failed to fetch conversations", zap.Error(err))
		return
	}
	l.conversations = conversations
}

func (l *ConversationList) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

func (l *ConversationList) Conversations() []models.Conversation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.Conversation(nil), l.conversations...)
}

// Select returns the loaded conversation with the given id.
func (l *ConversationList) Select(id models.ConversationID) (models.Conversation, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, conversation := range l.conversations {
		if conversation.ID == id {
			return conversation, true
		}
	}
	return models.Conversation{}, false
}
