package debate

import (
	"errors"
	"fmt"

	"github.com/wuwenbin0122/debate-hub/internal/models"
)

var (
	ErrNilDetail           = errors.New("debate: empty conversation detail")
	ErrMissingConversation = errors.New("debate: conversation id is missing")
)

// TransformDetail validates a detail payload and maps its history 1:1 by
// position into UI messages. Every message carries the conversation's
// created_at because the endpoint has no per-message timestamps.
func TransformDetail(detail *models.ConversationDetailResponse) (models.Meta, []models.Message, error) {
	if detail == nil {
		return models.Meta{}, nil, ErrNilDetail
	}
	if detail.ConversationID.IsZero() {
		return models.Meta{}, nil, ErrMissingConversation
	}

	meta := models.Meta{
		ConversationID: detail.ConversationID,
		Topic:          detail.Topic,
		CreatedAt:      detail.CreatedAt,
		Side:           detail.Side,
	}

	messages := make([]models.Message, 0, len(detail.Message))
	for i, entry := range detail.Message {
		role, err := models.ParseRole(string(entry.Role))
		if err != nil {
			return models.Meta{}, nil, fmt.Errorf("debate: history entry %d: %w", i, err)
		}

		messages = append(messages, models.Message{
			ID:             i + 1,
			Content:        entry.Message,
			Side:           ComputeSide(role, detail.Side),
			Timestamp:      detail.CreatedAt,
			ConversationID: detail.ConversationID,
		})
	}

	return meta, messages, nil
}
