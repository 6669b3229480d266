package devbackend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wuwenbin0122/debate-hub/internal/db"
	"github.com/wuwenbin0122/debate-hub/internal/models"
)

type PostgresStore struct {
	pg *db.Postgres
}

func NewPostgresStore(pg *db.Postgres) *PostgresStore {
	return &PostgresStore{pg: pg}
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Conversation, error) {
	const query = `
SELECT c.id, c.topic, c.side, c.created_at, COALESCE(c.last_activity, c.created_at),
       (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
FROM conversations c
ORDER BY COALESCE(c.last_activity, c.created_at) DESC, c.id`

	rows, err := s.pg.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres query conversations: %w", err)
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		var (
			id           int64
			topic        string
			side         *string
			createdAt    time.Time
			lastActivity time.Time
			count        int
		)
		if err := rows.Scan(&id, &topic, &side, &createdAt, &lastActivity, &count); err != nil {
			return nil, fmt.Errorf("postgres scan conversation: %w", err)
		}
		conversations = append(conversations, models.Conversation{
			ID:           models.ConversationID(strconv.FormatInt(id, 10)),
			Topic:        topic,
			CreatedAt:    models.NewTimestamp(createdAt.UTC()),
			MessageCount: count,
			LastActivity: models.NewTimestamp(lastActivity.UTC()),
			Side:         sideFromColumn(side),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres iterate conversations: %w", err)
	}

	return conversations, nil
}

func (s *PostgresStore) Get(ctx context.Context, id models.ConversationID) (*models.ConversationDetailResponse, error) {
	key, err := parseSerial(id)
	if err != nil {
		return nil, err
	}

	var (
		topic        string
		side         *string
		createdAt    time.Time
		lastActivity *time.Time
	)
	const conversationQuery = "SELECT topic, side, created_at, last_activity FROM conversations WHERE id = $1"
	if err := s.pg.Pool.QueryRow(ctx, conversationQuery, key).Scan(&topic, &side, &createdAt, &lastActivity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres query conversation: %w", err)
	}

	rows, err := s.pg.Pool.Query(ctx, "SELECT role, content FROM messages WHERE conversation_id = $1 ORDER BY id", key)
	if err != nil {
		return nil, fmt.Errorf("postgres query messages: %w", err)
	}
	history, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.APIMessage, error) {
		var role, content string
		err := row.Scan(&role, &content)
		return models.APIMessage{Role: models.Role(role), Message: content}, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres scan messages: %w", err)
	}

	count := len(history)
	detail := &models.ConversationDetailResponse{
		ConversationID: id,
		Message:        history,
		Side:           sideFromColumn(side),
		Topic:          topic,
		CreatedAt:      models.NewTimestamp(createdAt.UTC()),
		MessageCount:   &count,
	}
	if lastActivity != nil {
		ts := models.NewTimestamp(lastActivity.UTC())
		detail.LastActivity = &ts
	}
	return detail, nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, id models.ConversationID, role models.Role, text string) error {
	key, err := parseSerial(id)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.pg.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "UPDATE conversations SET last_activity = NOW() WHERE id = $1", key)
		if err != nil {
			return fmt.Errorf("postgres touch conversation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx, "INSERT INTO messages (conversation_id, role, content) VALUES ($1, $2, $3)", key, string(role), text); err != nil {
			return fmt.Errorf("postgres insert message: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Create(ctx context.Context, topic string, side models.Side) (*models.Conversation, error) {
	var sideColumn *string
	if side.Known() {
		value := string(side)
		sideColumn = &value
	}

	var (
		id        int64
		createdAt time.Time
	)
	const insert = "INSERT INTO conversations (topic, side, last_activity) VALUES ($1, $2, NOW()) RETURNING id, created_at"
	if err := s.pg.Pool.QueryRow(ctx, insert, topic, sideColumn).Scan(&id, &createdAt); err != nil {
		return nil, fmt.Errorf("postgres insert conversation: %w", err)
	}

	return &models.Conversation{
		ID:           models.ConversationID(strconv.FormatInt(id, 10)),
		Topic:        topic,
		CreatedAt:    models.NewTimestamp(createdAt.UTC()),
		LastActivity: models.NewTimestamp(createdAt.UTC()),
		Side:         side,
	}, nil
}

func parseSerial(id models.ConversationID) (int64, error) {
	key, err := strconv.ParseInt(id.String(), 10, 64)
	if err != nil || key <= 0 {
		return 0, ErrNotFound
	}
	return key, nil
}

func sideFromColumn(value *string) models.Side {
	if value == nil {
		return models.SideUnknown
	}
	return models.ParseSide(*value)
}
