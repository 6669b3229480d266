package devbackend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wuwenbin0122/debate-hub/internal/db"
	"github.com/wuwenbin0122/debate-hub/internal/models"
)

// MongoStore keeps each conversation as one document with its history
// embedded. Conversation ids are ObjectID hex strings.
type MongoStore struct {
	mongo *db.Mongo
}

func NewMongoStore(m *db.Mongo) *MongoStore {
	return &MongoStore{mongo: m}
}

type messageDoc struct {
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

type conversationDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Topic        string             `bson:"topic"`
	Side         string             `bson:"side,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	LastActivity time.Time          `bson:"last_activity"`
	Messages     []messageDoc       `bson:"messages"`
	MessageCount int                `bson:"message_count,omitempty"`
}

func (d conversationDoc) summary(count int) models.Conversation {
	return models.Conversation{
		ID:           models.ConversationID(d.ID.Hex()),
		Topic:        d.Topic,
		CreatedAt:    models.NewTimestamp(d.CreatedAt.UTC()),
		MessageCount: count,
		LastActivity: models.NewTimestamp(d.LastActivity.UTC()),
		Side:         models.ParseSide(d.Side),
	}
}

func (s *MongoStore) List(ctx context.Context) ([]models.Conversation, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "last_activity", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "topic", Value: 1},
			{Key: "side", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "last_activity", Value: 1},
			{Key: "message_count", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$messages", bson.A{}}}}}}},
		}}},
	}

	cursor, err := s.mongo.Conversations.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongo aggregate conversations: %w", err)
	}
	defer cursor.Close(ctx)

	conversations := []models.Conversation{}
	for cursor.Next(ctx) {
		var doc conversationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo decode conversation: %w", err)
		}
		conversations = append(conversations, doc.summary(doc.MessageCount))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo iterate conversations: %w", err)
	}

	return conversations, nil
}

func (s *MongoStore) Get(ctx context.Context, id models.ConversationID) (*models.ConversationDetailResponse, error) {
	objectID, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return nil, ErrNotFound
	}

	var doc conversationDoc
	if err := s.mongo.Conversations.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo query conversation: %w", err)
	}

	history := make([]models.APIMessage, 0, len(doc.Messages))
	for _, m := range doc.Messages {
		history = append(history, models.APIMessage{Role: models.Role(m.Role), Message: m.Content})
	}

	count := len(history)
	lastActivity := models.NewTimestamp(doc.LastActivity.UTC())
	return &models.ConversationDetailResponse{
		ConversationID: id,
		Message:        history,
		Side:           models.ParseSide(doc.Side),
		Topic:          doc.Topic,
		CreatedAt:      models.NewTimestamp(doc.CreatedAt.UTC()),
		LastActivity:   &lastActivity,
		MessageCount:   &count,
	}, nil
}

func (s *MongoStore) AppendMessage(ctx context.Context, id models.ConversationID, role models.Role, text string) error {
	objectID, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return ErrNotFound
	}

	now := time.Now().UTC()
	update := bson.M{
		"$push": bson.M{"messages": messageDoc{Role: string(role), Content: text, CreatedAt: now}},
		"$set":  bson.M{"last_activity": now},
	}

	result, err := s.mongo.Conversations.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("mongo append message: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, topic string, side models.Side) (*models.Conversation, error) {
	now := time.Now().UTC()
	doc := conversationDoc{
		Topic:        topic,
		CreatedAt:    now,
		LastActivity: now,
		Messages:     []messageDoc{},
	}
	if side.Known() {
		doc.Side = string(side)
	}

	result, err := s.mongo.Conversations.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("mongo insert conversation: %w", err)
	}

	objectID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("mongo insert conversation: unexpected id type %T", result.InsertedID)
	}
	doc.ID = objectID

	summary := doc.summary(0)
	return &summary, nil
}
