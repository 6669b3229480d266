package devbackend_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wuwenbin0122/debate-hub/internal/db"
	"github.com/wuwenbin0122/debate-hub/internal/devbackend"
	"github.com/wuwenbin0122/debate-hub/internal/models"
	"github.com/wuwenbin0122/debate-hub/internal/utils"
)

func exerciseStore(t *testing.T, store devbackend.Store) {
	t.Helper()
	ctx := context.Background()

	topic := "topic_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	created, err := store.Create(ctx, topic, models.SidePro)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.AppendMessage(ctx, created.ID, models.RoleBot, "opening"); err != nil {
		t.Fatalf("append bot: %v", err)
	}
	if err := store.AppendMessage(ctx, created.ID, models.RoleUser, "reply"); err != nil {
		t.Fatalf("append user: %v", err)
	}

	detail, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Topic != topic || detail.Side != models.SidePro || len(detail.Message) != 2 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.Message[0].Role != models.RoleBot || detail.Message[1].Message != "reply" {
		t.Fatalf("unexpected history order: %+v", detail.Message)
	}

	conversations, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, c := range conversations {
		if c.ID == created.ID {
			found = true
			if c.MessageCount != 2 {
				t.Fatalf("expected message count 2, got %d", c.MessageCount)
			}
		}
	}
	if !found {
		t.Fatalf("expected created conversation in list")
	}

	if _, err := store.Get(ctx, "does-not-exist"); !errors.Is(err, devbackend.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, devbackend.NewMemoryStore())
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	pg, err := db.NewPostgres(context.Background(), utils.PostgresConfig{DSN: dsn, ConnectTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pg.Close()

	if err := pg.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema failed: %v", err)
	}

	exerciseStore(t, devbackend.NewPostgresStore(pg))
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set; skipping mongo integration test")
	}

	database := "debate_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	store, err := db.NewMongo(context.Background(), utils.MongoConfig{URI: uri, Database: database, ConnectTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}
	defer func() {
		ctx := context.Background()
		store.Database.Drop(ctx)
		store.Close(ctx)
	}()

	if err := store.EnsureCollections(context.Background()); err != nil {
		t.Fatalf("ensure collections failed: %v", err)
	}

	exerciseStore(t, devbackend.NewMongoStore(store))
}
