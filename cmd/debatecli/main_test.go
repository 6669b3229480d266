package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/wuwenbin0122/debate-hub/internal/compose"
	"github.com/wuwenbin0122/debate-hub/internal/models"
)

type stubBackend struct {
	created []models.NewConversationPayload
}

func (s *stubBackend) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	return nil, nil
}

func (s *stubBackend) GetConversation(ctx context.Context, id models.ConversationID) (*models.ConversationDetailResponse, error) {
	return nil, errors.New("not found")
}

func (s *stubBackend) PostMessage(ctx context.Context, id models.ConversationID, text string) error {
	return nil
}

func (s *stubBackend) CreateConversation(ctx context.Context, topic string, side models.Side) (*models.Conversation, error) {
	s.created = append(s.created, models.NewConversationPayload{Topic: topic, Side: side})
	return &models.Conversation{ID: "7", Topic: topic, Side: side}, nil
}

func TestRunRejectsBadArguments(t *testing.T) {
	cases := [][]string{
		nil,
		{"bogus"},
		{"show"},
		{"send", "1"},
		{"new", "pro"},
	}

	for _, args := range cases {
		if err := run(context.Background(), &stubBackend{}, nil, args); !errors.Is(err, errUsage) {
			t.Fatalf("args %v: expected usage error, got %v", args, err)
		}
	}
}

func TestRunNewValidatesBeforeCalling(t *testing.T) {
	backend := &stubBackend{}

	err := run(context.Background(), backend, nil, []string{"new", "maybe", "Pineapple belongs on pizza"})
	if !errors.Is(err, compose.ErrSideRequired) {
		t.Fatalf("expected side required, got %v", err)
	}

	err = run(context.Background(), backend, nil, []string{"new", "pro", strings.Repeat("x", 201)})
	if !errors.Is(err, compose.ErrTooLong) {
		t.Fatalf("expected too long, got %v", err)
	}

	if len(backend.created) != 0 {
		t.Fatalf("expected no backend calls, got %+v", backend.created)
	}
}

func TestRunSendRejectsBlankText(t *testing.T) {
	if err := run(context.Background(), &stubBackend{}, nil, []string{"send", "1", "   "}); !errors.Is(err, compose.ErrEmpty) {
		t.Fatalf("expected empty error, got %v", err)
	}
}

func TestPrintDetailLabelsSpeakers(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	conversation := models.Conversation{ID: "1", Topic: "Cats vs Dogs", Side: models.SideCon}
	messages := []models.Message{
		{ID: 1, Content: "Dogs are loyal", Side: models.SideCon},
		{ID: 2, Content: "Cats are independent", Side: models.SidePro},
	}

	var buf bytes.Buffer
	printDetail(&buf, conversation, messages)
	out := buf.String()

	for _, want := range []string{"CON  Cats vs Dogs", "2 messages • Active debate", "CON Bot", "PRO You", "    Cats are independent"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintListEmptyState(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	printList(&buf, nil)
	if !strings.Contains(buf.String(), "No conversations yet") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
