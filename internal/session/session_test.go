package session

import (
	"errors"
	"testing"
	"time"

	"github.com/wuwenbin0122/debate-hub/internal/models"
	"github.com/wuwenbin0122/debate-hub/internal/screens"
	"github.com/wuwenbin0122/debate-hub/internal/utils"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(utils.SessionConfig{Secret: "test-secret", TTL: time.Hour})
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return manager
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager(utils.SessionConfig{Secret: "  "}); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected secret required, got %v", err)
	}
}

func TestIssueAndResolve(t *testing.T) {
	manager := newTestManager(t)

	issued, token, err := manager.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" || issued.ID == "" {
		t.Fatalf("expected token and session id")
	}

	resolved, err := manager.Resolve(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != issued {
		t.Fatalf("expected the same session instance")
	}

	if _, err := manager.Resolve(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for tampered signature, got %v", err)
	}
}

func TestResolveRejectsOtherSecret(t *testing.T) {
	manager := newTestManager(t)
	other, err := NewManager(utils.SessionConfig{Secret: "other-secret", TTL: time.Hour})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	_, token, err := other.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := manager.Resolve(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestResolveRecreatesEvictedSession(t *testing.T) {
	manager := newTestManager(t)
	issued, token, err := manager.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	if removed := manager.Sweep(); removed != 1 {
		t.Fatalf("expected one session swept, got %d", removed)
	}

	manager.now = func() time.Time { return time.Now().UTC() }
	resolved, err := manager.Resolve(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved == issued || resolved.ID != issued.ID {
		t.Fatalf("expected a fresh session under the same id")
	}
}

func TestShowingScreenDiscardsPrevious(t *testing.T) {
	s := &Session{ID: "s1"}
	list := screens.NewConversationList(nil, nil)
	s.ShowList(list)

	detail := screens.NewConversationDetail(models.Conversation{ID: "1"}, nil, nil)
	s.ShowDetail(detail)

	if s.List() != nil || s.Detail() != detail {
		t.Fatalf("expected detail to replace list")
	}

	s.ShowList(list)
	if s.Detail() != nil || s.List() != list {
		t.Fatalf("expected list to replace detail")
	}
}
