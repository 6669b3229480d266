package debate_test

import (
	"testing"

	"github.com/wuwenbin0122/debate-hub/internal/debate"
	"github.com/wuwenbin0122/debate-hub/internal/models"
)

func TestComputeSide(t *testing.T) {
	cases := []struct {
		role         models.Role
		conversation models.Side
		want         models.Side
	}{
		{models.RoleBot, models.SidePro, models.SidePro},
		{models.RoleUser, models.SidePro, models.SideCon},
		{models.RoleBot, models.SideCon, models.SideCon},
		{models.RoleUser, models.SideCon, models.SidePro},
		{models.RoleBot, models.SideUnknown, models.SidePro},
		{models.RoleUser, models.SideUnknown, models.SideCon},
	}

	for _, tc := range cases {
		got := debate.ComputeSide(tc.role, tc.conversation)
		if got != tc.want {
			t.Fatalf("ComputeSide(%s, %s): expected %s, got %s", tc.role, tc.conversation, tc.want, got)
		}
	}
}

func TestComputeSideUserOpposesBot(t *testing.T) {
	for _, side := range []models.Side{models.SidePro, models.SideCon, models.SideUnknown} {
		bot := debate.ComputeSide(models.RoleBot, side)
		user := debate.ComputeSide(models.RoleUser, side)

		if !bot.Known() || !user.Known() {
			t.Fatalf("expected known sides for %q, got bot=%q user=%q", side, bot, user)
		}
		if debate.Opposite(bot) != user {
			t.Fatalf("expected user side to oppose bot side for %q, got bot=%s user=%s", side, bot, user)
		}
	}
}

func TestOppositeUnknown(t *testing.T) {
	if got := debate.Opposite(models.SideUnknown); got != models.SideUnknown {
		t.Fatalf("expected unknown side to stay unknown, got %q", got)
	}
}
