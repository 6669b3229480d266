package debate

import "github.com/wuwenbin0122/debate-hub/internal/models"

// Opposite returns the other stance. An unknown side stays unknown.
func Opposite(side models.Side) models.Side {
	switch side {
	case models.SidePro:
		return models.SideCon
	case models.SideCon:
		return models.SidePro
	default:
		return models.SideUnknown
	}
}

// ComputeSide derives the displayed stance of a history entry. The bot holds
// the conversation's recorded stance and the user argues the opposite one.
// Without a recorded stance the bot is pro and the user is con.
func ComputeSide(role models.Role, conversationSide models.Side) models.Side {
	if conversationSide.Known() {
		if role == models.RoleBot {
			return conversationSide
		}
		return Opposite(conversationSide)
	}

	if role == models.RoleBot {
		return models.SidePro
	}
	return models.SideCon
}
