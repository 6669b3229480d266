package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Side is a debate stance. The zero value means the stance is not known.
type Side string

const (
	SideUnknown Side = ""
	SidePro     Side = "pro"
	SideCon     Side = "con"
)

// Role identifies the author of a history entry on the backend.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

var ErrUnknownRole = errors.New("models: unknown message role")

// ParseSide normalises raw into a known side or SideUnknown.
func ParseSide(raw string) Side {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pro":
		return SidePro
	case "con":
		return SideCon
	default:
		return SideUnknown
	}
}

func (s Side) Known() bool {
	return s == SidePro || s == SideCon
}

func (s Side) String() string {
	if !s.Known() {
		return "unknown"
	}
	return string(s)
}

func (s Side) MarshalJSON() ([]byte, error) {
	if !s.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON accepts "pro"/"con" in any case. Null and any other string
// decode to SideUnknown.
func (s *Side) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = SideUnknown
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("side: %w", err)
	}

	*s = ParseSide(raw)
	return nil
}

// ParseRole validates raw as a history role. "assistant" is accepted as an
// alias for the bot.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user":
		return RoleUser, nil
	case "bot", "assistant":
		return RoleBot, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}
