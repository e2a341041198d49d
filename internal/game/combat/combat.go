// Package combat implements the player-versus-monster combat engine for
// Monster Slayer.
package combat

import "fmt"

// MaxHealth is the starting and maximum health of both sides.
const MaxHealth = 100

// Side identifies one of the two combatants.
type Side int

const (
	SidePlayer Side = iota
	SideMonster
)

// String returns "player" or "monster".
func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideMonster:
		return "monster"
	default:
		return "unknown"
	}
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideMonster
	}
	return SidePlayer
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	switch s {
	case SidePlayer, SideMonster:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("combat: invalid side %d", int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player":
		*s = SidePlayer
	case "monster":
		*s = SideMonster
	default:
		return fmt.Errorf("combat: unknown side %q", text)
	}
	return nil
}

// Winner is the outcome of a battle. The zero value means no winner yet.
type Winner int

const (
	WinnerNone Winner = iota
	WinnerPlayer
	WinnerMonster
	WinnerDraw
)

// WinnerFor returns the Winner value declaring s victorious.
func WinnerFor(s Side) Winner {
	if s == SidePlayer {
		return WinnerPlayer
	}
	return WinnerMonster
}

// String returns "none", "player", "monster", or "draw".
func (w Winner) String() string {
	switch w {
	case WinnerNone:
		return "none"
	case WinnerPlayer:
		return "player"
	case WinnerMonster:
		return "monster"
	case WinnerDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// ParseWinner is the inverse of Winner.String.
//
// Postcondition: Returns the matching Winner or an error for unknown labels.
func ParseWinner(s string) (Winner, error) {
	switch s {
	case "none":
		return WinnerNone, nil
	case "player":
		return WinnerPlayer, nil
	case "monster":
		return WinnerMonster, nil
	case "draw":
		return WinnerDraw, nil
	}
	return WinnerNone, fmt.Errorf("combat: unknown winner %q", s)
}

// ActionKind identifies what produced a log entry.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionAttack
	ActionSpecialAttack
	ActionHeal
	ActionSurrender
)

// String returns the label used in battle logs.
func (a ActionKind) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionSpecialAttack:
		return "special attack"
	case ActionHeal:
		return "heal"
	case ActionSurrender:
		return "surrender"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a ActionKind) MarshalText() ([]byte, error) {
	if a == ActionUnknown || a > ActionSurrender {
		return nil, fmt.Errorf("combat: invalid action kind %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *ActionKind) UnmarshalText(text []byte) error {
	for k := ActionAttack; k <= ActionSurrender; k++ {
		if k.String() == string(text) {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("combat: unknown action kind %q", text)
}
