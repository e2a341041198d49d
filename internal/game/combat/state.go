package combat

// LogEntry records one action and the clamped health of both sides right
// after the action's health change. Entries are never mutated after creation.
type LogEntry struct {
	Actor Side       `json:"actor"`
	Kind  ActionKind `json:"kind"`
	// Magnitude is the damage dealt or health restored. Zero for surrender.
	Magnitude     int `json:"magnitude,omitempty"`
	PlayerHealth  int `json:"player_health"`
	MonsterHealth int `json:"monster_health"`
}

// HasMagnitude reports whether the entry carries a damage or heal value.
func (e LogEntry) HasMagnitude() bool {
	return e.Kind != ActionSurrender
}

// State is the complete mutable state of one battle.
//
// Invariant: Round >= 0; Log is ordered newest first.
type State struct {
	// PlayerHealth and MonsterHealth may be negative; they are clamped only for display.
	PlayerHealth  int
	MonsterHealth int
	Round         int
	Winner        Winner
	Log           []LogEntry
}

func newState() State {
	return State{
		PlayerHealth:  MaxHealth,
		MonsterHealth: MaxHealth,
	}
}

// Concluded reports whether a winner has been declared.
func (s State) Concluded() bool { return s.Winner != WinnerNone }

// Health returns the raw health of side.
func (s State) Health(side Side) int {
	if side == SidePlayer {
		return s.PlayerHealth
	}
	return s.MonsterHealth
}

// Snapshot is an immutable copy of a battle's state together with its
// derived views. It is what observers receive.
type Snapshot struct {
	State
	CanUseSpecial bool
	PlayerBar     int
	MonsterBar    int
}

// clampHealth floors h at zero for display and logging.
func clampHealth(h int) int {
	return max(0, h)
}
