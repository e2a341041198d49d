// Package history records concluded battles.
package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/monsterslayer/internal/game/combat"
)

var (
	// ErrBattleInProgress is returned when archiving a battle without a winner.
	ErrBattleInProgress = errors.New("history: battle has not concluded")
	// ErrBattleNotFound is returned when a battle lookup yields no results.
	ErrBattleNotFound = errors.New("history: battle not found")
)

// Battle is the archived record of one concluded battle.
type Battle struct {
	ID            uuid.UUID
	Monster       string
	Winner        combat.Winner
	Rounds        int
	PlayerHealth  int
	MonsterHealth int
	// Log is ordered newest first, as produced by the engine.
	Log     []combat.LogEntry
	EndedAt time.Time
}

// FromSnapshot builds a Battle record for a concluded snapshot with a fresh ID.
// EndedAt is left zero for the archive to stamp.
//
// Postcondition: Returns ErrBattleInProgress if snap has no winner.
func FromSnapshot(monster string, snap combat.Snapshot) (Battle, error) {
	if !snap.Concluded() {
		return Battle{}, ErrBattleInProgress
	}
	log := make([]combat.LogEntry, len(snap.Log))
	copy(log, snap.Log)
	return Battle{
		ID:            uuid.New(),
		Monster:       monster,
		Winner:        snap.Winner,
		Rounds:        snap.Round,
		PlayerHealth:  snap.PlayerHealth,
		MonsterHealth: snap.MonsterHealth,
		Log:           log,
	}, nil
}

// Archive stores concluded battles. Implementations must be safe for concurrent use.
type Archive interface {
	// Save stores b and returns it with EndedAt set.
	Save(ctx context.Context, b Battle) (Battle, error)
	// Recent returns up to limit battles, most recently ended first.
	Recent(ctx context.Context, limit int) ([]Battle, error)
}

// MemoryArchive is an in-process Archive used when no database is configured.
type MemoryArchive struct {
	mu      sync.Mutex
	now     func() time.Time
	battles []Battle
}

// NewMemoryArchive creates an empty MemoryArchive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{now: time.Now}
}

// Save implements Archive.
func (a *MemoryArchive) Save(_ context.Context, b Battle) (Battle, error) {
	if b.Winner == combat.WinnerNone {
		return Battle{}, ErrBattleInProgress
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if b.EndedAt.IsZero() {
		b.EndedAt = a.now()
	}
	a.battles = append(a.battles, b)
	return b, nil
}

// Recent implements Archive.
func (a *MemoryArchive) Recent(_ context.Context, limit int) ([]Battle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Battle, 0, min(limit, len(a.battles)))
	for i := len(a.battles) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.battles[i])
	}
	return out, nil
}
