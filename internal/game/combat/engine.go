package combat

import (
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/monsterslayer/internal/game/dice"
)

// Draw ranges, half-open [Min, Max).
var (
	playerAttackDamage  = dice.Range{Min: 5, Max: 12}
	specialAttackDamage = dice.Range{Min: 10, Max: 20}
	healAmount          = dice.Range{Min: 8, Max: 20}
	monsterAttackDamage = dice.Range{Min: 8, Max: 15}
)

func init() {
	for _, r := range []dice.Range{playerAttackDamage, specialAttackDamage, healAmount, monsterAttackDamage} {
		if err := r.Validate(); err != nil {
			panic("combat: invalid draw range: " + err.Error())
		}
	}
}

// specialCadence is the round interval on which the special attack is unavailable.
const specialCadence = 3

var (
	// ErrSpecialUnavailable is returned by SpecialAttack when cadence
	// enforcement is enabled and CanUseSpecial is false.
	ErrSpecialUnavailable = errors.New("combat: special attack is not available this round")
	// ErrConcluded is returned by actions when the conclusion lock is enabled
	// and a winner has already been declared.
	ErrConcluded = errors.New("combat: battle has already concluded")
)

// Option configures an Engine.
type Option func(*Engine)

// WithSpecialCadenceEnforced makes SpecialAttack reject calls while
// CanUseSpecial is false. Disabled by default.
func WithSpecialCadenceEnforced(enabled bool) Option {
	return func(e *Engine) { e.enforceSpecial = enabled }
}

// WithConclusionLock makes every action except Reset reject calls once a
// winner has been declared. Disabled by default.
func WithConclusionLock(enabled bool) Option {
	return func(e *Engine) { e.lockOnConclusion = enabled }
}

// WithLogger sets the logger used for outcome changes. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

type observer struct {
	id int
	fn func(Snapshot)
}

// Engine runs a single player-versus-monster battle.
//
// An Engine is not safe for concurrent use; it is driven by one caller issuing
// discrete actions. Every action runs to completion before returning.
type Engine struct {
	src              dice.Source
	logger           *zap.Logger
	enforceSpecial   bool
	lockOnConclusion bool

	state     State
	observers []observer
	nextID    int
}

// NewEngine creates an Engine in its initial state drawing from src.
//
// Precondition: src must be non-nil.
// Postcondition: Both sides have MaxHealth, Round is 0, Winner is WinnerNone, Log is empty.
func NewEngine(src dice.Source, opts ...Option) *Engine {
	if src == nil {
		panic("combat: NewEngine precondition violated: src must be non-nil")
	}
	e := &Engine{
		src:    src,
		logger: zap.NewNop(),
		state:  newState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) mustBeReady() {
	if e == nil || e.src == nil {
		panic("combat: engine precondition violated: use NewEngine to construct an Engine")
	}
}

// Attack strikes the monster for [5, 12) damage, then the monster retaliates.
//
// Postcondition: Round is incremented by 1; two log entries are prepended.
func (e *Engine) Attack() error {
	return e.offensive(ActionAttack, playerAttackDamage)
}

// SpecialAttack strikes the monster for [10, 20) damage, then the monster
// retaliates. Eligibility is only checked when cadence enforcement is enabled.
//
// Postcondition: Round is incremented by 1; two log entries are prepended.
func (e *Engine) SpecialAttack() error {
	return e.offensive(ActionSpecialAttack, specialAttackDamage)
}

func (e *Engine) offensive(kind ActionKind, damage dice.Range) error {
	e.mustBeReady()
	if err := e.guard(); err != nil {
		return err
	}
	if kind == ActionSpecialAttack && e.enforceSpecial && !e.CanUseSpecial() {
		return ErrSpecialUnavailable
	}

	e.state.Round++
	amount := damage.Draw(e.src)
	e.state.MonsterHealth -= amount
	e.evaluate(SideMonster)
	e.record(SidePlayer, kind, amount)
	e.retaliate()
	e.notify()
	return nil
}

// Heal restores [8, 20) health to the player, capped at MaxHealth, then the
// monster retaliates.
//
// Postcondition: Round is incremented by 1; two log entries are prepended.
func (e *Engine) Heal() error {
	e.mustBeReady()
	if err := e.guard(); err != nil {
		return err
	}

	e.state.Round++
	amount := healAmount.Draw(e.src)
	e.state.PlayerHealth = min(MaxHealth, e.state.PlayerHealth+amount)
	e.evaluate(SidePlayer)
	e.record(SidePlayer, ActionHeal, amount)
	e.retaliate()
	e.notify()
	return nil
}

// Surrender declares the monster the winner regardless of health and
// replaces the log with a single surrender entry. Round is unchanged.
func (e *Engine) Surrender() error {
	e.mustBeReady()
	if err := e.guard(); err != nil {
		return err
	}

	e.setWinner(WinnerMonster)
	e.state.Log = nil
	e.record(SidePlayer, ActionSurrender, 0)
	e.notify()
	return nil
}

// Reset returns the battle to its initial state. Observers are kept.
func (e *Engine) Reset() {
	e.mustBeReady()
	e.state = newState()
	e.notify()
}

func (e *Engine) retaliate() {
	amount := monsterAttackDamage.Draw(e.src)
	e.state.PlayerHealth -= amount
	e.evaluate(SidePlayer)
	e.record(SideMonster, ActionAttack, amount)
}

func (e *Engine) guard() error {
	if e.lockOnConclusion && e.state.Concluded() {
		return ErrConcluded
	}
	return nil
}

// evaluate applies the winner rule for a health change on side: a fallen side
// loses, and a fall while the opponent is also down is a draw.
func (e *Engine) evaluate(side Side) {
	v := e.state.Health(side)
	w := e.state.Health(side.Opponent())
	switch {
	case v <= 0 && w <= 0:
		e.setWinner(WinnerDraw)
	case v <= 0:
		e.setWinner(WinnerFor(side.Opponent()))
	}
}

func (e *Engine) setWinner(w Winner) {
	if e.state.Winner == w {
		return
	}
	e.logger.Debug("battle outcome changed",
		zap.Stringer("from", e.state.Winner),
		zap.Stringer("to", w),
		zap.Int("round", e.state.Round),
	)
	e.state.Winner = w
}

func (e *Engine) record(actor Side, kind ActionKind, magnitude int) {
	entry := LogEntry{
		Actor:         actor,
		Kind:          kind,
		Magnitude:     magnitude,
		PlayerHealth:  clampHealth(e.state.PlayerHealth),
		MonsterHealth: clampHealth(e.state.MonsterHealth),
	}
	log := make([]LogEntry, 0, len(e.state.Log)+1)
	log = append(log, entry)
	e.state.Log = append(log, e.state.Log...)
}

// PlayerHealth returns the player's raw health, which may be negative.
func (e *Engine) PlayerHealth() int {
	e.mustBeReady()
	return e.state.PlayerHealth
}

// MonsterHealth returns the monster's raw health, which may be negative.
func (e *Engine) MonsterHealth() int {
	e.mustBeReady()
	return e.state.MonsterHealth
}

// Round returns the number of attack, special attack, and heal actions taken.
func (e *Engine) Round() int {
	e.mustBeReady()
	return e.state.Round
}

// Winner returns the declared winner, or WinnerNone.
func (e *Engine) Winner() Winner {
	e.mustBeReady()
	return e.state.Winner
}

// Log returns a copy of the battle log, newest entry first.
func (e *Engine) Log() []LogEntry {
	e.mustBeReady()
	out := make([]LogEntry, len(e.state.Log))
	copy(out, e.state.Log)
	return out
}

// CanUseSpecial reports whether the special attack is offered this round:
// always before the first action, never on multiples of three.
func (e *Engine) CanUseSpecial() bool {
	e.mustBeReady()
	return e.state.Round == 0 || e.state.Round%specialCadence != 0
}

// HealthBarWidth returns side's health as a bar width percentage in [0, 100].
func (e *Engine) HealthBarWidth(side Side) int {
	e.mustBeReady()
	return clampHealth(e.state.Health(side))
}

// Snapshot returns an immutable copy of the current state and derived views.
func (e *Engine) Snapshot() Snapshot {
	e.mustBeReady()
	st := e.state
	st.Log = e.Log()
	return Snapshot{
		State:         st,
		CanUseSpecial: e.CanUseSpecial(),
		PlayerBar:     e.HealthBarWidth(SidePlayer),
		MonsterBar:    e.HealthBarWidth(SideMonster),
	}
}
