package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/monsterslayer/internal/game/combat"
)

// minSrc always draws the lowest value of a range.
type minSrc struct{}

func (minSrc) Intn(_ int) int { return 0 }

// maxSrc always draws the highest value of a range.
type maxSrc struct{}

func (maxSrc) Intn(n int) int { return n - 1 }

// rapidSrc draws every value from the property test's generator.
type rapidSrc struct{ rt *rapid.T }

func (s rapidSrc) Intn(n int) int { return rapid.IntRange(0, n-1).Draw(s.rt, "roll") }

func TestNewEngine_InitialState(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	assert.Equal(t, 100, e.PlayerHealth())
	assert.Equal(t, 100, e.MonsterHealth())
	assert.Equal(t, 0, e.Round())
	assert.Equal(t, combat.WinnerNone, e.Winner())
	assert.Empty(t, e.Log())
	assert.True(t, e.CanUseSpecial())
}

func TestNewEngine_PanicsOnNilSource(t *testing.T) {
	assert.Panics(t, func() { combat.NewEngine(nil) })
}

func TestEngine_ZeroValuePanics(t *testing.T) {
	var e combat.Engine
	assert.Panics(t, func() { _ = e.Attack() })
	assert.Panics(t, func() { _ = e.Round() })

	var nilEngine *combat.Engine
	assert.Panics(t, func() { nilEngine.Reset() })
}

// TestEngine_Attack_MinimumDraws is the end-to-end exchange with the lowest
// possible draws: 5 damage to the monster, 8 in retaliation.
// The player entry records health before retaliation (100, not 92).
func TestEngine_Attack_MinimumDraws(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	require.NoError(t, e.Attack())

	assert.Equal(t, 95, e.MonsterHealth())
	assert.Equal(t, 92, e.PlayerHealth())
	assert.Equal(t, 1, e.Round())
	assert.Equal(t, combat.WinnerNone, e.Winner())
	assert.Equal(t, []combat.LogEntry{
		{Actor: combat.SideMonster, Kind: combat.ActionAttack, Magnitude: 8, PlayerHealth: 92, MonsterHealth: 95},
		{Actor: combat.SidePlayer, Kind: combat.ActionAttack, Magnitude: 5, PlayerHealth: 100, MonsterHealth: 95},
	}, e.Log())
}

func TestEngine_SpecialAttack_MaximumDraws(t *testing.T) {
	e := combat.NewEngine(maxSrc{})
	require.NoError(t, e.SpecialAttack())

	assert.Equal(t, 81, e.MonsterHealth())
	assert.Equal(t, 86, e.PlayerHealth())
	log := e.Log()
	require.Len(t, log, 2)
	assert.Equal(t, combat.ActionSpecialAttack, log[1].Kind)
	assert.Equal(t, 19, log[1].Magnitude)
	assert.Equal(t, 14, log[0].Magnitude)
}

func TestEngine_Heal_CapsAtMaxHealth(t *testing.T) {
	e := combat.NewEngine(maxSrc{})
	e.SetHealth(95, 100)
	require.NoError(t, e.Heal())

	log := e.Log()
	require.Len(t, log, 2)
	assert.Equal(t, combat.LogEntry{Actor: combat.SidePlayer, Kind: combat.ActionHeal, Magnitude: 19, PlayerHealth: 100, MonsterHealth: 100}, log[1])
	assert.Equal(t, 86, e.PlayerHealth())
}

func TestEngine_Heal_RevivesWithoutClearingWinner(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	e.SetHealth(5, 100)
	require.NoError(t, e.Attack())
	require.Equal(t, combat.WinnerMonster, e.Winner())

	require.NoError(t, e.Heal())
	assert.Equal(t, combat.WinnerMonster, e.Winner())
}

func TestEngine_PlayerWins(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	e.SetHealth(100, 5)
	require.NoError(t, e.Attack())
	assert.Equal(t, combat.WinnerPlayer, e.Winner())
	assert.Equal(t, 0, e.MonsterHealth())
}

func TestEngine_MonsterWins(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	e.SetHealth(8, 100)
	require.NoError(t, e.Attack())
	assert.Equal(t, combat.WinnerMonster, e.Winner())
	assert.Equal(t, 0, e.HealthBarWidth(combat.SidePlayer))
}

// TestEngine_DoubleKnockoutIsDraw drives both sides down from 12 with maximum
// draws until both are at or below zero after the same exchange.
func TestEngine_DoubleKnockoutIsDraw(t *testing.T) {
	e := combat.NewEngine(maxSrc{})
	e.SetHealth(12, 12)
	for i := 0; i < 10 && (e.PlayerHealth() > 0 || e.MonsterHealth() > 0); i++ {
		require.NoError(t, e.Attack())
	}
	assert.LessOrEqual(t, e.PlayerHealth(), 0)
	assert.LessOrEqual(t, e.MonsterHealth(), 0)
	assert.Equal(t, combat.WinnerDraw, e.Winner())
}

func TestEngine_KnockoutInOneExchangeIsDraw(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	e.SetHealth(8, 5)
	require.NoError(t, e.Attack())
	assert.Equal(t, combat.WinnerDraw, e.Winner())
}

// TestEngine_WinnerOverwrittenAfterConclusion shows the permissive default:
// a player victory becomes a draw once the player also falls.
func TestEngine_WinnerOverwrittenAfterConclusion(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	e.SetHealth(10, 1)
	require.NoError(t, e.Attack())
	require.Equal(t, combat.WinnerPlayer, e.Winner())
	require.Equal(t, 2, e.PlayerHealth())

	require.NoError(t, e.Attack())
	assert.Equal(t, combat.WinnerDraw, e.Winner())
	assert.Equal(t, 2, e.Round())
}

func TestEngine_Surrender(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	require.NoError(t, e.Attack())
	require.NoError(t, e.Surrender())

	assert.Equal(t, combat.WinnerMonster, e.Winner())
	assert.Equal(t, 1, e.Round())
	assert.Equal(t, []combat.LogEntry{
		{Actor: combat.SidePlayer, Kind: combat.ActionSurrender, PlayerHealth: 92, MonsterHealth: 95},
	}, e.Log())
}

func TestEngine_SurrenderOverridesPlayerVictory(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	e.SetHealth(100, 3)
	require.NoError(t, e.Attack())
	require.Equal(t, combat.WinnerPlayer, e.Winner())

	require.NoError(t, e.Surrender())
	assert.Equal(t, combat.WinnerMonster, e.Winner())
	log := e.Log()
	require.Len(t, log, 1)
	assert.Equal(t, 0, log[0].MonsterHealth)
}

func TestEngine_HealthBarWidth_Clamps(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	e.SetHealth(-7, 42)
	assert.Equal(t, 0, e.HealthBarWidth(combat.SidePlayer))
	assert.Equal(t, 42, e.HealthBarWidth(combat.SideMonster))
	assert.Equal(t, -7, e.PlayerHealth())
}

func TestEngine_CanUseSpecial_Cadence(t *testing.T) {
	want := map[int]bool{0: true, 1: true, 2: true, 3: false, 4: true, 5: true, 6: false, 7: true, 8: true, 9: false}
	e := combat.NewEngine(minSrc{})
	for round := 0; round <= 9; round++ {
		require.Equal(t, round, e.Round())
		assert.Equal(t, want[round], e.CanUseSpecial(), "round %d", round)
		e.SetHealth(100, 100)
		require.NoError(t, e.Attack())
	}
}

func TestEngine_SpecialAttack_PermissiveByDefault(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	for i := 0; i < 3; i++ {
		require.NoError(t, e.Attack())
	}
	require.False(t, e.CanUseSpecial())
	require.NoError(t, e.SpecialAttack())
	assert.Equal(t, 4, e.Round())
}

func TestEngine_SpecialAttack_EnforcedCadence(t *testing.T) {
	e := combat.NewEngine(minSrc{}, combat.WithSpecialCadenceEnforced(true))
	require.NoError(t, e.SpecialAttack())
	require.NoError(t, e.Attack())
	require.NoError(t, e.Attack())

	before := e.Snapshot()
	err := e.SpecialAttack()
	assert.ErrorIs(t, err, combat.ErrSpecialUnavailable)
	assert.Equal(t, before, e.Snapshot())

	require.NoError(t, e.Heal())
	assert.NoError(t, e.SpecialAttack())
}

func TestEngine_ConclusionLock(t *testing.T) {
	e := combat.NewEngine(minSrc{}, combat.WithConclusionLock(true))
	e.SetHealth(100, 1)
	require.NoError(t, e.Attack())
	require.Equal(t, combat.WinnerPlayer, e.Winner())

	before := e.Snapshot()
	assert.ErrorIs(t, e.Attack(), combat.ErrConcluded)
	assert.ErrorIs(t, e.SpecialAttack(), combat.ErrConcluded)
	assert.ErrorIs(t, e.Heal(), combat.ErrConcluded)
	assert.ErrorIs(t, e.Surrender(), combat.ErrConcluded)
	assert.Equal(t, before, e.Snapshot())

	e.Reset()
	assert.NoError(t, e.Attack())
}

func TestEngine_Reset(t *testing.T) {
	e := combat.NewEngine(maxSrc{})
	require.NoError(t, e.Attack())
	require.NoError(t, e.Heal())
	require.NoError(t, e.Surrender())

	e.Reset()
	assert.Equal(t, 100, e.PlayerHealth())
	assert.Equal(t, 100, e.MonsterHealth())
	assert.Equal(t, 0, e.Round())
	assert.Equal(t, combat.WinnerNone, e.Winner())
	assert.Empty(t, e.Log())
}

func TestEngine_LogIsACopy(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	require.NoError(t, e.Attack())
	log := e.Log()
	log[0].Magnitude = 999
	assert.Equal(t, 8, e.Log()[0].Magnitude)
}

func TestEngine_Subscribe(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	var snaps []combat.Snapshot
	cancel := e.Subscribe(func(s combat.Snapshot) { snaps = append(snaps, s) })

	require.NoError(t, e.Attack())
	require.NoError(t, e.Surrender())
	e.Reset()
	require.Len(t, snaps, 3)

	assert.Equal(t, 1, snaps[0].Round)
	assert.Equal(t, 92, snaps[0].PlayerBar)
	assert.Equal(t, 95, snaps[0].MonsterBar)
	assert.True(t, snaps[0].CanUseSpecial)
	assert.Len(t, snaps[0].Log, 2)
	assert.Equal(t, combat.WinnerMonster, snaps[1].Winner)
	assert.True(t, snaps[1].Concluded())
	assert.Empty(t, snaps[2].Log)

	cancel()
	cancel()
	require.NoError(t, e.Attack())
	assert.Len(t, snaps, 3)
}

func TestEngine_Subscribe_OrderAndSelfCancel(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	var order []string
	var cancelFirst func()
	cancelFirst = e.Subscribe(func(combat.Snapshot) {
		order = append(order, "first")
		cancelFirst()
	})
	e.Subscribe(func(combat.Snapshot) { order = append(order, "second") })

	require.NoError(t, e.Attack())
	require.NoError(t, e.Attack())
	assert.Equal(t, []string{"first", "second", "second"}, order)
}

func TestEngine_Subscribe_PanicsOnNil(t *testing.T) {
	e := combat.NewEngine(minSrc{})
	assert.Panics(t, func() { e.Subscribe(nil) })
}

func TestEngine_LogsOutcomeChanges(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := combat.NewEngine(minSrc{}, combat.WithLogger(zap.New(core)))
	e.SetHealth(100, 5)
	require.NoError(t, e.Attack())

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "none", fields["from"])
	assert.Equal(t, "player", fields["to"])
}

type action int

const (
	actAttack action = iota
	actSpecial
	actHeal
	actSurrender
	actQuery
)

func apply(t require.TestingT, e *combat.Engine, a action) {
	switch a {
	case actAttack:
		require.NoError(t, e.Attack())
	case actSpecial:
		require.NoError(t, e.SpecialAttack())
	case actHeal:
		require.NoError(t, e.Heal())
	case actSurrender:
		require.NoError(t, e.Surrender())
	case actQuery:
		_ = e.CanUseSpecial()
		_ = e.HealthBarWidth(combat.SidePlayer)
		_ = e.Snapshot()
	}
}

// TestPropertyEngine_RoundCountsPlayerActions verifies Round increases by
// exactly one per attack, special attack, or heal and never otherwise.
func TestPropertyEngine_RoundCountsPlayerActions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := combat.NewEngine(rapidSrc{rt})
		acts := rapid.SliceOfN(rapid.IntRange(int(actAttack), int(actQuery)), 0, 40).Draw(rt, "actions")
		want := 0
		for _, a := range acts {
			apply(rt, e, action(a))
			if action(a) <= actHeal {
				want++
			}
			assert.Equal(rt, want, e.Round())
		}
	})
}

// TestPropertyEngine_CanUseSpecial verifies the fixed cadence for any round.
func TestPropertyEngine_CanUseSpecial(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(rt, "rounds")
		e := combat.NewEngine(minSrc{})
		for i := 0; i < n; i++ {
			require.NoError(rt, e.Heal())
		}
		assert.Equal(rt, n == 0 || n%3 != 0, e.CanUseSpecial())
	})
}

// TestPropertyEngine_HealthBarWidth verifies bars clamp at zero and track health otherwise.
func TestPropertyEngine_HealthBarWidth(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.IntRange(-200, 100).Draw(rt, "player")
		m := rapid.IntRange(-200, 100).Draw(rt, "monster")
		e := combat.NewEngine(minSrc{})
		e.SetHealth(p, m)
		assert.Equal(rt, max(0, p), e.HealthBarWidth(combat.SidePlayer))
		assert.Equal(rt, max(0, m), e.HealthBarWidth(combat.SideMonster))
	})
}

// TestPropertyEngine_SurrenderOverrides verifies surrender from any reachable state.
func TestPropertyEngine_SurrenderOverrides(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := combat.NewEngine(rapidSrc{rt})
		acts := rapid.SliceOfN(rapid.IntRange(int(actAttack), int(actQuery)), 0, 30).Draw(rt, "actions")
		for _, a := range acts {
			apply(rt, e, action(a))
		}
		round := e.Round()
		require.NoError(rt, e.Surrender())

		assert.Equal(rt, combat.WinnerMonster, e.Winner())
		assert.Equal(rt, round, e.Round())
		log := e.Log()
		require.Len(rt, log, 1)
		assert.Equal(rt, combat.SidePlayer, log[0].Actor)
		assert.Equal(rt, combat.ActionSurrender, log[0].Kind)
		assert.False(rt, log[0].HasMagnitude())
	})
}

// TestPropertyEngine_ResetRestoresDefaults verifies Reset after any sequence.
func TestPropertyEngine_ResetRestoresDefaults(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := combat.NewEngine(rapidSrc{rt})
		acts := rapid.SliceOfN(rapid.IntRange(int(actAttack), int(actQuery)), 0, 30).Draw(rt, "actions")
		for _, a := range acts {
			apply(rt, e, action(a))
		}
		e.Reset()
		assert.Equal(rt, combat.Snapshot{
			State:         combat.State{PlayerHealth: 100, MonsterHealth: 100, Log: []combat.LogEntry{}},
			CanUseSpecial: true,
			PlayerBar:     100,
			MonsterBar:    100,
		}, e.Snapshot())
	})
}

// TestPropertyEngine_LogOrdering verifies two entries per player action,
// newest first, each monster retaliation directly above its player action.
func TestPropertyEngine_LogOrdering(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := combat.NewEngine(rapidSrc{rt})
		acts := rapid.SliceOfN(rapid.IntRange(int(actAttack), int(actHeal)), 0, 30).Draw(rt, "actions")
		kinds := map[action]combat.ActionKind{actAttack: combat.ActionAttack, actSpecial: combat.ActionSpecialAttack, actHeal: combat.ActionHeal}
		for _, a := range acts {
			apply(rt, e, action(a))
		}

		log := e.Log()
		require.Len(rt, log, 2*len(acts))
		for i, a := range acts {
			newest := len(acts) - 1 - i
			retaliation, player := log[2*newest], log[2*newest+1]
			assert.Equal(rt, combat.SideMonster, retaliation.Actor)
			assert.Equal(rt, combat.ActionAttack, retaliation.Kind)
			assert.Equal(rt, combat.SidePlayer, player.Actor)
			assert.Equal(rt, kinds[action(a)], player.Kind)
		}
	})
}

// TestPropertyEngine_HealNeverExceedsMax verifies every heal lands at or below MaxHealth.
func TestPropertyEngine_HealNeverExceedsMax(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := combat.NewEngine(rapidSrc{rt})
		e.SetHealth(rapid.IntRange(-20, 100).Draw(rt, "player"), 100)
		require.NoError(rt, e.Heal())

		log := e.Log()
		require.Len(rt, log, 2)
		assert.LessOrEqual(rt, log[1].PlayerHealth, combat.MaxHealth)
		assert.LessOrEqual(rt, e.PlayerHealth(), combat.MaxHealth)
	})
}

// TestPropertyEngine_DrawsStayInRange verifies logged magnitudes against the
// fixed damage and heal ranges.
func TestPropertyEngine_DrawsStayInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := combat.NewEngine(rapidSrc{rt})
		a := action(rapid.IntRange(int(actAttack), int(actHeal)).Draw(rt, "action"))
		apply(rt, e, a)
		log := e.Log()
		require.Len(rt, log, 2)

		bounds := map[action][2]int{actAttack: {5, 12}, actSpecial: {10, 20}, actHeal: {8, 20}}[a]
		assert.GreaterOrEqual(rt, log[1].Magnitude, bounds[0])
		assert.Less(rt, log[1].Magnitude, bounds[1])
		assert.GreaterOrEqual(rt, log[0].Magnitude, 8)
		assert.Less(rt, log[0].Magnitude, 15)
	})
}
