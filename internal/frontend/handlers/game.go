// Package handlers runs interactive battle sessions over Telnet or a terminal.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/monsterslayer/internal/config"
	"github.com/cory-johannsen/monsterslayer/internal/frontend/telnet"
	"github.com/cory-johannsen/monsterslayer/internal/game/bestiary"
	"github.com/cory-johannsen/monsterslayer/internal/game/combat"
	"github.com/cory-johannsen/monsterslayer/internal/game/command"
	"github.com/cory-johannsen/monsterslayer/internal/game/dice"
	"github.com/cory-johannsen/monsterslayer/internal/game/history"
)

// ErrIdleTimeout ends a session whose player stopped sending input.
var ErrIdleTimeout = errors.New("session idle timeout")

// archiveTimeout bounds a single archive write.
const archiveTimeout = 5 * time.Second

// GameHandler implements telnet.SessionHandler. Each session gets its own
// combat engine; the roster, source, and archive are shared.
type GameHandler struct {
	registry *command.Registry
	roster   *bestiary.Roster
	src      dice.Source
	archive  history.Archive
	combat   config.CombatConfig
	idle     config.TelnetConfig
	logger   *zap.Logger
}

// NewGameHandler creates a GameHandler.
//
// Precondition: roster, src, and logger must be non-nil; src must be safe for
// concurrent use. archive may be nil, which disables the history command and
// battle recording.
// Postcondition: Returns a GameHandler ready to handle sessions.
func NewGameHandler(
	roster *bestiary.Roster,
	src dice.Source,
	archive history.Archive,
	combatCfg config.CombatConfig,
	telnetCfg config.TelnetConfig,
	logger *zap.Logger,
) *GameHandler {
	return &GameHandler{
		registry: command.DefaultRegistry(),
		roster:   roster,
		src:      src,
		archive:  archive,
		combat:   combatCfg,
		idle:     telnetCfg,
		logger:   logger,
	}
}

// HandleSession runs a battle session over a Telnet connection.
func (h *GameHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	logger := h.logger.With(zap.String("remote_addr", conn.RemoteAddr().String()))
	if id := telnet.SessionID(ctx); id != uuid.Nil {
		logger = logger.With(zap.String("session_id", id.String()))
	}
	return h.play(ctx, conn, logger)
}

// Play runs a battle session over any LineConn until the player quits, the
// input ends, the session idles out, or ctx is cancelled.
//
// Postcondition: Returns nil on quit or end of input.
func (h *GameHandler) Play(ctx context.Context, conn LineConn) error {
	return h.play(ctx, conn, h.logger)
}

type lineResult struct {
	line string
	err  error
}

func (h *GameHandler) play(ctx context.Context, conn LineConn, logger *zap.Logger) error {
	s := h.newSession(conn, logger)
	defer s.archive(ctx)

	if err := s.flush(append(RenderIntro(s.monster), RenderStatus(s.engine.Snapshot(), s.monster)...)...); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	lines := make(chan lineResult)
	go func() {
		for {
			line, err := conn.ReadLine()
			select {
			case lines <- lineResult{line: line, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var lastInput atomic.Int64
	lastInput.Store(time.Now().UnixNano())
	warn := make(chan struct{}, 1)
	drop := make(chan struct{}, 1)
	if h.idle.IdleTimeout > 0 {
		stop := StartIdleMonitor(IdleMonitorConfig{
			LastInput:    &lastInput,
			IdleTimeout:  h.idle.IdleTimeout,
			GracePeriod:  h.idle.IdleGracePeriod,
			TickInterval: idleTick(h.idle),
			OnWarning:    func() { trySend(warn) },
			OnDisconnect: func() { trySend(drop) },
		})
		defer stop()
	}

	for {
		if err := conn.WritePrompt(RenderPrompt(s.engine.Snapshot())); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-warn:
			if err := s.flush("", telnet.Colorize(telnet.Yellow, "The monster grows impatient. Act now or be dropped.")); err != nil {
				return err
			}
		case <-drop:
			_ = s.flush("", telnet.Colorize(telnet.Red, "You stood still too long. Disconnecting."))
			s.logger.Info("dropping idle session")
			return ErrIdleTimeout
		case r := <-lines:
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					return nil
				}
				return fmt.Errorf("reading input: %w", r.err)
			}
			lastInput.Store(time.Now().UnixNano())
			quit, err := s.dispatch(ctx, r.line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// idleTick samples often enough to honor the shorter of the two idle periods.
func idleTick(cfg config.TelnetConfig) time.Duration {
	shortest := cfg.IdleTimeout
	if cfg.IdleGracePeriod > 0 {
		shortest = min(shortest, cfg.IdleGracePeriod)
	}
	return min(max(shortest/4, 10*time.Millisecond), time.Second)
}

func trySend(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// session is the per-connection battle state.
type session struct {
	h       *GameHandler
	conn    LineConn
	logger  *zap.Logger
	engine  *combat.Engine
	monster *bestiary.Monster

	prev     combat.Snapshot
	pending  []string
	archived bool
}

func (h *GameHandler) newSession(conn LineConn, logger *zap.Logger) *session {
	s := &session{
		h:       h,
		conn:    conn,
		logger:  logger,
		monster: h.roster.Pick(h.src),
		engine: combat.NewEngine(h.src,
			combat.WithSpecialCadenceEnforced(h.combat.EnforceSpecialCadence),
			combat.WithConclusionLock(h.combat.LockOnConclusion),
			combat.WithLogger(logger),
		),
	}
	s.prev = s.engine.Snapshot()
	s.engine.Subscribe(s.onChange)
	logger.Info("battle started", zap.String("monster", s.monster.ID))
	return s
}

// onChange renders what changed between the previous and current snapshot.
func (s *session) onChange(snap combat.Snapshot) {
	defer func() { s.prev = snap }()

	if len(snap.Log) == 0 {
		s.pending = append(s.pending, RenderIntro(s.monster)...)
		s.pending = append(s.pending, RenderStatus(snap, s.monster)...)
		return
	}

	fresh := 1
	if snap.Log[0].Kind != combat.ActionSurrender {
		fresh = max(1, len(snap.Log)-len(s.prev.Log))
	}
	for i := fresh - 1; i >= 0; i-- {
		s.pending = append(s.pending, RenderLogEntry(snap.Log[i], s.monster))
	}
	s.pending = append(s.pending, RenderStatus(snap, s.monster)...)
	if snap.Winner != s.prev.Winner && snap.Concluded() {
		s.pending = append(s.pending, "", RenderOutcome(snap.Winner, s.monster))
		s.logger.Info("battle concluded",
			zap.String("monster", s.monster.ID),
			zap.Stringer("winner", snap.Winner),
			zap.Int("rounds", snap.Round),
		)
	}
}

func (s *session) concluded() bool {
	return s.engine.Winner() != combat.WinnerNone
}

// flush writes pending renderer output followed by extra lines.
func (s *session) flush(extra ...string) error {
	lines := append(s.pending, extra...)
	s.pending = nil
	if len(lines) == 0 {
		return nil
	}
	if err := s.conn.WriteLines(lines...); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// dispatch runs one input line.
//
// Postcondition: Returns quit=true when the session should end normally.
func (s *session) dispatch(ctx context.Context, line string) (quit bool, err error) {
	parsed := command.Parse(line)
	if parsed.Empty() {
		return false, nil
	}
	cmd, ok := s.h.registry.Resolve(parsed.Command)
	if !ok {
		return false, s.flush(telnet.Colorf(telnet.Red, "Unknown command %q. Type 'help' for a list.", parsed.Command))
	}

	switch cmd.Handler {
	case command.HandlerAttack:
		return false, s.act(s.engine.Attack)
	case command.HandlerSpecial:
		if !s.engine.CanUseSpecial() && !s.concluded() {
			return false, s.flush(telnet.Colorize(telnet.Yellow, "Your special attack is recharging. Try again next round."))
		}
		return false, s.act(s.engine.SpecialAttack)
	case command.HandlerHeal:
		return false, s.act(s.engine.Heal)
	case command.HandlerSurrender:
		return false, s.act(s.engine.Surrender)
	case command.HandlerNew:
		var next *bestiary.Monster
		if len(parsed.Args) > 0 {
			m, ok := s.h.roster.Get(parsed.Args[0])
			if !ok {
				return false, s.flush(telnet.Colorf(telnet.Red, "No monster called %q lurks here.", parsed.Args[0]))
			}
			next = m
		} else {
			next = s.h.roster.Pick(s.h.src)
		}
		s.archive(ctx)
		s.monster = next
		s.archived = false
		s.engine.Reset()
		s.logger.Info("battle started", zap.String("monster", s.monster.ID))
		return false, s.flush()
	case command.HandlerStatus:
		return false, s.flush(RenderStatus(s.engine.Snapshot(), s.monster)...)
	case command.HandlerLog:
		return false, s.flush(RenderLog(s.engine.Log(), s.monster)...)
	case command.HandlerHistory:
		return false, s.history(ctx, parsed.Args)
	case command.HandlerHelp:
		return false, s.flush(RenderHelp(s.h.registry.Commands())...)
	case command.HandlerQuit:
		return true, s.flush(telnet.Colorize(telnet.Cyan, "You slip away into the dark. Farewell."))
	}
	return false, s.flush(telnet.Colorf(telnet.Red, "%q is not available here.", cmd.Name))
}

// act runs a battle action once the battle is still open.
func (s *session) act(action func() error) error {
	if s.concluded() {
		return s.flush(telnet.Colorize(telnet.Yellow, "The battle is over. Type 'new' to fight again."))
	}
	switch err := action(); {
	case errors.Is(err, combat.ErrSpecialUnavailable):
		return s.flush(telnet.Colorize(telnet.Yellow, "Your special attack is recharging. Try again next round."))
	case errors.Is(err, combat.ErrConcluded):
		return s.flush(telnet.Colorize(telnet.Yellow, "The battle is over. Type 'new' to fight again."))
	case err != nil:
		return err
	}
	return s.flush()
}

func (s *session) history(ctx context.Context, args []string) error {
	if s.h.archive == nil {
		return s.flush(telnet.Colorize(telnet.Dim, "Battle history is not being recorded."))
	}
	limit := s.h.combat.HistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return s.flush(telnet.Colorize(telnet.Red, "Usage: history [count]"))
		}
		limit = min(n, limit)
	}
	battles, err := s.h.archive.Recent(ctx, limit)
	if err != nil {
		s.logger.Warn("listing battle history", zap.Error(err))
		return s.flush(telnet.Colorize(telnet.Red, "The chronicles are unreadable right now."))
	}
	return s.flush(RenderHistory(battles)...)
}

// archive records the current battle once if it has concluded.
func (s *session) archive(ctx context.Context) {
	if s.h.archive == nil || s.archived {
		return
	}
	b, err := history.FromSnapshot(s.monster.Name, s.engine.Snapshot())
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	saved, err := s.h.archive.Save(ctx, b)
	if err != nil {
		s.logger.Warn("archiving battle", zap.Error(err))
		s.pending = append(s.pending, telnet.Colorize(telnet.Dim, "(this battle could not be recorded)"))
		return
	}
	s.archived = true
	s.logger.Info("battle archived",
		zap.String("battle_id", saved.ID.String()),
		zap.Stringer("winner", saved.Winner),
	)
}
