package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/monsterslayer/internal/game/combat"
	"github.com/cory-johannsen/monsterslayer/internal/game/history"
)

const battleColumns = `id::text, monster, winner, rounds, player_health, monster_health, log, ended_at`

// BattleRepository persists concluded battles. It implements history.Archive.
type BattleRepository struct {
	db *pgxpool.Pool
}

var _ history.Archive = (*BattleRepository)(nil)

// NewBattleRepository creates a BattleRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

// Save inserts a concluded battle. A nil ID is replaced with a fresh one.
//
// Precondition: b.Winner must not be WinnerNone.
// Postcondition: Returns the stored Battle with EndedAt set by the database,
// or history.ErrBattleInProgress.
func (r *BattleRepository) Save(ctx context.Context, b history.Battle) (history.Battle, error) {
	if b.Winner == combat.WinnerNone {
		return history.Battle{}, history.ErrBattleInProgress
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	entries := b.Log
	if entries == nil {
		entries = []combat.LogEntry{}
	}
	logJSON, err := json.Marshal(entries)
	if err != nil {
		return history.Battle{}, fmt.Errorf("encoding battle log: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO battles (id, monster, winner, rounds, player_health, monster_health, log)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+battleColumns,
		b.ID.String(), b.Monster, b.Winner.String(), b.Rounds, b.PlayerHealth, b.MonsterHealth, logJSON,
	)
	saved, err := scanBattle(row)
	if err != nil {
		return history.Battle{}, fmt.Errorf("inserting battle: %w", err)
	}
	return saved, nil
}

// Get retrieves a battle by ID.
//
// Postcondition: Returns the Battle or history.ErrBattleNotFound.
func (r *BattleRepository) Get(ctx context.Context, id uuid.UUID) (history.Battle, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+battleColumns+` FROM battles WHERE id = $1`,
		id.String(),
	)
	b, err := scanBattle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return history.Battle{}, history.ErrBattleNotFound
		}
		return history.Battle{}, fmt.Errorf("querying battle: %w", err)
	}
	return b, nil
}

// Recent returns up to limit battles, most recently ended first.
//
// Precondition: limit must be >= 1.
func (r *BattleRepository) Recent(ctx context.Context, limit int) ([]history.Battle, error) {
	if limit < 1 {
		return nil, fmt.Errorf("limit must be >= 1, got %d", limit)
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+battleColumns+` FROM battles ORDER BY ended_at DESC, id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent battles: %w", err)
	}
	defer rows.Close()

	var out []history.Battle
	for rows.Next() {
		b, err := scanBattle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning battle: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBattle(row pgx.Row) (history.Battle, error) {
	var (
		b       history.Battle
		id      string
		winner  string
		logJSON []byte
	)
	err := row.Scan(&id, &b.Monster, &winner, &b.Rounds, &b.PlayerHealth, &b.MonsterHealth, &logJSON, &b.EndedAt)
	if err != nil {
		return history.Battle{}, err
	}
	if b.ID, err = uuid.Parse(id); err != nil {
		return history.Battle{}, fmt.Errorf("parsing battle id: %w", err)
	}
	if b.Winner, err = combat.ParseWinner(winner); err != nil {
		return history.Battle{}, err
	}
	if err := json.Unmarshal(logJSON, &b.Log); err != nil {
		return history.Battle{}, fmt.Errorf("decoding battle log: %w", err)
	}
	return b, nil
}
