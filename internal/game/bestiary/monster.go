// Package bestiary provides the monster roster shown by the front ends.
// Monsters are flavor only; every monster fights with the same rules.
package bestiary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/monsterslayer/internal/game/dice"
)

// Monster is one opponent a player can face, loaded from YAML.
type Monster struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// AttackVerb completes "<name> <verb> you", e.g. "claws".
	AttackVerb string `yaml:"attack_verb"`
}

// Validate checks that the monster satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty; fills a default AttackVerb.
func (m *Monster) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("monster: id must not be empty")
	}
	if m.Name == "" {
		return fmt.Errorf("monster %q: name must not be empty", m.ID)
	}
	if m.AttackVerb == "" {
		m.AttackVerb = "attacks"
	}
	return nil
}

// LoadFromBytes parses a single monster from raw YAML bytes.
//
// Postcondition: Returns a validated *Monster, or an error.
func LoadFromBytes(data []byte) (*Monster, error) {
	var m Monster
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing monster YAML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Roster is an immutable, ID-ordered set of monsters.
type Roster struct {
	monsters []*Monster
}

// NewRoster builds a Roster from monsters.
//
// Precondition: monsters must be non-empty with unique IDs.
// Postcondition: Returns a Roster ordered by ID, or an error.
func NewRoster(monsters []*Monster) (*Roster, error) {
	if len(monsters) == 0 {
		return nil, fmt.Errorf("bestiary: roster must contain at least one monster")
	}
	seen := make(map[string]bool, len(monsters))
	sorted := make([]*Monster, 0, len(monsters))
	for _, m := range monsters {
		if seen[m.ID] {
			return nil, fmt.Errorf("bestiary: duplicate monster id %q", m.ID)
		}
		seen[m.ID] = true
		sorted = append(sorted, m)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &Roster{monsters: sorted}, nil
}

// LoadDirectory reads every *.yaml file in dir as a Monster.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Roster or an error on the first parse or validate failure.
func LoadDirectory(dir string) (*Roster, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monsters dir %q: %w", dir, err)
	}

	var monsters []*Monster
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		m, err := LoadFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		monsters = append(monsters, m)
	}
	return NewRoster(monsters)
}

// Default returns the built-in roster used when no content directory is configured.
func Default() *Roster {
	r, err := NewRoster([]*Monster{
		{ID: "monster", Name: "Monster", Description: "A hulking shape with too many teeth.", AttackVerb: "mauls"},
	})
	if err != nil {
		panic(fmt.Sprintf("building default roster: %v", err))
	}
	return r
}

// Len returns the number of monsters.
func (r *Roster) Len() int { return len(r.monsters) }

// Get returns the monster with id.
func (r *Roster) Get(id string) (*Monster, bool) {
	for _, m := range r.monsters {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// Pick returns a uniformly chosen monster.
//
// Precondition: src must be non-nil.
func (r *Roster) Pick(src dice.Source) *Monster {
	return r.monsters[src.Intn(len(r.monsters))]
}
