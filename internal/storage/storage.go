// Package storage defines the persistence boundary for combatants and the
// versioned record format shared by every backend.
package storage

import (
	"context"
	"errors"

	"github.com/cory-johannsen/faiths/internal/game/combat"
)

// ErrNotFound is returned when a party slot holds no combatant.
var ErrNotFound = errors.New("party slot not found")

// Repository loads and saves combatants by party slot.
type Repository interface {
	// Load returns the combatant stored in slot, or ErrNotFound.
	Load(ctx context.Context, slot string) (*combat.Combatant, error)
	// Save writes c to slot, replacing any previous record.
	Save(ctx context.Context, slot string, c *combat.Combatant) error
	// MaxCombatantID returns the largest stored combatant ID, or 0 when empty.
	MaxCombatantID(ctx context.Context) (int64, error)
	// Close releases backend resources.
	Close() error
}
