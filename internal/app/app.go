// Package app assembles the battle engine from configuration and exposes
// the party-level operations the command line drives.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/config"
	"github.com/cory-johannsen/faiths/internal/game/battle"
	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/encounter"
	"github.com/cory-johannsen/faiths/internal/storage"
)

// App is the fully wired engine.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Moves      *combat.MoveRegistry
	Generator  *encounter.Generator
	Sequence   *encounter.Sequence
	Repository storage.Repository
	Slots      *Slots
	Registry   *battle.Registry
}

// Slots maps combatants to the party slot they persist in and saves them
// there when an encounter finishes.
type Slots struct {
	mu     sync.Mutex
	repo   storage.Repository
	bySlot map[int64]string
}

// NewSlots creates an empty slot binding over repo.
func NewSlots(repo storage.Repository) *Slots {
	return &Slots{repo: repo, bySlot: make(map[int64]string)}
}

// Bind records that c persists in slot.
func (s *Slots) Bind(slot string, c *combat.Combatant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySlot[c.ID] = slot
}

// SlotOf returns the slot c is bound to.
func (s *Slots) SlotOf(c *combat.Combatant) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.bySlot[c.ID]
	return slot, ok
}

// Save implements battle.Saver.
//
// Precondition: c was bound with Bind.
func (s *Slots) Save(ctx context.Context, c *combat.Combatant) error {
	slot, ok := s.SlotOf(c)
	if !ok {
		return fmt.Errorf("combatant %d is not bound to a party slot", c.ID)
	}
	return s.repo.Save(ctx, slot, c)
}

var _ battle.Saver = (*Slots)(nil)

// Party loads the combatant in slot. An empty slot is filled with a fresh
// starter named name and saved immediately.
//
// Postcondition: the returned combatant is bound to slot.
func (a *App) Party(ctx context.Context, slot, name string) (*combat.Combatant, error) {
	c, err := a.Repository.Load(ctx, slot)
	switch {
	case err == nil:
		a.Sequence.Observe(c.ID)
		a.Logger.Info("party loaded",
			zap.String("slot", slot),
			zap.Int64("combatant", c.ID),
			zap.Int("battles", c.History.Total()),
		)
	case errors.Is(err, storage.ErrNotFound):
		c, err = a.Generator.Starter(a.Config.Encounter.StarterSpecies, name)
		if err != nil {
			return nil, err
		}
		if err := a.Repository.Save(ctx, slot, c); err != nil {
			return nil, err
		}
		a.Logger.Info("starter granted",
			zap.String("slot", slot),
			zap.Int64("combatant", c.ID),
			zap.String("species", c.Species),
		)
	default:
		return nil, err
	}
	a.Slots.Bind(slot, c)
	return c, nil
}

// Wild starts an encounter between player and a wild combatant generated
// at location. A negative age draws one from the spawn table.
func (a *App) Wild(player *combat.Combatant, location string, age int) (*battle.Encounter, error) {
	loc, err := a.Generator.Location(location)
	if err != nil {
		return nil, err
	}
	wild, err := a.Generator.Generate(location, age)
	if err != nil {
		return nil, err
	}
	return a.Registry.Start(player, wild, loc.Environment...)
}
