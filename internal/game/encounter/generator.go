// Package encounter builds wild opponents and starter combatants from
// species and location tables.
package encounter

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/dice"
	"github.com/cory-johannsen/faiths/internal/game/history"
)

var (
	// ErrUnknownLocation is returned when no encounter table exists for a location.
	ErrUnknownLocation = errors.New("unknown location")
	// ErrUnknownSpecies is returned when a species ID is not in the catalog.
	ErrUnknownSpecies = errors.New("unknown species")
)

// Config tunes wild generation.
type Config struct {
	// WinsPerYear is how many synthetic won battles a wild combatant carries per year of age.
	WinsPerYear int
	// MaxSeededWins caps the synthetic history.
	MaxSeededWins int
	// StarterAge is the age of granted starter combatants.
	StarterAge int
}

// DefaultConfig returns the stock generator tuning.
func DefaultConfig() Config {
	return Config{WinsPerYear: 2, MaxSeededWins: 40, StarterAge: 1}
}

// Generator constructs combatants. Wild combatants satisfy every combatant
// invariant and start at full vitality unless the location rolls a
// near-death encounter.
type Generator struct {
	species   map[string]Species
	locations map[string]Location
	seq       *Sequence
	rules     combat.Rules
	cfg       Config
	src       dice.Source
	logger    *zap.Logger
	now       func() time.Time
}

// NewGenerator constructs a Generator.
//
// Precondition: species, locations, seq and src are non-nil.
func NewGenerator(species map[string]Species, locations map[string]Location, seq *Sequence,
	rules combat.Rules, cfg Config, src dice.Source, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		species:   species,
		locations: locations,
		seq:       seq,
		rules:     rules,
		cfg:       cfg,
		src:       src,
		logger:    logger,
		now:       time.Now,
	}
}

// Location returns the named location.
func (g *Generator) Location(id string) (Location, error) {
	l, ok := g.locations[id]
	if !ok {
		return Location{}, fmt.Errorf("location %q: %w", id, ErrUnknownLocation)
	}
	return l, nil
}

// Locations returns every location ID in sorted order.
func (g *Generator) Locations() []string {
	ids := make([]string, 0, len(g.locations))
	for id := range g.locations {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Generate builds a wild combatant for location. A negative age draws from
// the spawn's age range.
//
// Postcondition: the result satisfies all combatant invariants.
func (g *Generator) Generate(location string, age int) (*combat.Combatant, error) {
	loc, err := g.Location(location)
	if err != nil {
		return nil, err
	}
	spawn := g.pickSpawn(loc)
	sp := g.species[spawn.Species]
	if age < 0 {
		age = spawn.MinAge + g.src.Intn(spawn.MaxAge-spawn.MinAge+1)
	}

	c, err := g.build(sp, sp.Name, age)
	if err != nil {
		return nil, err
	}
	if dice.Chance(g.src, loc.NearDeathChance) {
		c.VitalityPercent = dice.Between(g.src, 5, 30)
	}
	wins := min(age*g.cfg.WinsPerYear, g.cfg.MaxSeededWins)
	g.seedHistory(c, loc, wins)

	g.logger.Debug("wild combatant generated",
		zap.Int64("id", c.ID),
		zap.String("species", sp.ID),
		zap.String("location", location),
		zap.Int("age", age),
		zap.Int("seeded_wins", wins),
		zap.Float64("vitality", c.VitalityPercent),
	)
	return c, nil
}

// Starter builds a fresh combatant of speciesID for the player.
func (g *Generator) Starter(speciesID, name string) (*combat.Combatant, error) {
	sp, ok := g.species[speciesID]
	if !ok {
		return nil, fmt.Errorf("species %q: %w", speciesID, ErrUnknownSpecies)
	}
	if name == "" {
		name = sp.Name
	}
	return g.build(sp, name, g.cfg.StarterAge)
}

func (g *Generator) build(sp Species, name string, age int) (*combat.Combatant, error) {
	c, err := combat.New(combat.Params{
		ID:       g.seq.Next(),
		Species:  sp.ID,
		Name:     name,
		Type:     sp.Type,
		AgeYears: age,
		Stats:    sp.StatsAt(age),
		Moves:    sp.MovesAt(age),
	}, g.rules)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", sp.ID, err)
	}
	return c, nil
}

func (g *Generator) pickSpawn(loc Location) Spawn {
	n := g.src.Intn(loc.totalWeight())
	for _, s := range loc.Spawns {
		if n < s.Weight {
			return s
		}
		n -= s.Weight
	}
	return loc.Spawns[len(loc.Spawns)-1]
}

// seedHistory gives an old wild combatant a record of past wins so its
// veterancy reflects its age.
func (g *Generator) seedHistory(c *combat.Combatant, loc Location, wins int) {
	at := g.now().UTC()
	for i := 0; i < wins; i++ {
		c.History.Append(history.Entry{
			ID:                uuid.NewString(),
			Timestamp:         at.Add(-time.Duration(wins-i) * 24 * time.Hour),
			OpponentSpecies:   "unknown",
			OpponentVeterancy: 1,
			Outcome:           history.OutcomeWin,
			Environment:       slices.Clone(loc.Environment),
			Turns:             1,
		})
	}
}
