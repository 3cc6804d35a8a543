// Package combat implements move resolution and combatant state for the
// veteran battle engine: descriptive vitality, permanent injuries, and the
// death-versus-faint rule. Numbers stay inside this package's callers; anything
// meant for the player goes through the descriptive helpers.
package combat

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/faiths/internal/game/history"
)

// MaxKnownMoves bounds the number of moves a combatant can know.
const MaxKnownMoves = 4

// ErrDead is returned when an operation requires a living combatant.
var ErrDead = errors.New("combatant is dead")

// Status is the coarse life state of a combatant.
type Status string

const (
	StatusActive  Status = "active"
	StatusFainted Status = "fainted"
	StatusDead    Status = "dead"
)

// Stats holds the base combat attributes.
//
// Invariant: every field is >= 1 on a live Combatant.
type Stats struct {
	Attack  int `json:"attack" yaml:"attack"`
	Defense int `json:"defense" yaml:"defense"`
	Speed   int `json:"speed" yaml:"speed"`
}

// Add returns s shifted by d with every field floored at 1.
func (s Stats) Add(d Stats) Stats {
	return Stats{
		Attack:  max(1, s.Attack+d.Attack),
		Defense: max(1, s.Defense+d.Defense),
		Speed:   max(1, s.Speed+d.Speed),
	}
}

// IsZero reports whether every delta is zero.
func (s Stats) IsZero() bool { return s == Stats{} }

// Params describes a combatant to construct.
type Params struct {
	ID       int64
	Species  string
	Name     string
	Type     string
	AgeYears int
	Stats    Stats
	Moves    []string
}

// Combatant is one creature in or out of battle.
//
// VitalityPercent is the only health measure and is always a percentage of an
// implicit maximum; mutate it through Damager.Apply and Heal only.
type Combatant struct {
	ID              int64
	Species         string
	Name            string
	Type            string
	AgeYears        int
	Stats           Stats
	Moves           []string
	VitalityPercent float64
	Status          Status
	History         *history.Log

	injuries []Injury
	vos      bool
}

// New builds a healthy combatant with an empty history.
//
// Precondition: p.Name non-empty; each stat >= 1; 1 <= len(p.Moves) <= MaxKnownMoves.
// Postcondition: VitalityPercent == 100, Status == StatusActive, History empty.
func New(p Params, rules Rules) (*Combatant, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("combatant: name must not be empty")
	}
	if p.Stats.Attack < 1 || p.Stats.Defense < 1 || p.Stats.Speed < 1 {
		return nil, fmt.Errorf("combatant %q: stats must be >= 1, got %+v", p.Name, p.Stats)
	}
	if len(p.Moves) == 0 || len(p.Moves) > MaxKnownMoves {
		return nil, fmt.Errorf("combatant %q: must know 1-%d moves, got %d", p.Name, MaxKnownMoves, len(p.Moves))
	}
	return &Combatant{
		ID:              p.ID,
		Species:         p.Species,
		Name:            p.Name,
		Type:            p.Type,
		AgeYears:        p.AgeYears,
		Stats:           p.Stats,
		Moves:           slices.Clone(p.Moves),
		VitalityPercent: 100,
		Status:          StatusActive,
		History:         history.NewLog(rules.HistoryCapacity, rules.Decay),
	}, nil
}

// Injuries returns a copy of the permanent injuries in the order they were suffered.
func (c *Combatant) Injuries() []Injury {
	return slices.Clone(c.injuries)
}

// HasVoS reports whether the Will of the Struggler has been granted.
func (c *Combatant) HasVoS() bool { return c.vos }

// GrantVoS sets the Will of the Struggler flag. It can only ever be granted once.
//
// Postcondition: HasVoS() is true; returns false if it was already set.
func (c *Combatant) GrantVoS() bool {
	if c.vos {
		return false
	}
	c.vos = true
	return true
}

// IsDead reports whether the combatant has been permanently removed from play.
func (c *Combatant) IsDead() bool { return c.Status == StatusDead }

// CanFight reports whether the combatant may enter an encounter.
func (c *Combatant) CanFight() bool { return c.Status == StatusActive && c.VitalityPercent > 0 }

// Heal restores percent vitality; a fainted combatant regains consciousness.
//
// Precondition: percent >= 0.
// Postcondition: VitalityPercent <= 100; returns ErrDead for dead combatants.
func (c *Combatant) Heal(percent float64) error {
	c.checkInvariant()
	if c.IsDead() {
		return fmt.Errorf("healing %q: %w", c.Name, ErrDead)
	}
	c.VitalityPercent = clampPercent(c.VitalityPercent + max(0, percent))
	if c.VitalityPercent > 0 {
		c.Status = StatusActive
	}
	return nil
}

// Describe returns the descriptive state for the current vitality band.
// This is the only view of health that may be shown to the player.
func (c *Combatant) Describe() string {
	switch c.Status {
	case StatusDead:
		return "killed"
	case StatusFainted:
		return "fainted"
	}
	return DescribeVitality(c.VitalityPercent)
}

// DescribeWithInjuries returns Describe followed by notes on permanent injuries.
func (c *Combatant) DescribeWithInjuries() string {
	notes := c.InjuryNotes()
	if notes == "" {
		return c.Describe()
	}
	return c.Describe() + ", " + notes
}

// DescribeVitality maps a vitality percentage onto its fixed descriptive band.
// The bands are total and non-overlapping over [0, 100].
func DescribeVitality(percent float64) string {
	switch {
	case percent >= 90:
		return "standing strong, ready for battle"
	case percent >= 70:
		return "standing strong but breathing hard"
	case percent >= 50:
		return "favoring one side, visibly hurt"
	case percent >= 30:
		return "staggered — switch window opens"
	case percent >= 10:
		return "on the brink of collapse"
	default:
		return "about to fall — retreat now"
	}
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// checkInvariant panics when vitality has escaped [0, 100]. Clamping at every
// mutation site keeps this unreachable outside of programmer error.
func (c *Combatant) checkInvariant() {
	if c.VitalityPercent < 0 || c.VitalityPercent > 100 || c.VitalityPercent != c.VitalityPercent {
		panic(fmt.Sprintf("combat: invariant violated: combatant %d vitality %v outside [0,100]", c.ID, c.VitalityPercent))
	}
}
