package combat

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/faiths/internal/game/history"
)

// Snapshot is the complete persisted state of a combatant.
type Snapshot struct {
	ID              int64           `json:"id"`
	Species         string          `json:"species"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	AgeYears        int             `json:"age_years"`
	Stats           Stats           `json:"stats"`
	Moves           []string        `json:"moves"`
	VitalityPercent float64         `json:"vitality_percent"`
	Status          Status          `json:"status"`
	Injuries        []Injury        `json:"injuries"`
	VoS             bool            `json:"vos"`
	History         []history.Entry `json:"history"`
	BattlesFought   int             `json:"battles_fought"`
}

// Snapshot captures c. The result shares no memory with c.
func (c *Combatant) Snapshot() Snapshot {
	s := Snapshot{
		ID:              c.ID,
		Species:         c.Species,
		Name:            c.Name,
		Type:            c.Type,
		AgeYears:        c.AgeYears,
		Stats:           c.Stats,
		Moves:           slices.Clone(c.Moves),
		VitalityPercent: c.VitalityPercent,
		Status:          c.Status,
		Injuries:        c.Injuries(),
		VoS:             c.vos,
	}
	if c.History != nil {
		s.History = c.History.Entries()
		s.BattlesFought = c.History.Total()
	}
	return s
}

// Restore rebuilds a combatant from a snapshot, validating every invariant.
//
// Postcondition: returns an error instead of a combatant whose vitality,
// stats, moves or status are out of range, or whose status disagrees with
// its vitality.
func Restore(s Snapshot, rules Rules) (*Combatant, error) {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if s.VitalityPercent < 0 || s.VitalityPercent > 100 {
		errs = append(errs, fmt.Errorf("vitality %v outside [0,100]", s.VitalityPercent))
	}
	if s.Stats.Attack < 1 || s.Stats.Defense < 1 || s.Stats.Speed < 1 {
		errs = append(errs, fmt.Errorf("stats must be >= 1, got %+v", s.Stats))
	}
	if len(s.Moves) == 0 || len(s.Moves) > MaxKnownMoves {
		errs = append(errs, fmt.Errorf("must know 1-%d moves, got %d", MaxKnownMoves, len(s.Moves)))
	}
	switch s.Status {
	case StatusActive:
		if s.VitalityPercent == 0 {
			errs = append(errs, errors.New("active combatant must have vitality above 0"))
		}
	case StatusFainted, StatusDead:
		if s.VitalityPercent != 0 {
			errs = append(errs, fmt.Errorf("%s combatant must have vitality 0, got %v", s.Status, s.VitalityPercent))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown status %q", s.Status))
	}
	for i, inj := range s.Injuries {
		if !inj.Severity.Valid() {
			errs = append(errs, fmt.Errorf("injury %d: unknown severity %q", i, inj.Severity))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("restoring combatant %d: %w", s.ID, err)
	}

	log := history.NewLog(rules.HistoryCapacity, rules.Decay)
	log.Restore(s.History, s.BattlesFought)
	return &Combatant{
		ID:              s.ID,
		Species:         s.Species,
		Name:            s.Name,
		Type:            s.Type,
		AgeYears:        s.AgeYears,
		Stats:           s.Stats,
		Moves:           slices.Clone(s.Moves),
		VitalityPercent: s.VitalityPercent,
		Status:          s.Status,
		History:         log,
		injuries:        slices.Clone(s.Injuries),
		vos:             s.VoS,
	}, nil
}
