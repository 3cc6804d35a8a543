// Package history implements the bounded, age-decayed battle log that replaces
// experience points. Entries are immutable once appended; the log only ever
// appends new entries and evicts the oldest.
package history

import (
	"slices"
	"time"
)

// Outcome is the terminal tag recorded for one finished encounter.
type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomeRetreat Outcome = "retreat"
	OutcomeFaint   Outcome = "faint"
	OutcomeDeath   Outcome = "death"
)

// Valid reports whether o is one of the four known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWin, OutcomeRetreat, OutcomeFaint, OutcomeDeath:
		return true
	default:
		return false
	}
}

// Status event tags recorded on an Entry.
const (
	EventStaggered = "staggered"
	EventInjured   = "injured"
	EventLimbLost  = "limb_lost"
	EventBlinded   = "blinded"
)

// MoveUse records one move the owner used and whether it landed super-effectively.
type MoveUse struct {
	Move      string `json:"move"`
	Effective bool   `json:"effective"`
}

// Damage describes damage taken during an encounter.
type Damage struct {
	Amount   float64 `json:"amount"`
	Type     string  `json:"type"`
	Location string  `json:"location"`
}

// Entry is the record of one completed encounter from its owner's perspective.
type Entry struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	OpponentSpecies   string    `json:"opponent_species"`
	OpponentName      string    `json:"opponent_name"`
	OpponentVeterancy float64   `json:"opponent_veterancy"`
	Moves             []MoveUse `json:"moves_used"`
	DamageTaken       Damage    `json:"damage_taken"`
	DamageDealt       float64   `json:"damage_dealt"`
	StatusEvents      []string  `json:"status_events"`
	Outcome           Outcome   `json:"outcome"`
	Tactics           []string  `json:"player_tactics"`
	Environment       []string  `json:"environment"`
	Turns             int       `json:"turns"`
}

// Clone returns a deep copy of e so callers can never alias a stored entry.
func (e Entry) Clone() Entry {
	out := e
	out.Moves = slices.Clone(e.Moves)
	out.StatusEvents = slices.Clone(e.StatusEvents)
	out.Tactics = slices.Clone(e.Tactics)
	out.Environment = slices.Clone(e.Environment)
	return out
}

// EffectiveMoves counts the moves recorded as super-effective.
func (e Entry) EffectiveMoves() int {
	n := 0
	for _, m := range e.Moves {
		if m.Effective {
			n++
		}
	}
	return n
}

// DistinctTactics counts unique tactic tags.
func (e Entry) DistinctTactics() int {
	seen := make(map[string]struct{}, len(e.Tactics))
	for _, t := range e.Tactics {
		seen[t] = struct{}{}
	}
	return len(seen)
}

// CountEvents returns how many status events equal tag.
func (e Entry) CountEvents(tag string) int {
	n := 0
	for _, ev := range e.StatusEvents {
		if ev == tag {
			n++
		}
	}
	return n
}
