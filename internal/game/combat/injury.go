package combat

import (
	"math"
	"strings"
	"time"
)

// Severity is the tier of an injury.
type Severity string

const (
	SeverityMinor        Severity = "minor"
	SeverityMajor        Severity = "major"
	SeverityCatastrophic Severity = "catastrophic"
)

// Valid reports whether s is a known tier.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityMajor, SeverityCatastrophic:
		return true
	}
	return false
}

// InjuryType classifies the lasting effect of an injury.
type InjuryType string

const (
	InjuryDeepScar        InjuryType = "deep_scar"
	InjuryBurnScar        InjuryType = "burn_scar"
	InjuryLostEye         InjuryType = "lost_eye"
	InjuryBrokenLimb      InjuryType = "broken_limb"
	InjuryLostLimb        InjuryType = "lost_limb"
	InjuryEmotionalTrauma InjuryType = "emotional_trauma"
)

// Hit locations.
const (
	LocationBody    = "body"
	LocationFace    = "face"
	LocationForeleg = "foreleg"
	LocationHindleg = "hindleg"
)

func isLimb(location string) bool {
	return location == LocationForeleg || location == LocationHindleg
}

// Injury is a permanent consequence of a single heavy hit. Once recorded it
// is never modified or removed.
type Injury struct {
	Type        InjuryType `json:"type"`
	Severity    Severity   `json:"severity"`
	Location    string     `json:"location"`
	DamageType  string     `json:"damage_type"`
	CreatedAt   time.Time  `json:"created_at"`
	Deltas      Stats      `json:"deltas"`
	Description string     `json:"description"`
}

// baseDeltas are the major-tier stat changes per injury type.
var baseDeltas = map[InjuryType]Stats{
	InjuryDeepScar:        {Attack: 5, Speed: -3},
	InjuryBurnScar:        {Attack: 3, Defense: -5},
	InjuryLostEye:         {Attack: -6, Defense: -2},
	InjuryBrokenLimb:      {Defense: -2, Speed: -8},
	InjuryLostLimb:        {Defense: -10, Speed: -15},
	InjuryEmotionalTrauma: {Attack: -3, Speed: -2},
}

func severityScale(s Severity) float64 {
	switch s {
	case SeverityMinor:
		return 0.5
	case SeverityCatastrophic:
		return 1.5
	default:
		return 1
	}
}

// InjuryDeltas returns the stat changes for an injury of type t at tier s.
func InjuryDeltas(t InjuryType, s Severity) Stats {
	base := baseDeltas[t]
	k := severityScale(s)
	scale := func(v int) int { return int(math.Round(float64(v) * k)) }
	return Stats{Attack: scale(base.Attack), Defense: scale(base.Defense), Speed: scale(base.Speed)}
}

// classifyInjury picks the injury type from the tier, damage type, location
// and the combatant's earlier injuries.
func classifyInjury(prior []Injury, sev Severity, damageType, location string) InjuryType {
	if sev == SeverityCatastrophic {
		if location == LocationFace && hasInjuryAt(prior, LocationFace) {
			return InjuryLostEye
		}
		if isLimb(location) && hasInjuryAt(prior, location) {
			return InjuryLostLimb
		}
	}
	if isLimb(location) && sev != SeverityMinor {
		return InjuryBrokenLimb
	}
	switch damageType {
	case "fire":
		return InjuryBurnScar
	case "psychic", "ghost":
		return InjuryEmotionalTrauma
	}
	return InjuryDeepScar
}

func hasInjuryAt(prior []Injury, location string) bool {
	for _, inj := range prior {
		if inj.Location == location {
			return true
		}
	}
	return false
}

func describeInjury(t InjuryType, location string) string {
	switch t {
	case InjuryBurnScar:
		return "a burn scar mottles its " + location
	case InjuryLostEye:
		return "one eye is gone, leaving a ruined socket"
	case InjuryBrokenLimb:
		return "its " + location + " is broken and set badly"
	case InjuryLostLimb:
		return "its " + location + " has been torn away"
	case InjuryEmotionalTrauma:
		return "it flinches at shadows that are not there"
	default:
		return "a deep scar runs across its " + location
	}
}

// injuryNarrative is the battle-log line shown when an injury is suffered.
func injuryNarrative(name string, inj Injury) string {
	switch inj.Type {
	case InjuryLostEye:
		return name + " has been blinded in one eye!"
	case InjuryLostLimb:
		return name + " has lost its " + inj.Location + "!"
	case InjuryBrokenLimb:
		return name + "'s " + inj.Location + " snaps under the blow!"
	case InjuryBurnScar:
		return name + " is scarred by the flames!"
	case InjuryEmotionalTrauma:
		return name + " is shaken to its core!"
	default:
		return name + " suffers a deep wound to the " + inj.Location + "!"
	}
}

// InjuryNotes summarises permanent injuries in descriptive text, or "" when
// there are none.
func (c *Combatant) InjuryNotes() string {
	if len(c.injuries) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c.injuries))
	for _, inj := range c.injuries {
		parts = append(parts, inj.Description)
	}
	return strings.Join(parts, "; ")
}
