package combat

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/game/dice"
	"github.com/cory-johannsen/faiths/internal/game/history"
)

// Terminal classifies the end state produced by a hit.
type Terminal string

const (
	TerminalNone  Terminal = "none"
	TerminalFaint Terminal = "faint"
	TerminalDeath Terminal = "death"
)

// DamageOutcome describes what a single hit did to a combatant.
type DamageOutcome struct {
	// State is the descriptive vitality after the hit.
	State string
	// Injury is non-nil when a permanent injury was suffered.
	Injury *Injury
	// InjuryNarrative is the battle-log line for Injury, or "".
	InjuryNarrative string
	Terminal        Terminal
	// StatusEvents holds history event tags raised by this hit.
	StatusEvents []string
}

// Damager applies raw damage to combatants, rolling for injuries and deciding
// between faint and death.
type Damager struct {
	rules  Rules
	src    dice.Source
	logger *zap.Logger
	now    func() time.Time
}

// NewDamager constructs a Damager.
//
// Precondition: src must be non-nil.
func NewDamager(rules Rules, src dice.Source, logger *zap.Logger) *Damager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Damager{rules: rules, src: src, logger: logger, now: time.Now}
}

// WithClock returns a copy of d stamping injuries with now.
func (d *Damager) WithClock(now func() time.Time) *Damager {
	cp := *d
	cp.now = now
	return &cp
}

// Apply deals amount raw damage of damageType at location to c.
//
// Precondition: c is non-nil with vitality in [0,100]; amount >= 0.
// Postcondition: c.VitalityPercent in [0,100]; at most one injury appended;
// the injury's deltas are already reflected in c.Stats.
func (d *Damager) Apply(c *Combatant, amount float64, damageType, location string) DamageOutcome {
	c.checkInvariant()
	if c.Status != StatusActive {
		return DamageOutcome{State: c.Describe(), Terminal: TerminalNone}
	}
	amount = max(0, amount)
	if location == "" {
		location = LocationBody
	}

	before := c.VitalityPercent
	remaining := before / 100 * d.rules.MaxVitality
	c.VitalityPercent = clampPercent(before - amount/d.rules.MaxVitality*100)

	out := DamageOutcome{Terminal: TerminalNone}
	if before >= 50 && c.VitalityPercent >= 30 && c.VitalityPercent < 50 {
		out.StatusEvents = append(out.StatusEvents, history.EventStaggered)
	}

	if sev, ok := d.tier(amount); ok && d.injuryOccurs(c) {
		inj := Injury{
			Type:       classifyInjury(c.injuries, sev, damageType, location),
			Severity:   sev,
			Location:   location,
			DamageType: damageType,
			CreatedAt:  d.now().UTC(),
		}
		inj.Deltas = InjuryDeltas(inj.Type, sev)
		inj.Description = describeInjury(inj.Type, location)
		c.injuries = append(c.injuries, inj)
		c.Stats = c.Stats.Add(inj.Deltas)

		out.Injury = &inj
		out.InjuryNarrative = injuryNarrative(c.Name, inj)
		out.StatusEvents = append(out.StatusEvents, history.EventInjured)
		switch inj.Type {
		case InjuryLostLimb:
			out.StatusEvents = append(out.StatusEvents, history.EventLimbLost)
		case InjuryLostEye:
			out.StatusEvents = append(out.StatusEvents, history.EventBlinded)
		}
		d.logger.Warn("permanent injury",
			zap.Int64("combatant", c.ID),
			zap.String("type", string(inj.Type)),
			zap.String("severity", string(sev)),
			zap.String("location", location),
			zap.Float64("amount", amount),
		)
	}

	if c.VitalityPercent == 0 {
		if amount >= remaining+d.rules.OverkillFraction*d.rules.MaxVitality && amount >= d.rules.MinLethalHit {
			c.Status = StatusDead
			out.Terminal = TerminalDeath
		} else {
			c.Status = StatusFainted
			out.Terminal = TerminalFaint
		}
	}
	out.State = c.Describe()
	c.checkInvariant()
	return out
}

// tier returns the highest injury tier crossed by a raw hit.
func (d *Damager) tier(amount float64) (Severity, bool) {
	switch {
	case amount >= d.rules.CatastrophicThreshold:
		return SeverityCatastrophic, true
	case amount >= d.rules.MajorThreshold:
		return SeverityMajor, true
	case amount >= d.rules.MinorThreshold:
		return SeverityMinor, true
	}
	return "", false
}

// injuryOccurs is certain without VoS; with VoS it consumes one draw.
func (d *Damager) injuryOccurs(c *Combatant) bool {
	if !c.vos {
		return true
	}
	return dice.Chance(d.src, d.rules.VoSInjuryFactor)
}
