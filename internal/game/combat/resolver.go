package combat

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/game/dice"
)

// MoveResult is the outcome of one move. Damage is for internal use by the
// Damager only; presentation code must use Narrative and EffectText.
type MoveResult struct {
	Move       Move
	Hit        bool
	Narrative  string
	EffectText string
	Multiplier float64
	Damage     float64
	DamageType string
	Location   string
}

// Effective reports whether the move landed at better than neutral effectiveness.
func (r MoveResult) Effective() bool {
	return r.Hit && r.Multiplier > 1
}

type locationWeight struct {
	location string
	weight   int
}

var hitLocations = []locationWeight{
	{LocationBody, 5},
	{LocationFace, 2},
	{LocationForeleg, 2},
	{LocationHindleg, 1},
}

func totalLocationWeight() int {
	n := 0
	for _, lw := range hitLocations {
		n += lw.weight
	}
	return n
}

// Resolver computes move outcomes. It has no side effects on combatants.
type Resolver struct {
	chart  *TypeChart
	rules  Rules
	src    dice.Source
	logger *zap.Logger
}

// NewResolver constructs a Resolver.
//
// Precondition: chart and src must be non-nil.
func NewResolver(chart *TypeChart, rules Rules, src dice.Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{chart: chart, rules: rules, src: src, logger: logger}
}

// RawDamage is the damage formula: linear in power, attack and multiplier,
// inversely proportional to defense.
//
// Precondition: def >= 1.
// Postcondition: result >= 0.
func RawDamage(power float64, atk, def int, mult, scale, variance float64) float64 {
	if power <= 0 || mult <= 0 {
		return 0
	}
	return power * (float64(atk) / float64(max(1, def))) * scale * mult * variance
}

// Resolve performs the accuracy check and, on a hit, computes effectiveness
// and raw damage. Draw order: accuracy, then variance and hit location for
// damaging hits only, then the narration variant when a move has several.
//
// Precondition: attacker, defender non-nil; move valid.
// Postcondition: Damage >= 0; Damage == 0 when !Hit.
func (r *Resolver) Resolve(attacker, defender *Combatant, move Move) MoveResult {
	res := MoveResult{Move: move, DamageType: move.Type}
	if draw := r.src.Float64(); draw > move.Accuracy {
		res.Narrative = r.line(move.MissLines, attacker, defender, move)
		if res.Narrative == "" {
			res.Narrative = fmt.Sprintf("%s used %s, but the attack missed.", attacker.Name, move.Name)
		}
		r.logger.Debug("move missed",
			zap.String("attacker", attacker.Name),
			zap.String("move", move.ID),
			zap.Float64("draw", draw),
		)
		return res
	}
	res.Hit = true
	if move.Category == CategoryStatus {
		res.Multiplier = 1
		res.Narrative = r.opening(attacker, defender, move)
		return res
	}

	res.Multiplier = r.chart.Multiplier(move.Type, defender.Type)
	res.EffectText = EffectivenessText(res.Multiplier)
	if move.Power > 0 && res.Multiplier > 0 {
		variance := dice.Between(r.src, r.rules.VarianceMin, r.rules.VarianceMax)
		res.Damage = RawDamage(move.Power, attacker.Stats.Attack, defender.Stats.Defense,
			res.Multiplier, r.rules.DamageScale, variance)
		res.Location = r.drawLocation()
	}
	opening := r.opening(attacker, defender, move)
	if res.Multiplier == 0 {
		res.Narrative = fmt.Sprintf("%s It had no effect on %s.", opening, defender.Name)
	} else {
		res.Narrative = fmt.Sprintf("%s It was %s.", opening, res.EffectText)
	}
	r.logger.Debug("move resolved",
		zap.String("attacker", attacker.Name),
		zap.String("defender", defender.Name),
		zap.String("move", move.ID),
		zap.Float64("multiplier", res.Multiplier),
		zap.Float64("damage", res.Damage),
		zap.String("location", res.Location),
	)
	return res
}

// opening is the first sentence of a hit: a configured hit line, or the
// plain "X used Y." form.
func (r *Resolver) opening(attacker, defender *Combatant, move Move) string {
	if l := r.line(move.HitLines, attacker, defender, move); l != "" {
		return l
	}
	return fmt.Sprintf("%s used %s.", attacker.Name, move.Name)
}

// line picks one narration variant. A single variant takes no draw, so
// moves without variants keep the draw order unchanged.
func (r *Resolver) line(lines []string, attacker, defender *Combatant, move Move) string {
	var l string
	switch len(lines) {
	case 0:
		return ""
	case 1:
		l = lines[0]
	default:
		l = lines[r.src.Intn(len(lines))]
	}
	return strings.NewReplacer(
		"{actor}", attacker.Name,
		"{target}", defender.Name,
		"{move}", move.Name,
	).Replace(l)
}

func (r *Resolver) drawLocation() string {
	n := r.src.Intn(totalLocationWeight())
	for _, lw := range hitLocations {
		if n < lw.weight {
			return lw.location
		}
		n -= lw.weight
	}
	return LocationBody
}
