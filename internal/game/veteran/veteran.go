// Package veteran derives a combatant's progression from its battle history
// and permanent injuries. Scores are always recomputed from scratch and never
// stored on the combatant.
package veteran

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/history"
)

// Weights holds every scoring constant.
type Weights struct {
	WinReward          float64
	VeterancyFloor     float64
	VeterancyScale     float64
	TacticBonus        float64
	EffectiveMoveBonus float64
	DamageTakenWeight  float64
	FaintPenalty       float64
	RetreatPenalty     float64
	DeathPenalty       float64
	StaggerPenalty     float64
	SevereEventPenalty float64
	MinorInjury        float64
	MajorInjury        float64
	CatastrophicInjury float64
}

// DefaultWeights returns the stock scoring constants.
func DefaultWeights() Weights {
	return Weights{
		WinReward:          10,
		VeterancyFloor:     0.25,
		VeterancyScale:     100,
		TacticBonus:        2,
		EffectiveMoveBonus: 3,
		DamageTakenWeight:  0.5,
		FaintPenalty:       15,
		RetreatPenalty:     5,
		DeathPenalty:       100,
		StaggerPenalty:     5,
		SevereEventPenalty: 30,
		MinorInjury:        5,
		MajorInjury:        20,
		CatastrophicInjury: 50,
	}
}

// Validate reports every out-of-range weight.
func (w Weights) Validate() error {
	var errs []error
	if w.VeterancyFloor <= 0 {
		errs = append(errs, fmt.Errorf("veterancy floor must be > 0, got %v", w.VeterancyFloor))
	}
	if w.VeterancyScale <= 0 {
		errs = append(errs, fmt.Errorf("veterancy scale must be > 0, got %v", w.VeterancyScale))
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"win reward", w.WinReward},
		{"tactic bonus", w.TacticBonus},
		{"effective move bonus", w.EffectiveMoveBonus},
		{"damage taken weight", w.DamageTakenWeight},
		{"faint penalty", w.FaintPenalty},
		{"retreat penalty", w.RetreatPenalty},
		{"death penalty", w.DeathPenalty},
		{"stagger penalty", w.StaggerPenalty},
		{"severe event penalty", w.SevereEventPenalty},
	} {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %v", f.name, f.v))
		}
	}
	if !(0 < w.MinorInjury && w.MinorInjury < w.MajorInjury && w.MajorInjury < w.CatastrophicInjury) {
		errs = append(errs, fmt.Errorf("injury weights must be positive and increasing, got %v/%v/%v",
			w.MinorInjury, w.MajorInjury, w.CatastrophicInjury))
	}
	return errors.Join(errs...)
}

// Score is the breakdown of a combatant's progression.
type Score struct {
	CombatExperience float64
	Adaptation       float64
	Trauma           float64
	InjurySeverity   float64
	Net              float64
}

// Engine computes veteran scores.
type Engine struct {
	w      Weights
	logger *zap.Logger
}

// NewEngine constructs an Engine.
func NewEngine(w Weights, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{w: w, logger: logger}
}

// Weights returns the engine's scoring constants.
func (e *Engine) Weights() Weights { return e.w }

// Compute scores c from its decayed history and all of its injuries.
//
// Precondition: c non-nil.
// Postcondition: pure; repeated calls on unchanged state return identical values.
func (e *Engine) Compute(c *combat.Combatant) Score {
	var weighted []history.Weighted
	if c.History != nil {
		weighted = c.History.Weighted()
	}
	return e.Score(weighted, c.Injuries())
}

// Score aggregates weighted history entries and injuries.
func (e *Engine) Score(entries []history.Weighted, injuries []combat.Injury) Score {
	var s Score
	for _, we := range entries {
		exp, adapt, trauma := e.entryTerms(we.Entry)
		s.CombatExperience += we.Weight * exp
		s.Adaptation += we.Weight * adapt
		s.Trauma += we.Weight * trauma
	}
	for _, inj := range injuries {
		s.InjurySeverity += e.injuryWeight(inj.Severity)
	}
	s.Net = (s.CombatExperience + s.Adaptation) - (s.Trauma + s.InjurySeverity)
	return s
}

// EntryContribution returns the undecayed experience, adaptation and trauma
// terms a single entry contributes.
func (e *Engine) EntryContribution(entry history.Entry) Score {
	exp, adapt, trauma := e.entryTerms(entry)
	return Score{
		CombatExperience: exp,
		Adaptation:       adapt,
		Trauma:           trauma,
		Net:              exp + adapt - trauma,
	}
}

func (e *Engine) entryTerms(en history.Entry) (exp, adapt, trauma float64) {
	if en.Outcome == history.OutcomeWin {
		exp = e.w.WinReward * max(en.OpponentVeterancy, e.w.VeterancyFloor)
	}
	adapt = e.w.TacticBonus*float64(en.DistinctTactics()) + e.w.EffectiveMoveBonus*float64(en.EffectiveMoves())

	trauma = e.w.DamageTakenWeight * en.DamageTaken.Amount
	switch en.Outcome {
	case history.OutcomeFaint:
		trauma += e.w.FaintPenalty
	case history.OutcomeRetreat:
		trauma += e.w.RetreatPenalty
	case history.OutcomeDeath:
		trauma += e.w.DeathPenalty
	}
	trauma += e.w.StaggerPenalty * float64(en.CountEvents(history.EventStaggered))
	severe := en.CountEvents(history.EventLimbLost) + en.CountEvents(history.EventBlinded)
	trauma += e.w.SevereEventPenalty * float64(severe)
	return exp, adapt, trauma
}

func (e *Engine) injuryWeight(s combat.Severity) float64 {
	switch s {
	case combat.SeverityMinor:
		return e.w.MinorInjury
	case combat.SeverityMajor:
		return e.w.MajorInjury
	case combat.SeverityCatastrophic:
		return e.w.CatastrophicInjury
	}
	return 0
}

// Veterancy estimates how dangerous c is as an opponent. The estimate is
// recorded on the other side's history entry.
//
// Postcondition: result >= VeterancyFloor.
func (e *Engine) Veterancy(c *combat.Combatant) float64 {
	return e.VeterancyOf(e.Compute(c))
}

// VeterancyOf maps a computed score onto the veterancy scale.
func (e *Engine) VeterancyOf(s Score) float64 {
	return max(e.w.VeterancyFloor, 1+s.Net/e.w.VeterancyScale)
}

// Recompute scores c and logs the result. Used at the end of every encounter.
func (e *Engine) Recompute(c *combat.Combatant) Score {
	s := e.Compute(c)
	e.logger.Info("veteran score recomputed",
		zap.Int64("combatant", c.ID),
		zap.String("name", c.Name),
		zap.Float64("experience", s.CombatExperience),
		zap.Float64("adaptation", s.Adaptation),
		zap.Float64("trauma", s.Trauma),
		zap.Float64("injury", s.InjurySeverity),
		zap.Float64("net", s.Net),
		zap.String("standing", Describe(s.Net)),
	)
	return s
}

// Describe turns a net score into progression text. It never exposes the number.
func Describe(net float64) string {
	switch {
	case net >= 150:
		return "a battle-hardened veteran"
	case net >= 60:
		return "a seasoned survivor"
	case net >= 15:
		return "growing more confident with each fight"
	case net >= -15:
		return "still finding its footing"
	case net >= -60:
		return "shaken by what it has endured"
	default:
		return "haunted and hesitant"
	}
}
