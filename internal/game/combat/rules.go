package combat

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/faiths/internal/game/history"
)

// Rules holds every tuning constant used by move resolution and damage
// application. Callers obtain a populated value from config; DefaultRules
// mirrors the shipped configuration.
type Rules struct {
	// MaxVitality is the internal damage unit that equals 100 percent vitality.
	MaxVitality float64
	// DamageScale multiplies power * attack / defense.
	DamageScale float64
	// VarianceMin and VarianceMax bound the uniform damage roll.
	VarianceMin float64
	VarianceMax float64

	MinorThreshold        float64
	MajorThreshold        float64
	CatastrophicThreshold float64

	// VoSInjuryFactor scales injury occurrence probability when VoS is held.
	VoSInjuryFactor float64
	// OverkillFraction of MaxVitality must be exceeded beyond the remaining
	// vitality for a zeroing hit to kill.
	OverkillFraction float64
	// MinLethalHit is the smallest raw hit that can ever kill.
	MinLethalHit float64

	HistoryCapacity int
	Decay           history.Decay
}

// DefaultRules returns the stock tuning.
func DefaultRules() Rules {
	return Rules{
		MaxVitality:           100,
		DamageScale:           0.4,
		VarianceMin:           0.85,
		VarianceMax:           1.0,
		MinorThreshold:        60,
		MajorThreshold:        80,
		CatastrophicThreshold: 95,
		VoSInjuryFactor:       0.10,
		OverkillFraction:      0.10,
		MinLethalHit:          50,
		HistoryCapacity:       history.DefaultCapacity,
		Decay:                 history.DefaultDecay(),
	}
}

// Validate reports every inconsistent constant.
func (r Rules) Validate() error {
	var errs []error
	if r.MaxVitality <= 0 {
		errs = append(errs, fmt.Errorf("max vitality must be > 0, got %v", r.MaxVitality))
	}
	if r.DamageScale <= 0 {
		errs = append(errs, fmt.Errorf("damage scale must be > 0, got %v", r.DamageScale))
	}
	if r.VarianceMin <= 0 || r.VarianceMin > r.VarianceMax {
		errs = append(errs, fmt.Errorf("variance range must satisfy 0 < min <= max, got [%v, %v]", r.VarianceMin, r.VarianceMax))
	}
	if !(0 < r.MinorThreshold && r.MinorThreshold < r.MajorThreshold && r.MajorThreshold < r.CatastrophicThreshold) {
		errs = append(errs, fmt.Errorf("injury thresholds must be strictly increasing and positive, got %v/%v/%v",
			r.MinorThreshold, r.MajorThreshold, r.CatastrophicThreshold))
	}
	if r.VoSInjuryFactor < 0 || r.VoSInjuryFactor > 1 {
		errs = append(errs, fmt.Errorf("vos injury factor must be in [0,1], got %v", r.VoSInjuryFactor))
	}
	if r.OverkillFraction < 0 {
		errs = append(errs, fmt.Errorf("overkill fraction must be >= 0, got %v", r.OverkillFraction))
	}
	if r.MinLethalHit < 0 {
		errs = append(errs, fmt.Errorf("min lethal hit must be >= 0, got %v", r.MinLethalHit))
	}
	if r.HistoryCapacity <= 0 {
		errs = append(errs, fmt.Errorf("history capacity must be > 0, got %d", r.HistoryCapacity))
	}
	if r.Decay.BaseWeight <= 0 || r.Decay.HalfLife <= 0 {
		errs = append(errs, fmt.Errorf("decay base weight and half life must be > 0, got %+v", r.Decay))
	}
	return errors.Join(errs...)
}
