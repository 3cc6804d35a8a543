package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/faiths/internal/game/combat"
)

func move(t *testing.T, id string) combat.Move {
	t.Helper()
	m, ok := combat.DefaultMoves().Get(id)
	require.True(t, ok, id)
	return m
}

func newResolver(src *seqSrc) *combat.Resolver {
	return combat.NewResolver(combat.DefaultTypeChart(), combat.DefaultRules(), src, nil)
}

func TestResolve_Miss(t *testing.T) {
	atk := newCombatant(t, 1, "Ash", "normal", baseStats())
	def := newCombatant(t, 2, "Zubat", "poison", baseStats())
	src := &seqSrc{floats: []float64{0.99}}
	res := newResolver(src).Resolve(atk, def, move(t, "body_slam"))

	assert.False(t, res.Hit)
	assert.Zero(t, res.Damage)
	assert.Contains(t, res.Narrative, "missed")
	assert.Equal(t, 1, src.draws, "a miss takes only the accuracy draw")
	assert.Equal(t, 100.0, def.VitalityPercent)
}

func TestResolve_HitAtExactAccuracy(t *testing.T) {
	atk := newCombatant(t, 1, "Ash", "normal", baseStats())
	def := newCombatant(t, 2, "Zubat", "poison", baseStats())
	res := newResolver(&seqSrc{floats: []float64{0.95}}).Resolve(atk, def, move(t, "tackle"))
	assert.True(t, res.Hit)
}

func TestResolve_DamageAndLocation(t *testing.T) {
	atk := newCombatant(t, 1, "Ash", "fire", baseStats())
	def := newCombatant(t, 2, "Leaf", "grass", baseStats())
	src := &seqSrc{floats: []float64{0, 1}, ints: []int{7}}
	res := newResolver(src).Resolve(atk, def, move(t, "flamethrower"))

	require.True(t, res.Hit)
	assert.Equal(t, 2.0, res.Multiplier)
	assert.Equal(t, "devastatingly effective", res.EffectText)
	assert.InDelta(t, 90*0.4*2*1.0, res.Damage, 1e-9)
	assert.Equal(t, "fire", res.DamageType)
	assert.Equal(t, combat.LocationForeleg, res.Location)
	assert.True(t, res.Effective())
	assert.Equal(t, 100.0, def.VitalityPercent, "resolution has no side effects")
}

func TestResolve_Immune(t *testing.T) {
	atk := newCombatant(t, 1, "Ash", "normal", baseStats())
	def := newCombatant(t, 2, "Gastly", "ghost", baseStats())
	src := &seqSrc{}
	res := newResolver(src).Resolve(atk, def, move(t, "tackle"))
	assert.True(t, res.Hit)
	assert.Zero(t, res.Damage)
	assert.Equal(t, "no effect", res.EffectText)
	assert.Equal(t, 1, src.draws)
}

func TestResolve_StatusMoveDealsNothing(t *testing.T) {
	atk := newCombatant(t, 1, "Ash", "normal", baseStats())
	def := newCombatant(t, 2, "Zubat", "poison", baseStats())
	res := newResolver(&seqSrc{}).Resolve(atk, def, move(t, "growl"))
	assert.True(t, res.Hit)
	assert.Zero(t, res.Damage)
	assert.False(t, res.Effective())
}

func TestResolve_NarrativeHasNoDigits(t *testing.T) {
	atk := newCombatant(t, 1, "Ash", "normal", baseStats())
	def := newCombatant(t, 2, "Zubat", "poison", baseStats())
	for _, id := range combat.DefaultMoves().IDs() {
		res := newResolver(&seqSrc{floats: []float64{0.5, 0.5}}).Resolve(atk, def, move(t, id))
		assert.NotRegexp(t, `[0-9]`, res.Narrative, id)
	}
}

func TestRawDamage_Property_Monotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p1 := rapid.Float64Range(0, 200).Draw(rt, "p1")
		p2 := rapid.Float64Range(p1, 250).Draw(rt, "p2")
		atk := rapid.IntRange(1, 200).Draw(rt, "atk")
		atk2 := rapid.IntRange(atk, 250).Draw(rt, "atk2")
		def := rapid.IntRange(1, 200).Draw(rt, "def")
		def2 := rapid.IntRange(def, 250).Draw(rt, "def2")
		mult := rapid.SampledFrom([]float64{0, 0.5, 1, 1.5, 2}).Draw(rt, "mult")
		v := rapid.Float64Range(0.85, 1).Draw(rt, "variance")

		base := combat.RawDamage(p1, atk, def, mult, 0.4, v)
		assert.LessOrEqual(rt, base, combat.RawDamage(p2, atk, def, mult, 0.4, v))
		assert.LessOrEqual(rt, base, combat.RawDamage(p1, atk2, def, mult, 0.4, v))
		assert.GreaterOrEqual(rt, base, combat.RawDamage(p1, atk, def2, mult, 0.4, v))
		assert.InDelta(rt, 2*combat.RawDamage(p1, atk, def, 1, 0.4, v), combat.RawDamage(p1, atk, def, 2, 0.4, v), 1e-9)
	})
}

func TestResolve_Property_PowerMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		atk := newCombatant(rt, 1, "Ash", "normal", baseStats())
		def := newCombatant(rt, 2, "Zubat", "poison", baseStats())
		lo := rapid.Float64Range(1, 150).Draw(rt, "lo")
		hi := rapid.Float64Range(lo, 200).Draw(rt, "hi")
		acc := rapid.Float64Range(0, 0.999).Draw(rt, "accuracy_draw")
		variance := rapid.Float64Range(0, 0.999).Draw(rt, "variance_draw")
		mk := func(p float64) combat.Move {
			return combat.Move{ID: "m", Name: "M", Type: "normal", Category: combat.CategoryPhysical, Power: p, Accuracy: 1}
		}
		r1 := newResolver(&seqSrc{floats: []float64{acc, variance}}).Resolve(atk, def, mk(lo))
		r2 := newResolver(&seqSrc{floats: []float64{acc, variance}}).Resolve(atk, def, mk(hi))
		assert.LessOrEqual(rt, r1.Damage, r2.Damage)
	})
}

func narratedMove() combat.Move {
	return combat.Move{
		ID: "tackle", Name: "Tackle", Type: "normal", Category: combat.CategoryPhysical, Power: 40, Accuracy: 0.95,
		HitLines:  []string{"A solid Tackle!", "{actor}'s {move} slams into {target}!"},
		MissLines: []string{"{target} dodges the {move}."},
	}
}

func TestResolve_HitLineVariant(t *testing.T) {
	atk := newCombatant(t, 1, "Ash", "normal", baseStats())
	def := newCombatant(t, 2, "Zubat", "poison", baseStats())
	src := &seqSrc{ints: []int{0, 1}}
	res := newResolver(src).Resolve(atk, def, narratedMove())

	require.True(t, res.Hit)
	assert.Equal(t, "Ash's Tackle slams into Zubat! It was effective.", res.Narrative)
	assert.Equal(t, combat.LocationBody, res.Location)
	assert.Equal(t, 4, src.draws, "the variant is drawn after the hit location")
}

func TestResolve_SingleMissLineTakesNoDraw(t *testing.T) {
	atk := newCombatant(t, 1, "Ash", "normal", baseStats())
	def := newCombatant(t, 2, "Zubat", "poison", baseStats())
	src := &seqSrc{floats: []float64{0.99}}
	res := newResolver(src).Resolve(atk, def, narratedMove())

	assert.False(t, res.Hit)
	assert.Equal(t, "Zubat dodges the Tackle.", res.Narrative)
	assert.Equal(t, 1, src.draws)
}

func TestResolve_ShippedVariantsHaveNoDigits(t *testing.T) {
	moves, err := combat.LoadMoves("../../../content/moves.yaml")
	require.NoError(t, err)
	atk := newCombatant(t, 1, "Ash", "normal", baseStats())
	def := newCombatant(t, 2, "Zubat", "poison", baseStats())
	for _, id := range moves.IDs() {
		m, _ := moves.Get(id)
		for _, acc := range []float64{0, 0.999} {
			for pick := range max(1, len(m.HitLines), len(m.MissLines)) {
				src := &seqSrc{floats: []float64{acc, 0.5}, ints: []int{0, pick}}
				if acc > 0 {
					src.ints = []int{pick}
				}
				res := newResolver(src).Resolve(atk, def, m)
				assert.NotRegexp(t, `[0-9]`, res.Narrative, id)
				assert.NotContains(t, res.Narrative, "{", id)
			}
		}
	}
}
