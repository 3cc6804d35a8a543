package veteran_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/history"
	"github.com/cory-johannsen/faiths/internal/game/veteran"
)

type zeroSrc struct{}

func (zeroSrc) Intn(int) int      { return 0 }
func (zeroSrc) Float64() float64 { return 0 }

func newCombatant(t *testing.T) *combat.Combatant {
	t.Helper()
	c, err := combat.New(combat.Params{
		ID:    1,
		Name:  "Ash",
		Type:  "normal",
		Stats: combat.Stats{Attack: 50, Defense: 50, Speed: 50},
		Moves: []string{"tackle"},
	}, combat.DefaultRules())
	require.NoError(t, err)
	return c
}

func winEntry() history.Entry {
	return history.Entry{
		OpponentSpecies:   "zubat",
		OpponentVeterancy: 1,
		Moves:             []history.MoveUse{{Move: "tackle"}, {Move: "bite", Effective: true}},
		Outcome:           history.OutcomeWin,
		Tactics:           []string{"aggressive", "varied"},
		DamageTaken:       history.Damage{Amount: 10, Type: "normal", Location: "body"},
	}
}

func TestCompute_EmptyIsNeutral(t *testing.T) {
	e := veteran.NewEngine(veteran.DefaultWeights(), nil)
	s := e.Compute(newCombatant(t))
	assert.Equal(t, veteran.Score{}, s)
	assert.Equal(t, "still finding its footing", veteran.Describe(s.Net))
}

func TestCompute_Idempotent(t *testing.T) {
	c := newCombatant(t)
	for i := 0; i < 7; i++ {
		c.History.Append(winEntry())
	}
	combat.NewDamager(combat.DefaultRules(), zeroSrc{}, nil).Apply(c, 85, "fire", combat.LocationBody)
	e := veteran.NewEngine(veteran.DefaultWeights(), nil)
	assert.Equal(t, e.Compute(c), e.Compute(c))
}

func TestCompute_ScenarioD_WinsCompound(t *testing.T) {
	c := newCombatant(t)
	e := veteran.NewEngine(veteran.DefaultWeights(), nil)

	c.History.Append(winEntry())
	first := e.Compute(c)
	for i := 0; i < 4; i++ {
		c.History.Append(winEntry())
	}
	fifth := e.Compute(c)

	assert.Greater(t, fifth.Net, first.Net)
	assert.Greater(t, fifth.CombatExperience, first.CombatExperience)
}

func TestEntryContribution_ScenarioE_RetreatVersusFaint(t *testing.T) {
	e := veteran.NewEngine(veteran.DefaultWeights(), nil)
	base := history.Entry{
		OpponentVeterancy: 1.2,
		DamageTaken:       history.Damage{Amount: 20},
		Tactics:           []string{"cautious"},
	}
	retreat := base
	retreat.Outcome = history.OutcomeRetreat
	faint := base
	faint.Outcome = history.OutcomeFaint

	r := e.EntryContribution(retreat)
	f := e.EntryContribution(faint)
	assert.Zero(t, r.CombatExperience)
	assert.Greater(t, r.Trauma, 0.0)
	assert.Less(t, r.Trauma, f.Trauma)
}

func TestEntryContribution_Terms(t *testing.T) {
	e := veteran.NewEngine(veteran.DefaultWeights(), nil)
	en := winEntry()
	en.OpponentVeterancy = 1.5
	en.StatusEvents = []string{history.EventStaggered, history.EventLimbLost}
	s := e.EntryContribution(en)
	assert.InDelta(t, 15.0, s.CombatExperience, 1e-9)
	assert.InDelta(t, 2*2+3*1, s.Adaptation, 1e-9)
	assert.InDelta(t, 0.5*10+5+30, s.Trauma, 1e-9)
}

func TestEntryContribution_WeakOpponentFloor(t *testing.T) {
	e := veteran.NewEngine(veteran.DefaultWeights(), nil)
	en := winEntry()
	en.OpponentVeterancy = 0
	assert.InDelta(t, 2.5, e.EntryContribution(en).CombatExperience, 1e-9)
}

func TestCompute_InjuriesNeverDecay(t *testing.T) {
	c := newCombatant(t)
	combat.NewDamager(combat.DefaultRules(), zeroSrc{}, nil).Apply(c, 96, "normal", combat.LocationBody)
	e := veteran.NewEngine(veteran.DefaultWeights(), nil)
	before := e.Compute(c).InjurySeverity
	for i := 0; i < 250; i++ {
		c.History.Append(winEntry())
	}
	assert.Equal(t, 50.0, before)
	assert.Equal(t, before, e.Compute(c).InjurySeverity)
}

func TestVeterancy_Floor(t *testing.T) {
	c := newCombatant(t)
	e := veteran.NewEngine(veteran.DefaultWeights(), nil)
	assert.InDelta(t, 1.0, e.Veterancy(c), 1e-9)
	assert.Equal(t, 0.25, e.VeterancyOf(veteran.Score{Net: -1000}))
}

func TestDescribe_Bands(t *testing.T) {
	assert.Equal(t, "a battle-hardened veteran", veteran.Describe(500))
	assert.Equal(t, "a seasoned survivor", veteran.Describe(60))
	assert.Equal(t, "growing more confident with each fight", veteran.Describe(20))
	assert.Equal(t, "shaken by what it has endured", veteran.Describe(-30))
	assert.Equal(t, "haunted and hesitant", veteran.Describe(-61))
}

func TestDescribe_Property_NoDigits(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		net := rapid.Float64Range(-1e6, 1e6).Draw(rt, "net")
		assert.NotRegexp(rt, `[0-9]`, veteran.Describe(net))
	})
}

func TestWeights_Validate(t *testing.T) {
	require.NoError(t, veteran.DefaultWeights().Validate())
	w := veteran.DefaultWeights()
	w.FaintPenalty = -1
	w.MajorInjury = 1
	err := w.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "faint penalty")
	assert.Contains(t, err.Error(), "injury weights")
}
