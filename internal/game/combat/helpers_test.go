package combat_test

import (
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/faiths/internal/game/combat"
)

// seqSrc replays queued draws and falls back to fixed values when empty.
type seqSrc struct {
	floats []float64
	ints   []int
	draws  int
}

func (s *seqSrc) Float64() float64 {
	s.draws++
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *seqSrc) Intn(n int) int {
	s.draws++
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		return n - 1
	}
	return v
}

// tb is satisfied by both *testing.T and *rapid.T.
type tb interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

func newCombatant(t tb, id int64, name, typ string, stats combat.Stats) *combat.Combatant {
	t.Helper()
	c, err := combat.New(combat.Params{
		ID:      id,
		Species: "test",
		Name:    name,
		Type:    typ,
		Stats:   stats,
		Moves:   []string{"tackle"},
	}, combat.DefaultRules())
	require.NoError(t, err)
	return c
}

func baseStats() combat.Stats {
	return combat.Stats{Attack: 50, Defense: 50, Speed: 50}
}
