package battle_test

import (
	"context"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/game/battle"
	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/dice"
	"github.com/cory-johannsen/faiths/internal/game/veteran"
)

// seqSrc replays queued draws, then repeats the fallback values.
type seqSrc struct {
	floats   []float64
	ints     []int
	fallback float64
}

func (s *seqSrc) Float64() float64 {
	if len(s.floats) == 0 {
		return s.fallback
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *seqSrc) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return min(v, n-1)
}

// fixedPolicy always picks the same index.
type fixedPolicy struct{ idx int }

func (p fixedPolicy) ChooseMove(context.Context, *combat.Combatant, *combat.Combatant) int { return p.idx }

type tb interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

type fighter struct {
	id    int64
	name  string
	typ   string
	stats combat.Stats
	moves []string
}

func mk(t tb, s fighter) *combat.Combatant {
	t.Helper()
	if s.stats == (combat.Stats{}) {
		s.stats = combat.Stats{Attack: 50, Defense: 50, Speed: 50}
	}
	if len(s.moves) == 0 {
		s.moves = []string{"tackle"}
	}
	c, err := combat.New(combat.Params{
		ID:      s.id,
		Species: s.name,
		Name:    s.name,
		Type:    s.typ,
		Stats:   s.stats,
		Moves:   s.moves,
	}, combat.DefaultRules())
	require.NoError(t, err)
	return c
}

func newDeps(src dice.Source, policy battle.Policy, logger *zap.Logger) battle.Deps {
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := combat.DefaultRules()
	return battle.Deps{
		Moves:    combat.DefaultMoves(),
		Resolver: combat.NewResolver(combat.DefaultTypeChart(), rules, src, logger),
		Damager:  combat.NewDamager(rules, src, logger),
		Veteran:  veteran.NewEngine(veteran.DefaultWeights(), logger),
		Policy:   policy,
		Source:   src,
		Logger:   logger,
	}
}

func newEncounter(t tb, player, opponent *combat.Combatant, deps battle.Deps, cfg battle.Config) *battle.Encounter {
	t.Helper()
	enc, err := battle.NewEncounter(player, opponent, deps, cfg)
	require.NoError(t, err)
	return enc
}
