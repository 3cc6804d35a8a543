package battle

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/dice"
)

// Policy picks the opponent's move. The returned index is validated by the
// encounter; anything out of range falls back to the first known move.
type Policy interface {
	ChooseMove(ctx context.Context, self, foe *combat.Combatant) int
}

// RandomPolicy picks uniformly among known moves.
type RandomPolicy struct {
	src dice.Source
}

// NewRandomPolicy constructs a RandomPolicy drawing from src.
func NewRandomPolicy(src dice.Source) *RandomPolicy {
	return &RandomPolicy{src: src}
}

// ChooseMove implements Policy.
func (p *RandomPolicy) ChooseMove(_ context.Context, self, _ *combat.Combatant) int {
	if len(self.Moves) == 0 {
		return 0
	}
	return p.src.Intn(len(self.Moves))
}

// MoveChooser is a scripted move selector. ok is false when the script
// declined or failed to choose.
type MoveChooser interface {
	ChooseMove(self, foe *combat.Combatant, moves []combat.Move) (index int, ok bool)
}

// ScriptPolicy asks a script for a move and defers to Fallback when the
// script has no answer.
type ScriptPolicy struct {
	script   MoveChooser
	moves    *combat.MoveRegistry
	fallback Policy
	logger   *zap.Logger
}

// NewScriptPolicy constructs a ScriptPolicy.
//
// Precondition: script, moves and fallback are non-nil.
func NewScriptPolicy(script MoveChooser, moves *combat.MoveRegistry, fallback Policy, logger *zap.Logger) *ScriptPolicy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptPolicy{script: script, moves: moves, fallback: fallback, logger: logger}
}

// ChooseMove implements Policy.
func (p *ScriptPolicy) ChooseMove(ctx context.Context, self, foe *combat.Combatant) int {
	known := make([]combat.Move, 0, len(self.Moves))
	for _, id := range self.Moves {
		if m, ok := p.moves.Get(id); ok {
			known = append(known, m)
		}
	}
	if idx, ok := p.script.ChooseMove(self, foe, known); ok {
		return idx
	}
	p.logger.Debug("script declined move choice; using fallback", zap.String("combatant", self.Name))
	return p.fallback.ChooseMove(ctx, self, foe)
}
