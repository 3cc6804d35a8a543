package battle

import (
	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/history"
)

// Tactic tags recorded on history entries.
const (
	TacticAggressive  = "aggressive"
	TacticDefensive   = "defensive"
	TacticVaried      = "varied"
	TacticFocused     = "focused"
	TacticOpportunist = "opportunist"
	TacticCautious    = "cautious"
)

// record accumulates the player's side of an encounter turn by turn.
type record struct {
	moves         []history.MoveUse
	categories    []combat.Category
	damageTaken   float64
	heaviestHit   float64
	heaviestType  string
	heaviestLoc   string
	damageDealt   float64
	statusEvents  []string
	infoRequests  int
	turns         int
	retreatedFrom float64
}

func (r *record) playerMove(res combat.MoveResult) {
	r.moves = append(r.moves, history.MoveUse{Move: res.Move.ID, Effective: res.Effective()})
	r.categories = append(r.categories, res.Move.Category)
	r.damageDealt += res.Damage
}

func (r *record) playerHit(res combat.MoveResult, out combat.DamageOutcome) {
	r.damageTaken += res.Damage
	if res.Damage > r.heaviestHit {
		r.heaviestHit = res.Damage
		r.heaviestType = res.DamageType
		r.heaviestLoc = res.Location
	}
	r.statusEvents = append(r.statusEvents, out.StatusEvents...)
}

// analyzeTactics tags the player's play style from the record.
func analyzeTactics(r *record, outcome history.Outcome) []string {
	var tags []string
	damaging, status, effective := 0, 0, 0
	distinct := make(map[string]struct{}, len(r.moves))
	for i, m := range r.moves {
		distinct[m.Move] = struct{}{}
		if r.categories[i] == combat.CategoryStatus {
			status++
		} else {
			damaging++
		}
		if m.Effective {
			effective++
		}
	}
	if damaging > 0 && r.damageDealt >= r.damageTaken {
		tags = append(tags, TacticAggressive)
	}
	if status > 0 {
		tags = append(tags, TacticDefensive)
	}
	switch {
	case len(distinct) >= 2:
		tags = append(tags, TacticVaried)
	case len(r.moves) >= 3:
		tags = append(tags, TacticFocused)
	}
	if effective > 0 {
		tags = append(tags, TacticOpportunist)
	}
	if (outcome == history.OutcomeRetreat && r.retreatedFrom >= 30) || r.infoRequests > 0 {
		tags = append(tags, TacticCautious)
	}
	return tags
}
