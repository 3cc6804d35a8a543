// Package battle runs a single encounter between the player's combatant and
// an opponent as a turn-synchronous state machine, and records the result in
// the player's battle history.
package battle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/dice"
	"github.com/cory-johannsen/faiths/internal/game/history"
	"github.com/cory-johannsen/faiths/internal/game/veteran"
)

// Encounter states.
const (
	StateChoosing  = "choosing_action"
	StateResolving = "resolving_turn"
	StateChecking  = "checking_terminal"
	StateFinished  = "finished"
)

// Encounter events.
const (
	eventAct      = "act"
	eventCheck    = "check"
	eventNext     = "next"
	eventContinue = "continue"
	eventFinish   = "finish"
	eventRetreat  = "retreat"
)

// Saver persists the player's combatant once an encounter finishes.
type Saver interface {
	Save(ctx context.Context, c *combat.Combatant) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, c *combat.Combatant) error

// Save implements Saver.
func (f SaverFunc) Save(ctx context.Context, c *combat.Combatant) error { return f(ctx, c) }

// Config tunes encounter behaviour.
type Config struct {
	// Environment tags are recorded on the history entry.
	Environment []string
	// MaxTurns ends a stalled encounter as a retreat; 0 disables the guard.
	MaxTurns int
	// VoSGrantChance is the chance the Will of the Struggler awakens on a faint.
	VoSGrantChance float64
}

// Deps are the services an encounter runs on.
type Deps struct {
	Moves    *combat.MoveRegistry
	Resolver *combat.Resolver
	Damager  *combat.Damager
	Veteran  *veteran.Engine
	Policy   Policy
	// Saver is optional; a nil Saver skips persistence.
	Saver  Saver
	Source dice.Source
	Logger *zap.Logger
	Now    func() time.Time
}

// Result summarises a finished encounter.
type Result struct {
	Outcome history.Outcome
	Entry   history.Entry
	Score   veteran.Score
	// Standing is the descriptive progression text for the player.
	Standing   string
	VoSGranted bool
	// SaveErr holds a persistence failure. In-memory state is kept regardless.
	SaveErr error
}

// Encounter is one battle. It owns both combatants exclusively until it
// finishes and is not safe for concurrent use.
type Encounter struct {
	id       string
	player   *combat.Combatant
	opponent *combat.Combatant
	deps     Deps
	cfg      Config
	machine  *fsm.FSM

	oppVeterancy float64
	rec          record
	result       *Result
	onFinish     func(*Encounter)
}

// NewEncounter prepares an encounter in the choosing_action state.
//
// Precondition: both combatants can fight; every known move is registered.
// Postcondition: State() == StateChoosing.
func NewEncounter(player, opponent *combat.Combatant, deps Deps, cfg Config) (*Encounter, error) {
	if player == nil || opponent == nil {
		return nil, fmt.Errorf("encounter requires two combatants")
	}
	for _, c := range []*combat.Combatant{player, opponent} {
		if !c.CanFight() {
			return nil, fmt.Errorf("%s is %s: %w", c.Name, c.Describe(), ErrCannotFight)
		}
		for _, id := range c.Moves {
			if _, ok := deps.Moves.Get(id); !ok {
				return nil, fmt.Errorf("%s knows unregistered move %q", c.Name, id)
			}
		}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	e := &Encounter{
		id:       uuid.NewString(),
		player:   player,
		opponent: opponent,
		deps:     deps,
		cfg:      cfg,
	}
	e.oppVeterancy = deps.Veteran.Veterancy(opponent)
	e.machine = fsm.NewFSM(
		StateChoosing,
		fsm.Events{
			{Name: eventAct, Src: []string{StateChoosing}, Dst: StateResolving},
			{Name: eventCheck, Src: []string{StateResolving}, Dst: StateChecking},
			{Name: eventNext, Src: []string{StateChecking}, Dst: StateResolving},
			{Name: eventContinue, Src: []string{StateChecking}, Dst: StateChoosing},
			{Name: eventFinish, Src: []string{StateChecking}, Dst: StateFinished},
			{Name: eventRetreat, Src: []string{StateChoosing}, Dst: StateFinished},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, ev *fsm.Event) {
				e.deps.Logger.Debug("encounter transition",
					zap.String("encounter", e.id),
					zap.String("event", ev.Event),
					zap.String("from", ev.Src),
					zap.String("to", ev.Dst),
				)
			},
		},
	)
	deps.Logger.Info("encounter started",
		zap.String("encounter", e.id),
		zap.Int64("player", player.ID),
		zap.Int64("opponent", opponent.ID),
		zap.String("opponent_species", opponent.Species),
		zap.Float64("opponent_veterancy", e.oppVeterancy),
	)
	return e, nil
}

// ID returns the encounter's unique identifier.
func (e *Encounter) ID() string { return e.id }

// event fires a state machine transition. Cancellation of ctx never reaches
// the machine: a battle step always completes once started.
func (e *Encounter) event(ctx context.Context, name string) error {
	return e.machine.Event(context.WithoutCancel(ctx), name)
}

// State returns the current state name.
func (e *Encounter) State() string { return e.machine.Current() }

// Player returns the initiating combatant.
func (e *Encounter) Player() *combat.Combatant { return e.player }

// Opponent returns the opposing combatant.
func (e *Encounter) Opponent() *combat.Combatant { return e.opponent }

// Turns returns the number of completed turns.
func (e *Encounter) Turns() int { return e.rec.turns }

// Result returns the final result, or nil while the encounter is running.
func (e *Encounter) Result() *Result { return e.result }

// Opening returns the display shown before the first action.
func (e *Encounter) Opening() Display {
	return Display{
		Actor:       e.player.Name,
		Target:      e.opponent.Name,
		ActorState:  e.player.Describe(),
		TargetState: e.opponent.Describe(),
		Message:     fmt.Sprintf("A wild %s appears: %s.", e.opponent.Name, veteran.Describe(e.deps.Veteran.Compute(e.opponent).Net)),
	}
}

// Submit applies one player action.
//
// Precondition: State() == StateChoosing.
// Postcondition: on error the encounter is unchanged; otherwise the state is
// StateChoosing or StateFinished.
func (e *Encounter) Submit(ctx context.Context, a Action) (Turn, error) {
	if e.State() == StateFinished {
		return Turn{}, &InvalidActionError{Action: a, Reason: "the battle has already ended", Err: ErrEncounterOver}
	}
	switch a.Kind {
	case ActionInfo:
		e.rec.infoRequests++
		return Turn{Displays: []Display{e.info()}}, nil
	case ActionRetreat:
		return e.retreat(ctx, "You retreat from the fight.")
	case ActionFight:
		if a.MoveIndex < 0 || a.MoveIndex >= len(e.player.Moves) {
			return Turn{}, &InvalidActionError{Action: a, Reason: fmt.Sprintf("%s does not know that move", e.player.Name)}
		}
		return e.fight(ctx, a.MoveIndex)
	default:
		return Turn{}, &InvalidActionError{Action: a, Reason: "unknown action"}
	}
}

func (e *Encounter) info() Display {
	standing := veteran.Describe(e.deps.Veteran.Compute(e.player).Net)
	return Display{
		Actor:       e.player.Name,
		Target:      e.opponent.Name,
		ActorState:  e.player.DescribeWithInjuries(),
		TargetState: e.opponent.Describe(),
		Message:     fmt.Sprintf("%s is %s.", e.player.Name, standing),
	}
}

func (e *Encounter) retreat(ctx context.Context, msg string) (Turn, error) {
	e.rec.retreatedFrom = e.player.VitalityPercent
	if err := e.event(ctx, eventRetreat); err != nil {
		return Turn{}, fmt.Errorf("encounter %s: retreat: %w", e.id, err)
	}
	d := e.stateDisplay(e.player, e.opponent)
	d.Message = msg
	return e.finish(ctx, history.OutcomeRetreat, []Display{d}), nil
}

func (e *Encounter) fight(ctx context.Context, playerIdx int) (Turn, error) {
	oppIdx := e.deps.Policy.ChooseMove(ctx, e.opponent, e.player)
	if oppIdx < 0 || oppIdx >= len(e.opponent.Moves) {
		e.deps.Logger.Warn("opponent chose an invalid move; using its first move",
			zap.String("encounter", e.id),
			zap.String("opponent", e.opponent.Name),
			zap.Int("index", oppIdx),
		)
		oppIdx = 0
	}
	chosen := map[*combat.Combatant]string{
		e.player:   e.player.Moves[playerIdx],
		e.opponent: e.opponent.Moves[oppIdx],
	}

	if err := e.event(ctx, eventAct); err != nil {
		return Turn{}, fmt.Errorf("encounter %s: act: %w", e.id, err)
	}
	first, second := combat.ActingOrder(e.player, e.opponent)
	var displays []Display
	for i, actor := range []*combat.Combatant{first, second} {
		if i > 0 {
			if err := e.event(ctx, eventNext); err != nil {
				return Turn{}, fmt.Errorf("encounter %s: next: %w", e.id, err)
			}
		}
		target := second
		if actor == second {
			target = first
		}
		displays = append(displays, e.execute(actor, target, chosen[actor]))

		if err := e.event(ctx, eventCheck); err != nil {
			return Turn{}, fmt.Errorf("encounter %s: check: %w", e.id, err)
		}
		if outcome, over := e.terminal(); over {
			e.rec.turns++
			if err := e.event(ctx, eventFinish); err != nil {
				return Turn{}, fmt.Errorf("encounter %s: finish: %w", e.id, err)
			}
			return e.finish(ctx, outcome, displays), nil
		}
	}
	e.rec.turns++
	if err := e.event(ctx, eventContinue); err != nil {
		return Turn{}, fmt.Errorf("encounter %s: continue: %w", e.id, err)
	}
	if e.cfg.MaxTurns > 0 && e.rec.turns >= e.cfg.MaxTurns {
		t, err := e.retreat(ctx, "The fight drags on until both sides break away.")
		t.Displays = append(displays, t.Displays...)
		return t, err
	}
	return Turn{Displays: displays}, nil
}

// execute resolves one move and applies its damage.
func (e *Encounter) execute(actor, target *combat.Combatant, moveID string) Display {
	mv, _ := e.deps.Moves.Get(moveID)
	res := e.deps.Resolver.Resolve(actor, target, mv)
	var out combat.DamageOutcome
	if res.Damage > 0 {
		out = e.deps.Damager.Apply(target, res.Damage, res.DamageType, res.Location)
	}
	if actor == e.player {
		e.rec.playerMove(res)
	} else {
		e.rec.playerHit(res, out)
	}
	d := e.stateDisplay(actor, target)
	d.Narrative = res.Narrative
	d.InjuryNarrative = out.InjuryNarrative
	switch out.Terminal {
	case combat.TerminalFaint:
		d.Message = fmt.Sprintf("%s fainted.", target.Name)
	case combat.TerminalDeath:
		d.Message = fmt.Sprintf("%s has been killed.", target.Name)
	}
	return d
}

func (e *Encounter) stateDisplay(actor, target *combat.Combatant) Display {
	return Display{
		Actor:       actor.Name,
		Target:      target.Name,
		ActorState:  actor.Describe(),
		TargetState: target.Describe(),
	}
}

// terminal reports whether either side is out and the outcome for the player.
func (e *Encounter) terminal() (history.Outcome, bool) {
	switch e.player.Status {
	case combat.StatusDead:
		return history.OutcomeDeath, true
	case combat.StatusFainted:
		return history.OutcomeFaint, true
	}
	if e.opponent.Status != combat.StatusActive {
		return history.OutcomeWin, true
	}
	return "", false
}

// finish records exactly one history entry for the player, recomputes its
// veteran score and hands it to the Saver.
func (e *Encounter) finish(ctx context.Context, outcome history.Outcome, displays []Display) Turn {
	entry := history.Entry{
		ID:                uuid.NewString(),
		Timestamp:         e.deps.Now().UTC(),
		OpponentSpecies:   e.opponent.Species,
		OpponentName:      e.opponent.Name,
		OpponentVeterancy: e.oppVeterancy,
		Moves:             e.rec.moves,
		DamageTaken: history.Damage{
			Amount:   e.rec.damageTaken,
			Type:     e.rec.heaviestType,
			Location: e.rec.heaviestLoc,
		},
		DamageDealt:  e.rec.damageDealt,
		StatusEvents: e.rec.statusEvents,
		Outcome:      outcome,
		Tactics:      analyzeTactics(&e.rec, outcome),
		Environment:  e.cfg.Environment,
		Turns:        e.rec.turns,
	}
	e.player.History.Append(entry)

	res := &Result{Outcome: outcome, Entry: entry}
	var closing Display
	closing.Actor, closing.Target = e.player.Name, e.opponent.Name
	closing.ActorState, closing.TargetState = e.player.Describe(), e.opponent.Describe()
	switch outcome {
	case history.OutcomeWin:
		closing.Message = fmt.Sprintf("%s won the fight.", e.player.Name)
	case history.OutcomeFaint:
		closing.Message = fmt.Sprintf("%s lost the fight.", e.player.Name)
		if !e.player.HasVoS() && dice.Chance(e.deps.Source, e.cfg.VoSGrantChance) {
			res.VoSGranted = e.player.GrantVoS()
			closing.InjuryNarrative = fmt.Sprintf("Something in %s refuses to break. The Will of the Struggler awakens.", e.player.Name)
		}
	case history.OutcomeDeath:
		closing.Message = fmt.Sprintf("%s will not rise again.", e.player.Name)
	case history.OutcomeRetreat:
		closing.Message = "No winner is declared."
	}

	res.Score = e.deps.Veteran.Recompute(e.player)
	res.Standing = veteran.Describe(res.Score.Net)
	closing.Narrative = fmt.Sprintf("%s is %s.", e.player.Name, res.Standing)

	if e.deps.Saver != nil {
		if err := e.deps.Saver.Save(ctx, e.player); err != nil {
			res.SaveErr = err
			e.deps.Logger.Warn("saving combatant failed; progress kept in memory",
				zap.String("encounter", e.id),
				zap.Int64("combatant", e.player.ID),
				zap.Error(err),
			)
			closing.Message += " Your progress could not be saved yet."
		}
	}

	e.result = res
	e.deps.Logger.Info("encounter finished",
		zap.String("encounter", e.id),
		zap.String("outcome", string(outcome)),
		zap.Int("turns", e.rec.turns),
		zap.Strings("tactics", entry.Tactics),
		zap.Int("history_len", e.player.History.Len()),
	)
	if e.onFinish != nil {
		e.onFinish(e)
	}
	return Turn{Displays: append(displays, closing), Over: true, Result: res}
}
