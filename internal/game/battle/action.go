package battle

import (
	"errors"
	"fmt"
)

// ActionKind identifies what the player chose to do.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionFight
	ActionRetreat
	ActionInfo
)

// String returns the action's name.
func (k ActionKind) String() string {
	switch k {
	case ActionFight:
		return "fight"
	case ActionRetreat:
		return "retreat"
	case ActionInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Action is one player input.
type Action struct {
	Kind ActionKind
	// MoveIndex selects a known move for ActionFight.
	MoveIndex int
}

// Fight returns an ActionFight for the move at index.
func Fight(index int) Action { return Action{Kind: ActionFight, MoveIndex: index} }

// Retreat returns an ActionRetreat.
func Retreat() Action { return Action{Kind: ActionRetreat} }

// Info returns an ActionInfo.
func Info() Action { return Action{Kind: ActionInfo} }

var (
	// ErrEncounterOver is wrapped by InvalidActionError when acting on a finished encounter.
	ErrEncounterOver = errors.New("encounter is over")
	// ErrCannotFight is returned when a fainted or dead combatant is sent into battle.
	ErrCannotFight = errors.New("combatant cannot fight")
	// ErrAlreadyEngaged is returned when a combatant is already in an active encounter.
	ErrAlreadyEngaged = errors.New("combatant already engaged")
	// ErrEncounterNotFound is returned by Registry lookups for unknown IDs.
	ErrEncounterNotFound = errors.New("encounter not found")
)

// InvalidActionError reports an action that cannot be taken. The encounter
// is left unchanged and the player should be prompted again.
type InvalidActionError struct {
	Action Action
	Reason string
	Err    error
}

func (e *InvalidActionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid action %s: %s: %v", e.Action.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid action %s: %s", e.Action.Kind, e.Reason)
}

func (e *InvalidActionError) Unwrap() error { return e.Err }
