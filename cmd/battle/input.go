package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/faiths/internal/game/battle"
)

var errQuit = errors.New("quit")

// parseAction maps one line of player input to an action. Moves are chosen
// by their 1-based position or by name.
func parseAction(line string, moveNames []string) (battle.Action, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return battle.Action{}, fmt.Errorf("enter a move, info, retreat or quit")
	}
	switch fields[0] {
	case "q", "quit", "exit":
		return battle.Action{}, errQuit
	case "r", "run", "retreat":
		return battle.Retreat(), nil
	case "i", "info", "status":
		return battle.Info(), nil
	case "f", "fight":
		fields = fields[1:]
		if len(fields) == 0 {
			return battle.Action{}, fmt.Errorf("fight which move?")
		}
	}
	arg := strings.Join(fields, " ")
	if n, err := strconv.Atoi(arg); err == nil {
		return battle.Fight(n - 1), nil
	}
	for i, name := range moveNames {
		if strings.EqualFold(name, arg) {
			return battle.Fight(i), nil
		}
	}
	return battle.Action{}, fmt.Errorf("unknown command %q", line)
}
