package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/cory-johannsen/faiths/internal/game/battle"
)

func renderDisplay(w io.Writer, d battle.Display) {
	for _, line := range d.Lines() {
		fmt.Fprintln(w, line)
	}
	if d.ActorState != "" {
		fmt.Fprintf(w, "  %s: %s\n", d.Actor, d.ActorState)
	}
	if d.TargetState != "" {
		fmt.Fprintf(w, "  %s: %s\n", d.Target, d.TargetState)
	}
}

func renderTurn(w io.Writer, t battle.Turn) {
	for _, d := range t.Displays {
		renderDisplay(w, d)
	}
}

func renderMenu(w io.Writer, moveNames []string) {
	opts := make([]string, len(moveNames))
	for i, n := range moveNames {
		opts[i] = fmt.Sprintf("%d) %s", i+1, n)
	}
	fmt.Fprintf(w, "\n%s | info | retreat | quit\n> ", strings.Join(opts, "  "))
}
