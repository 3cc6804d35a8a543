// Package main runs interactive wild battles for one party slot on the
// terminal. Narrative goes to stdout; logs go where logging.output points.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/app"
	"github.com/cory-johannsen/faiths/internal/config"
	"github.com/cory-johannsen/faiths/internal/game/battle"
	"github.com/cory-johannsen/faiths/internal/game/combat"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	slot := flag.String("slot", "party-1", "party slot to load or create")
	name := flag.String("name", "", "name for a newly granted starter")
	location := flag.String("location", "cave", "location to explore")
	age := flag.Int("age", -1, "wild combatant age; negative draws from the spawn table")
	battles := flag.Int("battles", 1, "number of encounters to fight")
	seed := flag.Uint64("seed", 0, "fix the random source; 0 keeps the configured seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed != 0 {
		cfg.Battle.Seed = *seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := app.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	defer cleanup()
	a.Logger.Info("battle client ready", zap.Duration("elapsed", time.Since(start)))

	player, err := a.Party(ctx, *slot, *name)
	if err != nil {
		a.Logger.Error("loading party", zap.String("slot", *slot), zap.Error(err))
		return
	}

	in := bufio.NewScanner(os.Stdin)
	out := os.Stdout
	fmt.Fprintf(out, "%s\n", player.DescribeWithInjuries())
	for i := 0; i < *battles; i++ {
		if !player.CanFight() {
			fmt.Fprintf(out, "%s cannot fight.\n", player.Name)
			return
		}
		enc, err := a.Wild(player, *location, *age)
		if err != nil {
			a.Logger.Error("starting encounter", zap.String("location", *location), zap.Error(err))
			return
		}
		if err := play(ctx, enc, a.Moves, in, out); err != nil {
			if errors.Is(err, errQuit) {
				return
			}
			a.Logger.Error("encounter aborted", zap.String("encounter", enc.ID()), zap.Error(err))
			return
		}
	}
}

// play runs one encounter to completion. Quitting mid-encounter counts as
// a retreat so the history stays complete.
func play(ctx context.Context, enc *battle.Encounter, moves *combat.MoveRegistry, in *bufio.Scanner, out io.Writer) error {
	renderDisplay(out, enc.Opening())
	// Ctrl-C cancels ctx; the retreat and its save still go through.
	leave := context.WithoutCancel(ctx)
	names := moveNames(enc.Player(), moves)
	for {
		renderMenu(out, names)
		if !in.Scan() {
			_, err := enc.Submit(leave, battle.Retreat())
			if err == nil {
				err = errQuit
			}
			return err
		}
		action, err := parseAction(in.Text(), names)
		if errors.Is(err, errQuit) {
			turn, serr := enc.Submit(leave, battle.Retreat())
			if serr != nil {
				return serr
			}
			renderTurn(out, turn)
			return errQuit
		}
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		turn, err := enc.Submit(ctx, action)
		var invalid *battle.InvalidActionError
		if errors.As(err, &invalid) {
			fmt.Fprintln(out, invalid.Reason)
			continue
		}
		if err != nil {
			return err
		}
		renderTurn(out, turn)
		if turn.Over {
			return nil
		}
	}
}

func moveNames(c *combat.Combatant, moves *combat.MoveRegistry) []string {
	names := make([]string, len(c.Moves))
	for i, id := range c.Moves {
		names[i] = id
		if m, ok := moves.Get(id); ok {
			names[i] = m.Name
		}
	}
	return names
}
