package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/config"
	"github.com/cory-johannsen/faiths/internal/game/battle"
	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/dice"
	"github.com/cory-johannsen/faiths/internal/game/encounter"
	"github.com/cory-johannsen/faiths/internal/game/veteran"
	"github.com/cory-johannsen/faiths/internal/observability"
	"github.com/cory-johannsen/faiths/internal/scripting"
	"github.com/cory-johannsen/faiths/internal/storage"
	"github.com/cory-johannsen/faiths/internal/storage/postgres"
	"github.com/cory-johannsen/faiths/internal/storage/sqlite"
)

// ProviderSet builds an App from a config.Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideSource,
	ProvideRules,
	ProvideWeights,
	ProvideMoves,
	ProvideTypeChart,
	ProvideSpecies,
	ProvideLocations,
	ProvideRepository,
	ProvideSequence,
	ProvideGenerator,
	ProvideScripts,
	ProvidePolicy,
	NewSlots,
	ProvideDeps,
	ProvideRegistry,
	wire.Struct(new(App), "*"),
)

// ProvideLogger builds the application logger.
func ProvideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideSource returns the random source: seeded when battle.seed is set,
// crypto otherwise, wrapped for draw logging when battle.log_draws is set.
func ProvideSource(cfg config.Config, logger *zap.Logger) dice.Source {
	var src dice.Source
	if cfg.Battle.Seed != 0 {
		src = dice.NewSeededSource(cfg.Battle.Seed)
		logger.Info("using seeded random source", zap.Uint64("seed", cfg.Battle.Seed))
	} else {
		src = dice.NewCryptoSource()
	}
	if cfg.Battle.LogDraws {
		return dice.NewLoggedSource(src, logger)
	}
	return src
}

// ProvideRules returns the combat rules.
func ProvideRules(cfg config.Config) combat.Rules { return cfg.Rules.Combat() }

// ProvideWeights returns the veteran scoring weights.
func ProvideWeights(cfg config.Config) veteran.Weights { return cfg.Rules.Veteran() }

// ProvideMoves loads the move catalog.
func ProvideMoves(cfg config.Config, logger *zap.Logger) (*combat.MoveRegistry, error) {
	moves, err := combat.LoadMoves(cfg.Content.Moves)
	if err != nil {
		return nil, err
	}
	logger.Info("moves loaded", zap.Int("count", moves.Len()))
	return moves, nil
}

// ProvideTypeChart loads the type effectiveness chart.
func ProvideTypeChart(cfg config.Config) (*combat.TypeChart, error) {
	return combat.LoadTypeChart(cfg.Content.TypeChart)
}

// ProvideSpecies loads every species definition.
func ProvideSpecies(cfg config.Config, moves *combat.MoveRegistry, logger *zap.Logger) (map[string]encounter.Species, error) {
	species, err := encounter.LoadSpecies(cfg.Content.SpeciesDir, moves)
	if err != nil {
		return nil, err
	}
	logger.Info("species loaded", zap.Int("count", len(species)))
	return species, nil
}

// ProvideLocations loads the wild encounter tables.
func ProvideLocations(cfg config.Config, species map[string]encounter.Species) (map[string]encounter.Location, error) {
	return encounter.LoadLocations(cfg.Content.Locations, species)
}

// ProvideRepository opens the configured storage backend.
func ProvideRepository(ctx context.Context, cfg config.Config, rules combat.Rules, logger *zap.Logger) (storage.Repository, func(), error) {
	var (
		repo storage.Repository
		err  error
	)
	start := time.Now()
	switch cfg.Storage.Driver {
	case "postgres":
		var pool *postgres.Pool
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err == nil {
			repo = postgres.NewPartySlotRepository(pool, rules, logger)
		}
	default:
		repo, err = sqlite.Open(cfg.Storage.SQLitePath, rules, logger)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}
	logger.Info("storage connected",
		zap.String("driver", cfg.Storage.Driver),
		zap.Duration("elapsed", time.Since(start)),
	)
	return repo, func() {
		if err := repo.Close(); err != nil {
			logger.Warn("closing storage", zap.Error(err))
		}
	}, nil
}

// ProvideSequence seeds combatant IDs past every stored one.
func ProvideSequence(ctx context.Context, repo storage.Repository) (*encounter.Sequence, error) {
	last, err := repo.MaxCombatantID(ctx)
	if err != nil {
		return nil, err
	}
	return encounter.NewSequence(last), nil
}

// ProvideGenerator builds the wild combatant generator.
func ProvideGenerator(cfg config.Config, species map[string]encounter.Species, locations map[string]encounter.Location,
	seq *encounter.Sequence, rules combat.Rules, src dice.Source, logger *zap.Logger) *encounter.Generator {
	return encounter.NewGenerator(species, locations, seq, rules, cfg.Encounter.Generator(), src, logger)
}

// ProvideScripts loads opponent scripts when the script policy is selected.
// It returns a nil Manager for the random policy.
func ProvideScripts(cfg config.Config, chart *combat.TypeChart, src dice.Source, logger *zap.Logger) (*scripting.Manager, func(), error) {
	if cfg.Battle.OpponentPolicy != "script" {
		return nil, func() {}, nil
	}
	mgr := scripting.NewManager(chart, src, logger)
	if err := mgr.Load(cfg.Content.OpponentScripts, cfg.Battle.ScriptInstructionLimit); err != nil {
		return nil, nil, err
	}
	return mgr, mgr.Close, nil
}

// ProvidePolicy chooses the opponent policy.
func ProvidePolicy(scripts *scripting.Manager, moves *combat.MoveRegistry, src dice.Source, logger *zap.Logger) battle.Policy {
	random := battle.NewRandomPolicy(src)
	if scripts == nil {
		return random
	}
	return battle.NewScriptPolicy(scripts, moves, random, logger)
}

// ProvideDeps assembles the encounter dependencies.
func ProvideDeps(moves *combat.MoveRegistry, chart *combat.TypeChart, rules combat.Rules, weights veteran.Weights,
	policy battle.Policy, slots *Slots, src dice.Source, logger *zap.Logger) battle.Deps {
	return battle.Deps{
		Moves:    moves,
		Resolver: combat.NewResolver(chart, rules, src, logger),
		Damager:  combat.NewDamager(rules, src, logger),
		Veteran:  veteran.NewEngine(weights, logger),
		Policy:   policy,
		Saver:    slots,
		Source:   src,
		Logger:   logger,
		Now:      time.Now,
	}
}

// ProvideRegistry builds the encounter registry.
func ProvideRegistry(deps battle.Deps, cfg config.Config) *battle.Registry {
	return battle.NewRegistry(deps, cfg.Battle.Encounter(nil))
}
