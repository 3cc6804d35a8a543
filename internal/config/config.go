// Package config provides Viper-based configuration loading for the battle engine.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/faiths/internal/game/battle"
	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/encounter"
	"github.com/cory-johannsen/faiths/internal/game/history"
	"github.com/cory-johannsen/faiths/internal/game/veteran"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path.
	Output string `mapstructure:"output"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is "sqlite" for local save files or "postgres".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the save database file for the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// ContentConfig locates the YAML and Lua content files.
type ContentConfig struct {
	Moves           string `mapstructure:"moves"`
	TypeChart       string `mapstructure:"type_chart"`
	SpeciesDir      string `mapstructure:"species_dir"`
	Locations       string `mapstructure:"locations"`
	OpponentScripts string `mapstructure:"opponent_scripts"`
}

// RulesConfig exposes every tuning constant of the combat and progression rules.
type RulesConfig struct {
	MaxVitality           float64 `mapstructure:"max_vitality"`
	DamageScale           float64 `mapstructure:"damage_scale"`
	VarianceMin           float64 `mapstructure:"variance_min"`
	VarianceMax           float64 `mapstructure:"variance_max"`
	MinorThreshold        float64 `mapstructure:"minor_threshold"`
	MajorThreshold        float64 `mapstructure:"major_threshold"`
	CatastrophicThreshold float64 `mapstructure:"catastrophic_threshold"`
	VoSInjuryFactor       float64 `mapstructure:"vos_injury_factor"`
	OverkillFraction      float64 `mapstructure:"overkill_fraction"`
	MinLethalHit          float64 `mapstructure:"min_lethal_hit"`
	HistoryCapacity       int     `mapstructure:"history_capacity"`
	DecayBaseWeight       float64 `mapstructure:"decay_base_weight"`
	DecayHalfLife         float64 `mapstructure:"decay_half_life"`

	WinReward          float64 `mapstructure:"win_reward"`
	VeterancyFloor     float64 `mapstructure:"veterancy_floor"`
	VeterancyScale     float64 `mapstructure:"veterancy_scale"`
	TacticBonus        float64 `mapstructure:"tactic_bonus"`
	EffectiveMoveBonus float64 `mapstructure:"effective_move_bonus"`
	DamageTakenWeight  float64 `mapstructure:"damage_taken_weight"`
	FaintPenalty       float64 `mapstructure:"faint_penalty"`
	RetreatPenalty     float64 `mapstructure:"retreat_penalty"`
	DeathPenalty       float64 `mapstructure:"death_penalty"`
	StaggerPenalty     float64 `mapstructure:"stagger_penalty"`
	SevereEventPenalty float64 `mapstructure:"severe_event_penalty"`
	MinorInjury        float64 `mapstructure:"minor_injury"`
	MajorInjury        float64 `mapstructure:"major_injury"`
	CatastrophicInjury float64 `mapstructure:"catastrophic_injury"`
}

// Combat returns the move resolution and damage rules.
func (r RulesConfig) Combat() combat.Rules {
	return combat.Rules{
		MaxVitality:           r.MaxVitality,
		DamageScale:           r.DamageScale,
		VarianceMin:           r.VarianceMin,
		VarianceMax:           r.VarianceMax,
		MinorThreshold:        r.MinorThreshold,
		MajorThreshold:        r.MajorThreshold,
		CatastrophicThreshold: r.CatastrophicThreshold,
		VoSInjuryFactor:       r.VoSInjuryFactor,
		OverkillFraction:      r.OverkillFraction,
		MinLethalHit:          r.MinLethalHit,
		HistoryCapacity:       r.HistoryCapacity,
		Decay:                 history.Decay{BaseWeight: r.DecayBaseWeight, HalfLife: r.DecayHalfLife},
	}
}

// Veteran returns the progression scoring weights.
func (r RulesConfig) Veteran() veteran.Weights {
	return veteran.Weights{
		WinReward:          r.WinReward,
		VeterancyFloor:     r.VeterancyFloor,
		VeterancyScale:     r.VeterancyScale,
		TacticBonus:        r.TacticBonus,
		EffectiveMoveBonus: r.EffectiveMoveBonus,
		DamageTakenWeight:  r.DamageTakenWeight,
		FaintPenalty:       r.FaintPenalty,
		RetreatPenalty:     r.RetreatPenalty,
		DeathPenalty:       r.DeathPenalty,
		StaggerPenalty:     r.StaggerPenalty,
		SevereEventPenalty: r.SevereEventPenalty,
		MinorInjury:        r.MinorInjury,
		MajorInjury:        r.MajorInjury,
		CatastrophicInjury: r.CatastrophicInjury,
	}
}

// BattleConfig holds encounter settings.
type BattleConfig struct {
	// OpponentPolicy is "random" or "script".
	OpponentPolicy string `mapstructure:"opponent_policy"`
	// MaxTurns ends a stalled encounter as a retreat; 0 disables the guard.
	MaxTurns       int     `mapstructure:"max_turns"`
	VoSGrantChance float64 `mapstructure:"vos_grant_chance"`
	// ScriptInstructionLimit bounds each Lua call; 0 means unlimited.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
	// Seed fixes the random source when non-zero.
	Seed uint64 `mapstructure:"seed"`
	// LogDraws logs every random draw at debug level.
	LogDraws bool `mapstructure:"log_draws"`
}

// Encounter returns the encounter settings for environment env.
func (b BattleConfig) Encounter(env []string) battle.Config {
	return battle.Config{Environment: env, MaxTurns: b.MaxTurns, VoSGrantChance: b.VoSGrantChance}
}

// EncounterConfig tunes wild generation and starters.
type EncounterConfig struct {
	WinsPerYear    int    `mapstructure:"wins_per_year"`
	MaxSeededWins  int    `mapstructure:"max_seeded_wins"`
	StarterAge     int    `mapstructure:"starter_age"`
	StarterSpecies string `mapstructure:"starter_species"`
}

// Generator returns the generator tuning.
func (e EncounterConfig) Generator() encounter.Config {
	return encounter.Config{WinsPerYear: e.WinsPerYear, MaxSeededWins: e.MaxSeededWins, StarterAge: e.StarterAge}
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Content   ContentConfig   `mapstructure:"content"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Encounter EncounterConfig `mapstructure:"encounter"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateContent(c.Content, c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Rules.Combat().Validate(); err != nil {
		errs = append(errs, "rules: "+strings.ReplaceAll(err.Error(), "\n", "; "))
	}
	if err := c.Rules.Veteran().Validate(); err != nil {
		errs = append(errs, "rules: "+strings.ReplaceAll(err.Error(), "\n", "; "))
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEncounter(c.Encounter); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case "sqlite":
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite driver")
		}
	case "postgres":
	default:
		return fmt.Errorf("storage.driver must be one of [sqlite, postgres], got %q", s.Driver)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig, b BattleConfig) error {
	var errs []string
	if c.Moves == "" {
		errs = append(errs, "content.moves must not be empty")
	}
	if c.TypeChart == "" {
		errs = append(errs, "content.type_chart must not be empty")
	}
	if c.SpeciesDir == "" {
		errs = append(errs, "content.species_dir must not be empty")
	}
	if c.Locations == "" {
		errs = append(errs, "content.locations must not be empty")
	}
	if b.OpponentPolicy == "script" && c.OpponentScripts == "" {
		errs = append(errs, "content.opponent_scripts must be set when battle.opponent_policy is script")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.OpponentPolicy != "random" && b.OpponentPolicy != "script" {
		errs = append(errs, fmt.Sprintf("battle.opponent_policy must be one of [random, script], got %q", b.OpponentPolicy))
	}
	if b.MaxTurns < 0 {
		errs = append(errs, fmt.Sprintf("battle.max_turns must be >= 0, got %d", b.MaxTurns))
	}
	if b.VoSGrantChance < 0 || b.VoSGrantChance > 1 {
		errs = append(errs, fmt.Sprintf("battle.vos_grant_chance must be in [0,1], got %v", b.VoSGrantChance))
	}
	if b.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("battle.script_instruction_limit must be >= 0, got %d", b.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEncounter(e EncounterConfig) error {
	var errs []string
	if e.WinsPerYear < 0 {
		errs = append(errs, fmt.Sprintf("encounter.wins_per_year must be >= 0, got %d", e.WinsPerYear))
	}
	if e.MaxSeededWins < 0 {
		errs = append(errs, fmt.Sprintf("encounter.max_seeded_wins must be >= 0, got %d", e.MaxSeededWins))
	}
	if e.StarterAge < 0 {
		errs = append(errs, fmt.Sprintf("encounter.starter_age must be >= 0, got %d", e.StarterAge))
	}
	if e.StarterSpecies == "" {
		errs = append(errs, "encounter.starter_species must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with FAITHS_ prefix
	v.SetEnvPrefix("FAITHS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "faiths.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "faiths")
	v.SetDefault("database.password", "faiths")
	v.SetDefault("database.name", "faiths")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("content.moves", "content/moves.yaml")
	v.SetDefault("content.type_chart", "content/typechart.yaml")
	v.SetDefault("content.species_dir", "content/species")
	v.SetDefault("content.locations", "content/locations.yaml")
	v.SetDefault("content.opponent_scripts", "content/scripts/opponent")

	cr := combat.DefaultRules()
	v.SetDefault("rules.max_vitality", cr.MaxVitality)
	v.SetDefault("rules.damage_scale", cr.DamageScale)
	v.SetDefault("rules.variance_min", cr.VarianceMin)
	v.SetDefault("rules.variance_max", cr.VarianceMax)
	v.SetDefault("rules.minor_threshold", cr.MinorThreshold)
	v.SetDefault("rules.major_threshold", cr.MajorThreshold)
	v.SetDefault("rules.catastrophic_threshold", cr.CatastrophicThreshold)
	v.SetDefault("rules.vos_injury_factor", cr.VoSInjuryFactor)
	v.SetDefault("rules.overkill_fraction", cr.OverkillFraction)
	v.SetDefault("rules.min_lethal_hit", cr.MinLethalHit)
	v.SetDefault("rules.history_capacity", cr.HistoryCapacity)
	v.SetDefault("rules.decay_base_weight", cr.Decay.BaseWeight)
	v.SetDefault("rules.decay_half_life", cr.Decay.HalfLife)

	vw := veteran.DefaultWeights()
	v.SetDefault("rules.win_reward", vw.WinReward)
	v.SetDefault("rules.veterancy_floor", vw.VeterancyFloor)
	v.SetDefault("rules.veterancy_scale", vw.VeterancyScale)
	v.SetDefault("rules.tactic_bonus", vw.TacticBonus)
	v.SetDefault("rules.effective_move_bonus", vw.EffectiveMoveBonus)
	v.SetDefault("rules.damage_taken_weight", vw.DamageTakenWeight)
	v.SetDefault("rules.faint_penalty", vw.FaintPenalty)
	v.SetDefault("rules.retreat_penalty", vw.RetreatPenalty)
	v.SetDefault("rules.death_penalty", vw.DeathPenalty)
	v.SetDefault("rules.stagger_penalty", vw.StaggerPenalty)
	v.SetDefault("rules.severe_event_penalty", vw.SevereEventPenalty)
	v.SetDefault("rules.minor_injury", vw.MinorInjury)
	v.SetDefault("rules.major_injury", vw.MajorInjury)
	v.SetDefault("rules.catastrophic_injury", vw.CatastrophicInjury)

	v.SetDefault("battle.opponent_policy", "script")
	v.SetDefault("battle.max_turns", 100)
	v.SetDefault("battle.vos_grant_chance", 0.05)
	v.SetDefault("battle.script_instruction_limit", 100000)
	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.log_draws", false)

	ec := encounter.DefaultConfig()
	v.SetDefault("encounter.wins_per_year", ec.WinsPerYear)
	v.SetDefault("encounter.max_seeded_wins", ec.MaxSeededWins)
	v.SetDefault("encounter.starter_age", ec.StarterAge)
	v.SetDefault("encounter.starter_species", "charmander")
}
