// Package sqlite provides a single-file SQLite backend for party slots.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/storage"
)

//go:embed schema.sql
var schema string

// Store persists party slots in SQLite.
type Store struct {
	sqlDB  *sql.DB
	rules  combat.Rules
	logger *zap.Logger
	now    func() time.Time
}

// Open opens the SQLite file at path and creates the schema if missing.
//
// Precondition: path is non-empty; ":memory:" opens a private in-memory database.
// Postcondition: returns a ready Store or a non-nil error.
func Open(path string, rules combat.Rules, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer; also keeps :memory: on a single connection.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logger.Info("sqlite store opened", zap.String("path", path))
	return &Store{sqlDB: sqlDB, rules: rules, logger: logger, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load returns the combatant stored in slot, or storage.ErrNotFound.
func (s *Store) Load(ctx context.Context, slot string) (*combat.Combatant, error) {
	var data []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT record FROM party_slots WHERE slot = ?`, slot,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("loading slot %s: %w", slot, err)
	}
	return storage.Decode(data, s.rules)
}

// Save writes c to slot, replacing any previous record.
func (s *Store) Save(ctx context.Context, slot string, c *combat.Combatant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.now()
	data, err := storage.Encode(slot, c, now)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
		INSERT INTO party_slots (slot, combatant_id, schema_version, record, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			combatant_id = excluded.combatant_id,
			schema_version = excluded.schema_version,
			record = excluded.record,
			updated_at = excluded.updated_at`,
		slot, c.ID, storage.SchemaVersion, data, now.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving slot %s: %w", slot, err)
	}
	s.logger.Debug("party slot saved", zap.String("slot", slot), zap.Int64("combatant_id", c.ID))
	return nil
}

// MaxCombatantID returns the largest stored combatant ID, or 0 when empty.
func (s *Store) MaxCombatantID(ctx context.Context) (int64, error) {
	var id int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(combatant_id), 0) FROM party_slots`,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("querying max combatant id: %w", err)
	}
	return id, nil
}

var _ storage.Repository = (*Store)(nil)
