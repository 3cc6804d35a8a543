package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/storage"
)

// PartySlotRepository persists combatants in the party_slots table.
type PartySlotRepository struct {
	pool   *Pool
	rules  combat.Rules
	logger *zap.Logger
	now    func() time.Time
}

// NewPartySlotRepository creates a PartySlotRepository backed by pool.
//
// Precondition: pool must be open and the party_slots migration applied.
func NewPartySlotRepository(pool *Pool, rules combat.Rules, logger *zap.Logger) *PartySlotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartySlotRepository{pool: pool, rules: rules, logger: logger, now: time.Now}
}

func (r *PartySlotRepository) db() *pgxpool.Pool { return r.pool.DB() }

// Load returns the combatant stored in slot.
//
// Postcondition: returns storage.ErrNotFound when the slot is empty.
func (r *PartySlotRepository) Load(ctx context.Context, slot string) (*combat.Combatant, error) {
	var data []byte
	err := r.db().QueryRow(ctx,
		`SELECT record FROM party_slots WHERE slot = $1`, slot,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("loading slot %s: %w", slot, err)
	}
	return storage.Decode(data, r.rules)
}

// Save upserts c into slot.
//
// Precondition: c must be non-nil.
// Postcondition: a subsequent Load of slot returns an equivalent combatant.
func (r *PartySlotRepository) Save(ctx context.Context, slot string, c *combat.Combatant) error {
	data, err := storage.Encode(slot, c, r.now())
	if err != nil {
		return err
	}
	_, err = r.db().Exec(ctx, `
		INSERT INTO party_slots (slot, combatant_id, schema_version, record, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (slot) DO UPDATE
		SET combatant_id = EXCLUDED.combatant_id,
		    schema_version = EXCLUDED.schema_version,
		    record = EXCLUDED.record,
		    updated_at = NOW()`,
		slot, c.ID, storage.SchemaVersion, data,
	)
	if err != nil {
		return fmt.Errorf("saving slot %s: %w", slot, err)
	}
	r.logger.Debug("party slot saved",
		zap.String("slot", slot),
		zap.Int64("combatant_id", c.ID),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// MaxCombatantID returns the largest combatant ID in any slot, or 0.
func (r *PartySlotRepository) MaxCombatantID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db().QueryRow(ctx,
		`SELECT COALESCE(MAX(combatant_id), 0) FROM party_slots`,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("querying max combatant id: %w", err)
	}
	return id, nil
}

// Close releases the underlying pool.
func (r *PartySlotRepository) Close() error {
	r.pool.Close()
	return nil
}

var _ storage.Repository = (*PartySlotRepository)(nil)
