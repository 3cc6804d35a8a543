package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/storage"
	"github.com/cory-johannsen/faiths/internal/storage/postgres"
	"github.com/cory-johannsen/faiths/internal/testutil"
)

func setupRepo(t *testing.T) *postgres.PartySlotRepository {
	t.Helper()
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return postgres.NewPartySlotRepository(pc.Pool, combat.DefaultRules(), nil)
}

func uniqueSlot(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func newCombatant(t *testing.T, id int64, name string) *combat.Combatant {
	t.Helper()
	c, err := combat.New(combat.Params{
		ID:      id,
		Species: "zubat",
		Name:    name,
		Type:    "poison",
		Stats:   combat.Stats{Attack: 45, Defense: 35, Speed: 55},
		Moves:   []string{"bite"},
	}, combat.DefaultRules())
	require.NoError(t, err)
	return c
}

func TestPartySlotRepository(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	t.Run("load missing slot", func(t *testing.T) {
		_, err := repo.Load(ctx, uniqueSlot("missing"))
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("save then load", func(t *testing.T) {
		slot := uniqueSlot("party")
		c := newCombatant(t, 11, "Echo")
		c.VitalityPercent = 42
		require.NoError(t, repo.Save(ctx, slot, c))

		got, err := repo.Load(ctx, slot)
		require.NoError(t, err)
		assert.Equal(t, c.Snapshot(), got.Snapshot())
	})

	t.Run("save overwrites slot", func(t *testing.T) {
		slot := uniqueSlot("party")
		require.NoError(t, repo.Save(ctx, slot, newCombatant(t, 12, "First")))
		require.NoError(t, repo.Save(ctx, slot, newCombatant(t, 13, "Second")))

		got, err := repo.Load(ctx, slot)
		require.NoError(t, err)
		assert.Equal(t, "Second", got.Name)
		assert.Equal(t, int64(13), got.ID)
	})

	t.Run("max combatant id", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, uniqueSlot("party"), newCombatant(t, 900, "Big")))
		id, err := repo.MaxCombatantID(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, id, int64(900))
	})
}

// Property: any saved vitality survives a round trip.
func TestPartySlotRepository_PropertyVitalityRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	rapid.Check(t, func(rt *rapid.T) {
		vitality := rapid.Float64Range(0.1, 100).Draw(rt, "vitality")
		slot := uniqueSlot("prop")
		c := newCombatant(t, 20, "Prop")
		c.VitalityPercent = vitality
		if err := repo.Save(ctx, slot, c); err != nil {
			rt.Fatalf("save: %v", err)
		}
		got, err := repo.Load(ctx, slot)
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		if got.VitalityPercent != vitality {
			rt.Fatalf("vitality %v, want %v", got.VitalityPercent, vitality)
		}
	})
}
