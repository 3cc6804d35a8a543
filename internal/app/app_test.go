package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/faiths/internal/app"
	"github.com/cory-johannsen/faiths/internal/config"
	"github.com/cory-johannsen/faiths/internal/game/battle"
	"github.com/cory-johannsen/faiths/internal/game/history"
	"github.com/cory-johannsen/faiths/internal/storage"
)

func testConfig(t *testing.T, dbPath, policy string) config.Config {
	t.Helper()
	content := filepath.Join("..", "..", "content")
	v := config.Defaults()
	v.Set("logging.level", "error")
	v.Set("storage.sqlite_path", dbPath)
	v.Set("content.moves", filepath.Join(content, "moves.yaml"))
	v.Set("content.type_chart", filepath.Join(content, "typechart.yaml"))
	v.Set("content.species_dir", filepath.Join(content, "species"))
	v.Set("content.locations", filepath.Join(content, "locations.yaml"))
	v.Set("content.opponent_scripts", filepath.Join(content, "scripts", "opponent"))
	v.Set("battle.opponent_policy", policy)
	v.Set("battle.seed", 42)
	cfg, err := config.LoadFromViper(v)
	require.NoError(t, err)
	return cfg
}

func initialize(t *testing.T, cfg config.Config) *app.App {
	t.Helper()
	a, cleanup, err := app.Initialize(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return a
}

func TestInitialize_PartyStarterPersists(t *testing.T) {
	ctx := context.Background()
	a := initialize(t, testConfig(t, filepath.Join(t.TempDir(), "faiths.db"), "random"))

	c, err := a.Party(ctx, "party-1", "Cinder")
	require.NoError(t, err)
	assert.Equal(t, "Cinder", c.Name)
	assert.Equal(t, "charmander", c.Species)
	assert.Equal(t, 100.0, c.VitalityPercent)

	slot, ok := a.Slots.SlotOf(c)
	require.True(t, ok)
	assert.Equal(t, "party-1", slot)

	again, err := a.Party(ctx, "party-1", "ignored")
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)
	assert.Equal(t, "Cinder", again.Name)
}

func TestApp_WildRetreatIsSaved(t *testing.T) {
	ctx := context.Background()
	a := initialize(t, testConfig(t, filepath.Join(t.TempDir(), "faiths.db"), "script"))

	player, err := a.Party(ctx, "party-1", "Cinder")
	require.NoError(t, err)

	enc, err := a.Wild(player, "cave", 1)
	require.NoError(t, err)
	assert.Greater(t, enc.Opponent().ID, player.ID)

	turn, err := enc.Submit(ctx, battle.Retreat())
	require.NoError(t, err)
	require.True(t, turn.Over)
	require.NoError(t, turn.Result.SaveErr)

	stored, err := a.Repository.Load(ctx, "party-1")
	require.NoError(t, err)
	require.Equal(t, 1, stored.History.Len())
	latest, _ := stored.History.Latest()
	assert.Equal(t, history.OutcomeRetreat, latest.Outcome)
	assert.Equal(t, enc.Opponent().Name, latest.OpponentName)
	assert.NotEmpty(t, latest.Environment)
}

func TestApp_WildUnknownLocation(t *testing.T) {
	ctx := context.Background()
	a := initialize(t, testConfig(t, filepath.Join(t.TempDir(), "faiths.db"), "random"))
	player, err := a.Party(ctx, "party-1", "")
	require.NoError(t, err)

	_, err = a.Wild(player, "moon", 1)
	assert.Error(t, err)
	assert.Equal(t, 0, a.Registry.Active())
}

func TestInitialize_SequenceResumesPastStoredIDs(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "faiths.db")
	cfg := testConfig(t, path, "random")

	first, cleanup, err := app.Initialize(ctx, cfg)
	require.NoError(t, err)
	c, err := first.Party(ctx, "party-1", "Cinder")
	require.NoError(t, err)
	cleanup()

	second := initialize(t, cfg)
	next := second.Sequence.Next()
	assert.Greater(t, next, c.ID)
}

func TestSlots_SaveRequiresBinding(t *testing.T) {
	ctx := context.Background()
	a := initialize(t, testConfig(t, filepath.Join(t.TempDir(), "faiths.db"), "random"))
	c, err := a.Generator.Starter("squirtle", "Shell")
	require.NoError(t, err)

	assert.Error(t, a.Slots.Save(ctx, c))

	a.Slots.Bind("party-2", c)
	require.NoError(t, a.Slots.Save(ctx, c))
	_, err = a.Repository.Load(ctx, "party-2")
	assert.NoError(t, err)
	_, err = a.Repository.Load(ctx, "party-3")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
