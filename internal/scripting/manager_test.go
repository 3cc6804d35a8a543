package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/dice"
	"github.com/cory-johannsen/faiths/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(combat.DefaultTypeChart(), dice.NewSeededSource(1), zap.New(core))
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func mkCombatant(t testing.TB, name, typ string, vitality float64) *combat.Combatant {
	t.Helper()
	c, err := combat.New(combat.Params{
		ID:    1,
		Name:  name,
		Type:  typ,
		Stats: combat.Stats{Attack: 40, Defense: 40, Speed: 40},
		Moves: []string{"tackle"},
	}, combat.DefaultRules())
	require.NoError(t, err)
	c.VitalityPercent = vitality
	return c
}

func movesOf(t testing.TB, ids ...string) []combat.Move {
	t.Helper()
	reg := combat.DefaultMoves()
	out := make([]combat.Move, 0, len(ids))
	for _, id := range ids {
		m, ok := reg.Get(id)
		require.True(t, ok, id)
		out = append(out, m)
	}
	return out
}

func TestManager_Load_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	assert.Equal(t, lua.LNumber(7), mgr.CallHook("test_hook", lua.LNumber(3), lua.LNumber(4)))
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "empty.lua", `-- no functions`), 0))
	assert.Equal(t, lua.LNil, mgr.CallHook("nonexistent_hook"))
}

func TestManager_CallHook_NotLoaded_ReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Equal(t, lua.LNil, mgr.CallHook("anything"))
}

func TestManager_CallHook_RuntimeError_WarnLogNoPanic(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "bad.lua", `
		function explode()
			error("boom")
		end
	`), 0))
	assert.Equal(t, lua.LNil, mgr.CallHook("explode"))
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestManager_BudgetResetsPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "loop.lua", `
		function work()
			local s = 0
			for i = 1, 200 do s = s + i end
			return s
		end
	`), 2000))
	for i := 0; i < 20; i++ {
		assert.Equal(t, lua.LNumber(20100), mgr.CallHook("work"), "call %d", i)
	}
}

func TestManager_InfiniteLoopIsCut(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "spin.lua", `
		function spin() while true do end end
		function ok() return 1 end
	`), 500))
	assert.Equal(t, lua.LNil, mgr.CallHook("spin"))
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
	assert.Equal(t, lua.LNumber(1), mgr.CallHook("ok"))
}

func TestManager_Load_InvalidLua_KeepsOldVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "good.lua", `function v() return 1 end`), 0))
	err := mgr.Load(writeTempLua(t, "bad.lua", `this is not lua`), 0)
	assert.Error(t, err)
	assert.Equal(t, lua.LNumber(1), mgr.CallHook("v"))
}

func TestManager_Load_MissingDir(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load(filepath.Join(t.TempDir(), "nope"), 0))
}

func TestManager_Load_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`order = "a"`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`order = order .. "b"
		function get_order() return order end`), 0644))
	require.NoError(t, mgr.Load(dir, 0))
	assert.Equal(t, lua.LString("ab"), mgr.CallHook("get_order"))
}

func TestNewManager_PanicsOnNilDeps(t *testing.T) {
	logger := zap.NewNop()
	src := dice.NewSeededSource(1)
	chart := combat.DefaultTypeChart()
	assert.Panics(t, func() { scripting.NewManager(nil, src, logger) })
	assert.Panics(t, func() { scripting.NewManager(chart, nil, logger) })
	assert.Panics(t, func() { scripting.NewManager(chart, src, nil) })
}

func TestManager_ChooseMove(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "ai.lua", `
		function choose_move(self, foe, moves)
			for i, m in ipairs(moves) do
				if m.id == "ember" then return i end
			end
			return nil
		end
	`), 0))
	self := mkCombatant(t, "Cinder", "fire", 100)
	foe := mkCombatant(t, "Bud", "grass", 100)

	idx, ok := mgr.ChooseMove(self, foe, movesOf(t, "scratch", "ember"))
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = mgr.ChooseMove(self, foe, movesOf(t, "scratch"))
	assert.False(t, ok)
}

func TestManager_ChooseMove_RejectsOutOfRange(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "ai.lua", `
		function choose_move(self, foe, moves) return #moves + 1 end
	`), 0))
	_, ok := mgr.ChooseMove(mkCombatant(t, "A", "fire", 100), mkCombatant(t, "B", "water", 100), movesOf(t, "tackle"))
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("scripting: choose_move returned an invalid index").Len())
}

func TestManager_ChooseMove_SeesConditionNotNumbers(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "ai.lua", `
		function choose_move(self, foe, moves)
			if foe.condition == "on the brink of collapse" and foe.vitality == nil then
				return 2
			end
			return 1
		end
	`), 0))
	idx, ok := mgr.ChooseMove(mkCombatant(t, "A", "fire", 100), mkCombatant(t, "B", "water", 15), movesOf(t, "tackle", "scratch"))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestManager_ChooseMove_ShippedScriptPrefersEffective(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(filepath.Join("..", "..", "content", "scripts", "opponent"), 0))
	self := mkCombatant(t, "Cinder", "fire", 100)
	foe := mkCombatant(t, "Bud", "grass", 40)

	idx, ok := mgr.ChooseMove(self, foe, movesOf(t, "growl", "scratch", "ember"))
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

// Property: a valid returned index always maps into moves.
func TestProperty_ChooseMoveIndexInRange(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "ai.lua", `
		pick = nil
		function set_pick(p) pick = p end
		function choose_move(self, foe, moves) return pick end
	`), 0))
	a := mkCombatant(t, "A", "fire", 100)
	b := mkCombatant(t, "B", "water", 100)
	all := movesOf(t, "tackle", "scratch", "bite", "ember")
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, len(all)).Draw(rt, "n")
		pick := rapid.IntRange(-2, 6).Draw(rt, "pick")
		mgr.CallHook("set_pick", lua.LNumber(pick))
		idx, ok := mgr.ChooseMove(a, b, all[:n])
		if ok != (pick >= 1 && pick <= n) {
			rt.Fatalf("pick %d n %d: ok=%v", pick, n, ok)
		}
		if ok && idx != pick-1 {
			rt.Fatalf("idx %d, want %d", idx, pick-1)
		}
	})
}

func TestManager_ConcurrentCalls_NoRace(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "ai.lua", `
		function choose_move(self, foe, moves) return 1 end
	`), 0))
	moves := movesOf(t, "tackle")
	a := mkCombatant(t, "A", "fire", 100)
	b := mkCombatant(t, "B", "water", 100)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				idx, ok := mgr.ChooseMove(a, b, moves)
				assert.True(t, ok)
				assert.Equal(t, 0, idx)
			}
		}()
	}
	wg.Wait()
}
