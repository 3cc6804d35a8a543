package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/dice"
)

// ChooseMoveHook is the global Lua function consulted for opponent moves.
const ChooseMoveHook = "choose_move"

// Manager owns one sandboxed LState loaded from a script directory and
// dispatches hooks into it.
//
// A single LState is not goroutine-safe; Manager serializes every call.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	limit  int
	chart  *combat.TypeChart
	src    dice.Source
	logger *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: chart, src and logger must be non-nil.
// Postcondition: Returns a non-nil Manager; CallHook is a no-op until Load.
func NewManager(chart *combat.TypeChart, src dice.Source, logger *zap.Logger) *Manager {
	if chart == nil {
		panic("scripting.NewManager: chart must not be nil")
	}
	if src == nil {
		panic("scripting.NewManager: src must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{chart: chart, src: src, logger: logger}
}

// Load creates a fresh sandboxed VM, registers the engine.* modules, then
// executes every *.lua file in scriptDir in lexicographic order. A previously
// loaded VM is replaced only when every file loads.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: returns an error on read or Lua load failure and keeps the old VM.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, path := range luaFiles {
		setBudget(L, instLimit)
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	old := m.state
	m.state = L
	m.limit = instLimit
	m.mu.Unlock()
	if old != nil {
		old.Close()
	}
	m.logger.Info("scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// CallHook calls the named Lua global with a fresh instruction budget.
// Returns LNil if no VM is loaded or the hook is undefined. Lua runtime
// errors, including an exhausted budget, are logged at Warn and never
// propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) lua.LValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callLocked(hook, func(*lua.LState) []lua.LValue { return args })
}

func (m *Manager) callLocked(hook string, build func(L *lua.LState) []lua.LValue) lua.LValue {
	L := m.state
	if L == nil {
		m.logger.Debug("scripting: no VM loaded", zap.String("hook", hook))
		return lua.LNil
	}
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil
	}
	cancel := setBudget(L, m.limit)
	defer cancel()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, build(L)...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret
}

// ChooseMove asks the choose_move hook to pick one of moves for self
// against foe. ok is false when the hook is missing, errors, returns nil,
// or returns an index outside moves.
//
// Postcondition: when ok, 0 <= index < len(moves).
func (m *Manager) ChooseMove(self, foe *combat.Combatant, moves []combat.Move) (int, bool) {
	if len(moves) == 0 {
		return 0, false
	}
	m.mu.Lock()
	ret := m.callLocked(ChooseMoveHook, func(L *lua.LState) []lua.LValue {
		list := L.NewTable()
		for _, mv := range moves {
			list.Append(moveToTable(L, mv, m.chart.Multiplier(mv.Type, foe.Type)))
		}
		return []lua.LValue{combatantToTable(L, self), combatantToTable(L, foe), list}
	})
	m.mu.Unlock()

	n, isNum := ret.(lua.LNumber)
	if !isNum {
		return 0, false
	}
	idx := int(n) - 1
	if float64(n) != float64(int(n)) || idx < 0 || idx >= len(moves) {
		m.logger.Warn("scripting: choose_move returned an invalid index",
			zap.String("combatant", self.Name),
			zap.Float64("returned", float64(n)),
			zap.Int("moves", len(moves)),
		)
		return 0, false
	}
	return idx, true
}

// Close releases the loaded VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
