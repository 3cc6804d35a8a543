package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/dice"
)

// RegisterModules registers the engine.* Lua tables into L:
//
//	engine.log.debug/info/warn(msg)
//	engine.dice.chance(p)          -> bool
//	engine.types.multiplier(m, d)  -> number
//	engine.types.describe(mult)    -> string
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "types", m.typesModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
	}
	for name, fn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "chance", L.NewFunction(func(L *lua.LState) int {
		p := float64(L.CheckNumber(1))
		L.Push(lua.LBool(dice.Chance(m.src, p)))
		return 1
	}))
	return mod
}

func (m *Manager) typesModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "multiplier", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(m.chart.Multiplier(L.CheckString(1), L.CheckString(2))))
		return 1
	}))
	L.SetField(mod, "describe", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(combat.EffectivenessText(float64(L.CheckNumber(1)))))
		return 1
	}))
	return mod
}

// combatantToTable exposes c the way a trainer would see it: descriptive
// condition and visible stats, never the vitality number.
func combatantToTable(L *lua.LState, c *combat.Combatant) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(c.Name))
	L.SetField(t, "species", lua.LString(c.Species))
	L.SetField(t, "type", lua.LString(c.Type))
	L.SetField(t, "condition", lua.LString(combat.DescribeVitality(c.VitalityPercent)))
	L.SetField(t, "attack", lua.LNumber(c.Stats.Attack))
	L.SetField(t, "defense", lua.LNumber(c.Stats.Defense))
	L.SetField(t, "speed", lua.LNumber(c.Stats.Speed))
	L.SetField(t, "injuries", lua.LNumber(len(c.Injuries())))
	return t
}

func moveToTable(L *lua.LState, mv combat.Move, multiplier float64) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(mv.ID))
	L.SetField(t, "name", lua.LString(mv.Name))
	L.SetField(t, "type", lua.LString(mv.Type))
	L.SetField(t, "category", lua.LString(string(mv.Category)))
	L.SetField(t, "power", lua.LNumber(mv.Power))
	L.SetField(t, "accuracy", lua.LNumber(mv.Accuracy))
	L.SetField(t, "multiplier", lua.LNumber(multiplier))
	return t
}
