package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/faiths/internal/scripting"
)

func TestNewSandboxedState_StrippedGlobals(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	require.NotNil(t, L)
	defer L.Close()
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_SafeLibsAvailable(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	defer L.Close()
	err := L.DoString(`
		assert(math.max(4, 9) == 9, "math.max failed")
		assert(string.format("%d%%", 5) == "5%", "string.format failed")
		local t = {3, 1, 2}
		table.sort(t)
		assert(t[1] == 1, "table.sort failed")
	`)
	assert.NoError(t, err)
}

func TestNewSandboxedState_RequireFails(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	defer L.Close()
	assert.Error(t, L.DoString(`require("os")`))
}

func TestNewSandboxedState_InstructionLimit(t *testing.T) {
	L := scripting.NewSandboxedState(10)
	defer L.Close()
	assert.Error(t, L.DoString(`while true do end`))
}

func TestNewSandboxedState_DefaultLimitRunsNormalScripts(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	defer L.Close()
	assert.NoError(t, L.DoString(`
		local s = 0
		for i = 1, 1000 do s = s + i end
		assert(s == 500500)
	`))
}

// Property: an unbounded loop always hits the limit.
func TestProperty_InstructionLimitAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(t, "limit")
		L := scripting.NewSandboxedState(limit)
		defer L.Close()
		if err := L.DoString(`while true do end`); err == nil {
			t.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
