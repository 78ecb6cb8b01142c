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

	"github.com/cory-johannsen/hexcrawl/internal/game/dice"
	"github.com/cory-johannsen/hexcrawl/internal/scripting"
)

func newTestManager(t testing.TB, faces ...int) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	if len(faces) == 0 {
		faces = []int{1}
	}
	roller := dice.NewRoller(dice.NewFixedSource(faces...), logger)
	mgr := scripting.NewManager(roller, logger)
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0o644))
	return dir
}

func TestManager_CallNumber(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "rules.lua", `
		function adjust_cost(raw, speed, con, mode, biome)
			if biome == "swamp" and mode ~= "cautious" then
				return raw + 1
			end
			return raw - (speed - 30) / 10
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	assert.True(t, mgr.Has("adjust_cost"))

	got, err := mgr.CallNumber("adjust_cost", 5.0, 30, 12, "normal", "swamp")
	require.NoError(t, err)
	assert.Equal(t, 6.0, got)

	got, err = mgr.CallNumber("adjust_cost", 5.0, 40, 12, "cautious", "swamp")
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
}

func TestManager_CallBeforeLoad(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.CallNumber("adjust_cost", 1.0)
	assert.ErrorIs(t, err, scripting.ErrNotLoaded)
	assert.False(t, mgr.Has("adjust_cost"))
}

func TestManager_MissingFunction(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "empty.lua", `-- nothing`), 0))
	_, err := mgr.CallNumber("adjust_cost", 1.0)
	assert.ErrorIs(t, err, scripting.ErrNoFunction)
}

func TestManager_NonNumberResult(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "s.lua", `function f() return "fast" end`), 0))
	_, err := mgr.CallNumber("f")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want number")
}

func TestManager_UnsupportedArgument(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "s.lua", `function f(x) return 1 end`), 0))
	_, err := mgr.Call("f", []int{1})
	assert.Error(t, err)
}

func TestManager_RuntimeErrorLoggedAtWarn(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.Call("bad_hook")
	require.Error(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestManager_InvalidLuaFailsLoad(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load(writeTempLua(t, "bad.lua", `this is not valid lua @@@@`), 0))
}

func TestManager_MissingDirFailsLoad(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load(filepath.Join(t.TempDir(), "nope"), 0))
}

func TestManager_FailedReloadKeepsPreviousScripts(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "ok.lua", `function f() return 7 end`), 0))
	require.Error(t, mgr.Load(writeTempLua(t, "bad.lua", `@@@`), 0))
	got, err := mgr.CallNumber("f")
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestManager_FilesLoadInNameOrder(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`not lua`), 0o644))
	require.NoError(t, mgr.Load(dir, 0))
	got, err := mgr.CallNumber("get_val")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)
}

func TestManager_BudgetIsPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "loops.lua", `
		function small()
			local n = 0
			for i = 1, 20 do n = n + i end
			return n
		end
		function forever()
			while true do end
		end
	`)
	require.NoError(t, mgr.Load(dir, 1000))
	for i := 0; i < 20; i++ {
		got, err := mgr.CallNumber("small")
		require.NoError(t, err)
		assert.Equal(t, 210.0, got)
	}
	_, err := mgr.Call("forever")
	require.Error(t, err)
	got, err := mgr.CallNumber("small")
	require.NoError(t, err, "a runaway call must not exhaust later calls")
	assert.Equal(t, 210.0, got)
}

func TestManager_RollModule(t *testing.T) {
	mgr, _ := newTestManager(t, 3, 4)
	dir := writeTempLua(t, "dice.lua", `
		function roll_it() return hexcrawl.roll("2d6+1") end
		function per_day() return hexcrawl.tokens_per_day end
		function bad_roll() return hexcrawl.roll("banana") end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	got, err := mgr.CallNumber("roll_it")
	require.NoError(t, err)
	assert.Equal(t, 8.0, got)

	got, err = mgr.CallNumber("per_day")
	require.NoError(t, err)
	assert.Equal(t, float64(scripting.TokensPerDay), got)

	_, err = mgr.Call("bad_roll")
	assert.Error(t, err)
}

func TestManager_LogModule(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "log.lua", `function f() hexcrawl.log("hello") return 0 end`), 0))
	_, err := mgr.CallNumber("f")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("script: hello").Len())
}

func TestManager_CloseThenCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "x.lua", `function f() return 1 end`), 0))
	mgr.Close()
	_, err := mgr.Call("f")
	assert.ErrorIs(t, err, scripting.ErrNotLoaded)
}

func TestManager_ConcurrentCalls(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "add.lua", `function add(a, b) return a + b end`), 0))

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				got, err := mgr.CallNumber("add", 1, 2)
				assert.NoError(t, err)
				assert.Equal(t, 3.0, got)
			}
		}()
	}
	wg.Wait()
}

func TestProperty_CallNumberPassesNumbersThrough(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "id.lua", `function id(x) return x end`), 0))
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.IntRange(-1000, 1000).Draw(rt, "x")
		got, err := mgr.CallNumber("id", x)
		if err != nil {
			rt.Fatal(err)
		}
		if got != float64(x) {
			rt.Fatalf("got %v want %d", got, x)
		}
	})
}
