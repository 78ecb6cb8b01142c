package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/game/dice"
)

// ErrNotLoaded is returned by calls made before Load succeeds.
var ErrNotLoaded = errors.New("scripting: no scripts loaded")

// ErrNoFunction is returned when the requested global is not a function.
var ErrNoFunction = errors.New("scripting: function not defined")

// Manager owns one sandboxed VM holding every rule script of a campaign.
//
// Calls are serialized by a mutex; an LState is single-threaded.
type Manager struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger
}

// NewManager creates an empty Manager. A nil roller leaves hexcrawl.roll
// raising an error; a nil logger disables logging.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{roller: roller, logger: logger}
}

// Load creates a fresh VM, registers the hexcrawl module and executes every
// *.lua file in scriptDir in lexicographic order. A previously loaded VM is
// replaced only when loading succeeds.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit for loading
// and for each later call.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(files)

	L, cancel := NewSandboxedState(instLimit)
	m.registerModules(L)
	for _, path := range files {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	cancel()
	L.RemoveContext()

	m.mu.Lock()
	old := m.L
	m.L, m.instLimit = L, instLimit
	m.mu.Unlock()
	if old != nil {
		old.Close()
	}
	m.logger.Info("scripts loaded", zap.String("dir", scriptDir), zap.Int("files", len(files)))
	return nil
}

// Has reports whether fn is a global function in the loaded VM.
func (m *Manager) Has(fn string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L == nil {
		return false
	}
	return m.L.GetGlobal(fn).Type() == lua.LTFunction
}

// Call invokes the global function fn with args and returns its first result.
// Each call gets a fresh instruction budget. Lua errors are logged at Warn
// and returned.
//
// Precondition: args are float64, int, string, bool or lua.LValue.
func (m *Manager) Call(fn string, args ...any) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L == nil {
		return lua.LNil, ErrNotLoaded
	}
	L := m.L
	f := L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return lua.LNil, fmt.Errorf("%w: %s", ErrNoFunction, fn)
	}
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		v, err := toLua(a)
		if err != nil {
			return lua.LNil, fmt.Errorf("scripting: %s argument %d: %w", fn, i+1, err)
		}
		largs[i] = v
	}

	ctx, cancel := newCountingContext(effectiveLimit(m.instLimit))
	L.SetContext(ctx)
	defer func() {
		cancel()
		L.RemoveContext()
	}()
	if err := L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, largs...); err != nil {
		m.logger.Warn("script error", zap.String("function", fn), zap.Error(err))
		return lua.LNil, fmt.Errorf("scripting: calling %s: %w", fn, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// CallNumber calls fn and requires a numeric result.
func (m *Manager) CallNumber(fn string, args ...any) (float64, error) {
	ret, err := m.Call(fn, args...)
	if err != nil {
		return 0, err
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("scripting: %s returned %s, want number", fn, ret.Type())
	}
	return float64(n), nil
}

// Close releases the VM. The Manager may be loaded again afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L != nil {
		m.L.Close()
		m.L = nil
	}
}

func toLua(v any) (lua.LValue, error) {
	switch x := v.(type) {
	case nil:
		return lua.LNil, nil
	case lua.LValue:
		return x, nil
	case float64:
		return lua.LNumber(x), nil
	case int:
		return lua.LNumber(x), nil
	case string:
		return lua.LString(x), nil
	case bool:
		return lua.LBool(x), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}
