package scripting

import (
	lua "github.com/yuin/gopher-lua"
)

// TokensPerDay mirrors the travel clock so scripts can reason in days.
const TokensPerDay = 6

// registerModules installs the hexcrawl global table:
//
//	hexcrawl.roll(expr)      -> total of a dice expression such as "2d6+1"
//	hexcrawl.tokens_per_day  -> travel tokens in one day
//	hexcrawl.log(msg)        -> debug log line
//
// Precondition: L must come from NewSandboxedState.
func (m *Manager) registerModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "tokens_per_day", lua.LNumber(TokensPerDay))
	L.SetField(mod, "roll", L.NewFunction(m.luaRoll))
	L.SetField(mod, "log", L.NewFunction(m.luaLog))
	L.SetGlobal("hexcrawl", mod)
}

func (m *Manager) luaRoll(L *lua.LState) int {
	expr := L.CheckString(1)
	if m.roller == nil {
		L.RaiseError("hexcrawl.roll: no dice roller configured")
		return 0
	}
	res, err := m.roller.RollExpr(expr)
	if err != nil {
		L.RaiseError("hexcrawl.roll: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(res.Total()))
	return 1
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Debug("script: " + L.CheckString(1))
	return 0
}
