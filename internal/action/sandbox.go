package action

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// newState opens only the libraries that can't reach the host.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// installAPI adds the chordboard table and routes print to the logger.
func (s *Script) installAPI() {
	api := s.L.NewTable()
	s.L.SetFuncs(api, map[string]lua.LGFunction{
		"log":   s.luaLog,
		"spawn": s.luaSpawn,
	})
	s.L.SetGlobal("chordboard", api)
	s.L.SetGlobal("print", s.L.NewFunction(s.luaLog))
}

// luaLog joins its arguments with spaces and logs them at info level.
func (s *Script) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	s.log.WithField("script", s.path).Info(strings.Join(parts, " "))
	return 0
}

// luaSpawn starts a program. It returns true, or nil and the error text.
func (s *Script) luaSpawn(L *lua.LState) int {
	name := L.CheckString(1)
	args := make([]string, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, L.CheckString(i))
	}
	if err := s.spawn(name, args...); err != nil {
		s.log.WithError(err).WithField("program", name).Warn("spawn failed")
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}
