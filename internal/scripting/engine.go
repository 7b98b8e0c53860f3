package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/nodekit/internal/core/ecs"
	"github.com/l1jgo/nodekit/internal/core/tracker"
	"github.com/l1jgo/nodekit/internal/world"
)

// Engine wraps a single gopher-lua VM that drives a scenario against the world.
// Single-goroutine access only (tick loop).
//
// Scripts see these globals:
//
//	spawn(prefab) -> node         create a node from a prefab
//	create(name) -> node          create an empty node
//	attach(node, type [, fields]) add a catalog component
//	detach(node, type)            remove a component
//	has(node, type) -> bool
//	destroy(node)                 queue the node for end-of-tick destruction
//	count(type) -> n              live nodes holding type
//	watch(node, type [, on_attach [, on_detach]]) -> handle
//	bound(handle) -> bool         whether the watched component is present
//	unwatch(handle)
//	log(msg)
//
// A script may define on_tick(tick), called by ScriptSystem each tick.
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	spawner *world.Spawner
	world   *ecs.World

	watches   map[int]watch
	nextWatch int
	trackers  tracker.Group
	unobserve func()
}

type watch struct {
	node    ecs.EntityID
	tracker *tracker.Tracker[any]
}

// NewEngine creates a VM with the scenario API installed.
func NewEngine(spawner *world.Spawner, log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:      vm,
		log:     log,
		spawner: spawner,
		world:   spawner.World(),
		watches: make(map[int]watch),
	}
	// Watches die with their node.
	e.unobserve = e.world.Observe(func(ev ecs.NodeEvent) {
		if ev.Destroyed {
			e.unwatchNode(ev.Node.ID)
		}
	})
	for name, fn := range map[string]lua.LGFunction{
		"spawn":   e.luaSpawn,
		"create":  e.luaCreate,
		"attach":  e.luaAttach,
		"detach":  e.luaDetach,
		"has":     e.luaHas,
		"destroy": e.luaDestroy,
		"count":   e.luaCount,
		"watch":   e.luaWatch,
		"bound":   e.luaBound,
		"unwatch": e.luaUnwatch,
		"log":     e.luaLog,
	} {
		vm.SetGlobal(name, vm.NewFunction(fn))
	}
	return e
}

// LoadFile runs a scenario file.
func (e *Engine) LoadFile(path string) error {
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	e.log.Debug("loaded lua script", zap.String("file", path))
	return nil
}

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// CallTick calls the script's on_tick(tick), if it defines one.
func (e *Engine) CallTick(tick uint64) error {
	fn := e.vm.GetGlobal("on_tick")
	if fn == lua.LNil {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(tick)); err != nil {
		return fmt.Errorf("on_tick(%d): %w", tick, err)
	}
	return nil
}

// Watches returns the number of live watch handles.
func (e *Engine) Watches() int {
	return len(e.watches)
}

// Close disposes every tracker the script created and shuts the VM down.
func (e *Engine) Close() {
	e.unobserve()
	e.trackers.Dispose()
	e.watches = nil
	e.vm.Close()
}

// ── Lua API ───────────────────────────────────────────────────────

func (e *Engine) checkNode(L *lua.LState, n int) *ecs.Node {
	id := ecs.EntityID(L.CheckNumber(n))
	node, ok := e.world.Node(id)
	if !ok {
		L.ArgError(n, fmt.Sprintf("no live node %s", id))
		return nil
	}
	return node
}

func checkKey(L *lua.LState, n int) ecs.TypeKey {
	return ecs.TypeKey(L.CheckString(n))
}

func pushNode(L *lua.LState, n *ecs.Node) {
	L.Push(lua.LNumber(n.ID))
}

func (e *Engine) luaSpawn(L *lua.LState) int {
	n, err := e.spawner.Spawn(L.CheckString(1))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	pushNode(L, n)
	return 1
}

func (e *Engine) luaCreate(L *lua.LState) int {
	pushNode(L, e.world.CreateNode(L.OptString(1, "")))
	return 1
}

func (e *Engine) luaAttach(L *lua.LState) int {
	node := e.checkNode(L, 1)
	key := checkKey(L, 2)
	var fields map[string]any
	if t := L.OptTable(3, nil); t != nil {
		fields = tableToMap(t)
	}
	if _, err := e.spawner.Attach(node, key, fields); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) luaDetach(L *lua.LState) int {
	node := e.checkNode(L, 1)
	if err := e.spawner.Detach(node, checkKey(L, 2)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) luaHas(L *lua.LState) int {
	node := e.checkNode(L, 1)
	L.Push(lua.LBool(node.Components.Has(checkKey(L, 2))))
	return 1
}

func (e *Engine) luaDestroy(L *lua.LState) int {
	node := e.checkNode(L, 1)
	e.world.MarkForDestruction(node.ID)
	return 0
}

func (e *Engine) luaCount(L *lua.LState) int {
	L.Push(lua.LNumber(ecs.CountKey(e.world, checkKey(L, 1))))
	return 1
}

func (e *Engine) luaWatch(L *lua.LState) int {
	node := e.checkNode(L, 1)
	key := checkKey(L, 2)
	onAttach := L.OptFunction(3, nil)
	onDetach := L.OptFunction(4, nil)

	e.nextWatch++
	handle := e.nextWatch
	log := e.log.With(zap.Int("watch", handle), zap.Stringer("node", node.ID), zap.String("type", string(key)))

	t := tracker.NewScoped[any](node.Components, key,
		func(any) {
			log.Info("component attached")
			e.callback(onAttach, node, key)
		},
		func(any) {
			log.Info("component detaching")
			e.callback(onDetach, node, key)
		},
	)
	e.watches[handle] = watch{node: node.ID, tracker: t}
	e.trackers.Add(t)

	L.Push(lua.LNumber(handle))
	return 1
}

func (e *Engine) luaBound(L *lua.LState) int {
	w, ok := e.watches[L.CheckInt(1)]
	L.Push(lua.LBool(ok && w.tracker.Bound()))
	return 1
}

func (e *Engine) luaUnwatch(L *lua.LState) int {
	e.unwatch(L.CheckInt(1))
	return 0
}

func (e *Engine) unwatch(handle int) {
	w, ok := e.watches[handle]
	if !ok {
		return
	}
	w.tracker.Dispose()
	e.trackers.Remove(w.tracker)
	delete(e.watches, handle)
}

func (e *Engine) unwatchNode(id ecs.EntityID) {
	for handle, w := range e.watches {
		if w.node == id {
			e.unwatch(handle)
		}
	}
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("script", zap.String("msg", L.CheckString(1)))
	return 0
}

// callback runs a script callback from inside registry dispatch. Errors are
// logged rather than raised: the Go caller is the registry, not the script.
func (e *Engine) callback(fn *lua.LFunction, node *ecs.Node, key ecs.TypeKey) {
	if fn == nil {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(node.ID), lua.LString(key)); err != nil {
		e.log.Error("lua watch callback error", zap.String("type", string(key)), zap.Error(err))
	}
}

// tableToMap converts a flat Lua table of fields into Go values for the
// component catalog. Array-like tables become []any.
func tableToMap(t *lua.LTable) map[string]any {
	out := make(map[string]any, t.Len())
	t.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			out[string(ks)] = fromLua(v)
		}
	})
	return out
}

func fromLua(v lua.LValue) any {
	switch x := v.(type) {
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		f := float64(x)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(x)
	case *lua.LTable:
		if x.Len() > 0 {
			list := make([]any, 0, x.Len())
			for i := 1; i <= x.Len(); i++ {
				list = append(list, fromLua(x.RawGetInt(i)))
			}
			return list
		}
		return tableToMap(x)
	}
	return nil
}
