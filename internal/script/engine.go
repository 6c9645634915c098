// Package script hosts Lua entity controllers. A controller is a global Lua
// function taking (id, x, y, z, dt) and returning up to six numbers: the
// impulse vector followed by the torque-impulse vector to apply to the
// entity's body this tick.
package script

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for controller execution.
// Single-goroutine access only (the frame loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file in the given
// directory. A missing directory yields an engine with no controllers.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load controller scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Info("controller script loaded", zap.String("path", path))
	}
	return nil
}

// Has reports whether a controller function with the given name exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// Control invokes the named controller for one entity. Script errors are
// logged and reported as ok=false; they never abort the frame loop.
func (e *Engine) Control(name string, id uint32, pos mgl32.Vec3, dt float32) (impulse, torque mgl32.Vec3, ok bool) {
	fn, isFn := e.vm.GetGlobal(name).(*lua.LFunction)
	if !isFn {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}

	err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    6,
		Protect: true,
	},
		lua.LNumber(id),
		lua.LNumber(pos.X()),
		lua.LNumber(pos.Y()),
		lua.LNumber(pos.Z()),
		lua.LNumber(dt),
	)
	if err != nil {
		e.log.Warn("controller script failed",
			zap.String("controller", name),
			zap.Uint32("entity", id),
			zap.Error(err),
		)
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}

	var out [6]float32
	for i := 5; i >= 0; i-- {
		v := e.vm.Get(-1)
		e.vm.Pop(1)
		if n, isNum := v.(lua.LNumber); isNum {
			out[i] = float32(n)
		}
	}
	return mgl32.Vec3{out[0], out[1], out[2]}, mgl32.Vec3{out[3], out[4], out[5]}, true
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
