package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/circuitrace/server/internal/track"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for track tuning hooks.
// Rooms are set up concurrently, so every call into the VM holds mu.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from <scriptsDir>/track.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadDir(filepath.Join(scriptsDir, "track")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load track scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
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
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// RelaxTuning calls the Lua relax_track_tuning function with the tuning that
// just failed and the 1-based relaxation round. Fields the script leaves out
// keep their old value. On a missing function or a script error it returns t
// unchanged and false.
func (e *Engine) RelaxTuning(t track.Tuning, round int) (track.Tuning, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal("relax_track_tuning")
	if fn == lua.LNil {
		e.log.Warn("lua function relax_track_tuning not found")
		return t, false
	}

	arg := e.vm.NewTable()
	arg.RawSetString("norm_center", lua.LNumber(t.NormCenter))
	arg.RawSetString("p_count", lua.LNumber(t.PCount))
	arg.RawSetString("min_d", lua.LNumber(t.MinD))
	arg.RawSetString("max_tries", lua.LNumber(t.MaxTries))
	arg.RawSetString("max_cross", lua.LNumber(t.MaxCross))
	arg.RawSetString("max_straight", lua.LNumber(t.MaxStraight))
	arg.RawSetString("randomness", lua.LNumber(t.Randomness))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg, lua.LNumber(round)); err != nil {
		e.log.Error("lua relax_track_tuning error", zap.Error(err))
		return t, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua relax_track_tuning returned non-table")
		return t, false
	}

	return track.Tuning{
		NormCenter:  lFloat(rt, "norm_center", t.NormCenter),
		PCount:      lInt(rt, "p_count", t.PCount),
		MinD:        lFloat(rt, "min_d", t.MinD),
		MaxTries:    lInt(rt, "max_tries", t.MaxTries),
		MaxCross:    lInt(rt, "max_cross", t.MaxCross),
		MaxStraight: lInt(rt, "max_straight", t.MaxStraight),
		Randomness:  lFloat(rt, "randomness", t.Randomness),
	}, true
}

func lFloat(t *lua.LTable, key string, def float64) float64 {
	v, ok := t.RawGetString(key).(lua.LNumber)
	if !ok {
		return def
	}
	return float64(v)
}

func lInt(t *lua.LTable, key string, def int) int {
	v, ok := t.RawGetString(key).(lua.LNumber)
	if !ok {
		return def
	}
	return int(v)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
