// Package scripting loads NPC encounter definitions written in Lua. An
// encounter file populates a global `npcs` table; each entry seeds one enemy
// combatant with a base initiative and a d6 count rolled when combat starts.
//
// Example encounter file:
//
//	npcs = {
//	    { name = "Ganger", base = 7, dice = 1 },
//	    { name = "Ganger Lieutenant", base = 9, dice = 2 },
//	}
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/commlink/rollbot/internal/game/combat"
)

// Loader resolves encounter names to NPC seed lists. Each Load runs the file
// in a fresh sandboxed VM, so encounter scripts cannot leak state into each
// other or into the process.
type Loader struct {
	dir    string
	logger *zap.Logger
}

// NewLoader creates a Loader over the given script directory.
//
// Precondition: logger must be non-nil.
func NewLoader(dir string, logger *zap.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

// Load reads and executes <dir>/<name>.lua and returns its NPC seeds.
//
// Precondition: name must not contain path separators.
// Postcondition: every returned NPC has a non-empty name and dice >= 0.
func (l *Loader) Load(name string) ([]combat.NPC, error) {
	if strings.ContainsAny(name, `/\`) || name == "" || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("scripting: invalid encounter name %q", name)
	}
	path := filepath.Join(l.dir, name+".lua")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("scripting: encounter %q not found: %w", name, err)
	}

	L := newSandboxedState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return nil, fmt.Errorf("scripting: loading encounter %q: %w", name, err)
	}

	npcs, err := decodeNPCs(L.GetGlobal("npcs"))
	if err != nil {
		return nil, fmt.Errorf("scripting: encounter %q: %w", name, err)
	}

	l.logger.Debug("encounter loaded",
		zap.String("encounter", name),
		zap.Int("npcs", len(npcs)),
	)
	return npcs, nil
}

// newSandboxedState opens only the libraries an encounter definition needs.
// No io, os, or debug access from content files.
func newSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
	} {
		L.Push(L.NewFunction(open.fn))
		L.Push(lua.LString(open.name))
		L.Call(1, 0)
	}
	return L
}

func decodeNPCs(v lua.LValue) ([]combat.NPC, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("global `npcs` must be a table, got %s", v.Type())
	}

	var npcs []combat.NPC
	var decodeErr error
	tbl.ForEach(func(_, entry lua.LValue) {
		if decodeErr != nil {
			return
		}
		et, ok := entry.(*lua.LTable)
		if !ok {
			decodeErr = fmt.Errorf("npcs entry must be a table, got %s", entry.Type())
			return
		}
		npc := combat.NPC{
			Name: lua.LVAsString(et.RawGetString("name")),
			Base: int(lua.LVAsNumber(et.RawGetString("base"))),
			Dice: int(lua.LVAsNumber(et.RawGetString("dice"))),
		}
		if npc.Name == "" {
			decodeErr = fmt.Errorf("npcs entry missing name")
			return
		}
		if npc.Dice < 0 {
			decodeErr = fmt.Errorf("npc %q has negative dice", npc.Name)
			return
		}
		npcs = append(npcs, npc)
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	if len(npcs) == 0 {
		return nil, fmt.Errorf("no npcs defined")
	}
	return npcs, nil
}
