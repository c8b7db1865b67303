package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/commlink/rollbot/internal/game/combat"
)

func writeEncounter(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".lua"), []byte(body), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeEncounter(t, dir, "warehouse", `
npcs = {
    { name = "Ganger", base = 7, dice = 1 },
    { name = "Ganger Lieutenant", base = 9, dice = 2 },
}
`)

	l := NewLoader(dir, zap.NewNop())
	npcs, err := l.Load("warehouse")
	require.NoError(t, err)
	assert.Equal(t, []combat.NPC{
		{Name: "Ganger", Base: 7, Dice: 1},
		{Name: "Ganger Lieutenant", Base: 9, Dice: 2},
	}, npcs)
}

func TestLoadComputedValues(t *testing.T) {
	// Scripts can build the table programmatically.
	dir := t.TempDir()
	writeEncounter(t, dir, "swarm", `
npcs = {}
for i = 1, 3 do
    table.insert(npcs, { name = "Drone " .. i, base = 5 + i, dice = 1 })
end
`)

	l := NewLoader(dir, zap.NewNop())
	npcs, err := l.Load("swarm")
	require.NoError(t, err)
	require.Len(t, npcs, 3)
	assert.Equal(t, "Drone 3", npcs[2].Name)
	assert.Equal(t, 8, npcs[2].Base)
}

func TestLoadMissingFile(t *testing.T) {
	l := NewLoader(t.TempDir(), zap.NewNop())
	_, err := l.Load("nowhere")
	assert.ErrorContains(t, err, "not found")
}

func TestLoadRejectsPathEscape(t *testing.T) {
	l := NewLoader(t.TempDir(), zap.NewNop())
	for _, name := range []string{"", "../etc/passwd", `..\evil`, ".hidden"} {
		_, err := l.Load(name)
		assert.ErrorContains(t, err, "invalid encounter name", "name %q", name)
	}
}

func TestLoadRejectsBadScripts(t *testing.T) {
	dir := t.TempDir()
	writeEncounter(t, dir, "syntax", `npcs = {`)
	writeEncounter(t, dir, "notable", `npcs = "gangers"`)
	writeEncounter(t, dir, "noname", `npcs = { { base = 7, dice = 1 } }`)
	writeEncounter(t, dir, "negative", `npcs = { { name = "Ganger", base = 7, dice = -1 } }`)
	writeEncounter(t, dir, "empty", `npcs = {}`)

	l := NewLoader(dir, zap.NewNop())
	for _, name := range []string{"syntax", "notable", "noname", "negative", "empty"} {
		_, err := l.Load(name)
		assert.Error(t, err, name)
	}
}

func TestSandboxBlocksOS(t *testing.T) {
	dir := t.TempDir()
	// os and io are not opened; touching them must fail the load.
	writeEncounter(t, dir, "escape", `
os.execute("true")
npcs = { { name = "Ganger", base = 7, dice = 1 } }
`)

	l := NewLoader(dir, zap.NewNop())
	_, err := l.Load("escape")
	assert.Error(t, err)
}
