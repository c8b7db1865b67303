package roll

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commlink/rollbot/internal/game/character"
)

func TestStats(t *testing.T) {
	v, err := NewStats(Env{}, reqFor(newRunner()))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Slamm-0", res.Title)
	assert.False(t, res.ToChannel, "the stat block stays private")

	byTitle := map[string]string{}
	for _, f := range res.Fields {
		byTitle[f.Title] = f.Value
	}
	assert.Equal(t, "4", byTitle["Body"])
	assert.Equal(t, "5", byTitle["Charisma"])
	assert.Equal(t, "4", byTitle["Magic"])
	assert.Equal(t, "3 / 5", byTitle["Edge"])
	assert.Equal(t, "8 + 1d6", byTitle["Initiative"])
	assert.Equal(t, "9", byTitle["Soak"])
	assert.Equal(t, "6", byTitle["Social Limit"])
	assert.NotContains(t, byTitle, "Resonance", "zero attributes are omitted")
}

func TestStatsInitiativeBonuses(t *testing.T) {
	c := newRunner()
	c.InitiativeBonus = 2
	c.InitiativeDiceBonus = 2

	v, err := NewStats(Env{}, reqFor(c))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	for _, f := range res.Fields {
		if f.Title == "Initiative" {
			assert.Equal(t, "10 + 3d6", f.Value)
			return
		}
	}
	t.Fatal("no initiative field")
}

func TestStatsForGM(t *testing.T) {
	v, err := NewStats(Env{}, reqFor(character.NewGM()))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "The World", res.Title)
	assert.Equal(t, "You're the GM... What else can we say?", res.Text)
	assert.Empty(t, res.Fields)
}
