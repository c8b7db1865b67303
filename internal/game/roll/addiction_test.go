package roll

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commlink/rollbot/internal/game/character"
)

func addictionArgs(p addictionPayload) []string {
	p.V = payloadVersion
	return []string{encodePayload(p)}
}

func TestAddictionChooseDrug(t *testing.T) {
	te := newTestEnv()
	v, err := NewAddiction(te.env, reqFor(newRunner()))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "What drug did you take?", res.Text)
	require.Len(t, res.Selects, 1)
	assert.Len(t, res.Selects[0].Options, len(drugCatalog))

	p, err := decodeAddictionPayload(res.Selects[0].Options[0].Value)
	require.NoError(t, err)
	assert.Equal(t, addictionStageWeeks, p.Stage)
	assert.Equal(t, "alcohol", p.Drug)
}

func TestAddictionChooseWeeks(t *testing.T) {
	// Jazz: rating 8 means a test every 3 weeks, threshold 3.
	te := newTestEnv()
	v, err := NewAddiction(te.env, reqFor(newRunner(), addictionArgs(addictionPayload{
		Stage: addictionStageWeeks, Drug: "jazz",
	})...))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, res.Text, "every 3 weeks")
	require.Len(t, res.Selects, 1)
	opts := res.Selects[0].Options
	require.Len(t, opts, 3)
	assert.Equal(t, "I just took some more", opts[0].Label)
	assert.Equal(t, "1 week", opts[1].Label)
	assert.Equal(t, "2 weeks", opts[2].Label)
}

func TestAddictionChooseWeeksLowThreshold(t *testing.T) {
	// Long Haul: a test every 9 weeks but threshold 1, so one clean week is
	// already enough.
	te := newTestEnv()
	v, err := NewAddiction(te.env, reqFor(newRunner(), addictionArgs(addictionPayload{
		Stage: addictionStageWeeks, Drug: "long-haul",
	})...))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	opts := res.Selects[0].Options
	require.Len(t, opts, 2)
	assert.Equal(t, "I just took some more", opts[0].Label)
	assert.Equal(t, "1 or more weeks", opts[1].Label)
}

func TestAddictionNoTestNeeded(t *testing.T) {
	te := newTestEnv()
	webhookFixture(te)

	v, err := NewAddiction(te.env, reqFor(newRunner(), addictionArgs(addictionPayload{
		Stage: addictionStageTest, Drug: "jazz", Weeks: 3,
	})...))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	assert.True(t, res.DeleteOriginal)
	require.Len(t, te.poster.bodies, 1)
	published := te.poster.bodies[0].(Result)
	assert.Equal(t, ColorGood, published.Color)
	assert.Equal(t, "Slamm-0 avoided addiction!", published.Title)
	assert.Contains(t, published.Text, "Jazz")
}

func TestAddictionPromptOffersBothTests(t *testing.T) {
	te := newTestEnv()
	webhookFixture(te)

	v, err := NewAddiction(te.env, reqFor(newRunner(), addictionArgs(addictionPayload{
		Stage: addictionStageTest, Drug: "bliss", Weeks: 0,
	})...))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)
	assert.True(t, res.DeleteOriginal)

	published := te.poster.bodies[0].(Result)
	assert.Equal(t, "Roll your addiction tests.", published.Text)
	require.Len(t, published.Actions, 2)
	assert.Equal(t, "Psychological", published.Actions[0].Label)
	assert.Equal(t, "Physiological", published.Actions[1].Label)
}

func TestAddictionPsychologicalRoll(t *testing.T) {
	// Willpower 4 + Logic 3 = 7 dice.
	te := newTestEnv(5, 5, 4, 3, 2, 2, 1)
	webhookFixture(te)

	v, err := NewAddiction(te.env, reqFor(newRunner(), addictionArgs(addictionPayload{
		Stage: addictionStageRoll, Drug: "cram", Weeks: 1, Kind: "psy",
	})...))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	// Cram needs only the one test; the prompt is retired.
	assert.True(t, res.DeleteOriginal)

	published := te.poster.bodies[0].(Result)
	assert.Contains(t, published.Title,
		`"Cram addiction test versus threshold 2 (psychological)"`)
}

func TestAddictionBothKindsChain(t *testing.T) {
	// First of the two tests for a type-both drug re-prompts for the other.
	te := newTestEnv(6, 5, 4, 3, 2, 2, 1, 1)
	webhookFixture(te)

	v, err := NewAddiction(te.env, reqFor(newRunner(), addictionArgs(addictionPayload{
		Stage: addictionStageRoll, Drug: "bliss", Weeks: 0, Kind: "phys",
	})...))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	assert.False(t, res.DeleteOriginal)
	assert.Equal(t, "Roll the other addiction test.", res.Text)
	require.Len(t, res.Actions, 1)
	assert.Equal(t, "Psychological", res.Actions[0].Label)

	p, err := decodeAddictionPayload(res.Actions[0].Value)
	require.NoError(t, err)
	assert.True(t, p.Final, "the second test closes the flow")
	assert.Equal(t, "psy", p.Kind)
}

func TestAddictionFinalRollRetiresPrompt(t *testing.T) {
	te := newTestEnv(5, 4, 3, 2, 2, 1, 1)
	webhookFixture(te)

	v, err := NewAddiction(te.env, reqFor(newRunner(), addictionArgs(addictionPayload{
		Stage: addictionStageRoll, Drug: "bliss", Weeks: 0, Kind: "psy", Final: true,
	})...))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)
	assert.True(t, res.DeleteOriginal)
}

func TestAddictionRejectsBadPayloads(t *testing.T) {
	te := newTestEnv()
	c := newRunner()

	t.Run("unknown drug", func(t *testing.T) {
		v, err := NewAddiction(te.env, reqFor(c, addictionArgs(addictionPayload{
			Stage: addictionStageWeeks, Drug: "soykaf",
		})...))
		require.NoError(t, err)
		_, err = v.Execute(context.Background())
		assert.ErrorIs(t, err, ErrInvalidArguments)
	})

	t.Run("unknown kind", func(t *testing.T) {
		v, err := NewAddiction(te.env, reqFor(c, addictionArgs(addictionPayload{
			Stage: addictionStageRoll, Drug: "cram", Kind: "spiritual",
		})...))
		require.NoError(t, err)
		_, err = v.Execute(context.Background())
		assert.ErrorIs(t, err, ErrInvalidArguments)
	})
}

func TestAddictionRejectsGM(t *testing.T) {
	_, err := NewAddiction(Env{}, reqFor(character.NewGM()))
	assert.ErrorIs(t, err, ErrNoCharacter)
}
