package roll

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushRoll(t *testing.T) {
	// Two dice: the six explodes into a five.
	te := newTestEnv(6, 3, 5)
	c := newRunner()

	// Bank a roll first to prove Push burns it.
	require.NoError(t, saveLastRoll(context.Background(), te.store, c.Handle,
		LastRoll{Dice: 3, Successes: 1, Rolls: []int{5, 3, 2}}))

	v, err := NewPush(te.env, reqFor(c, "2"))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Slamm-0 rolled 2 successes", res.Title)
	assert.Equal(t, "with 1 exploded sixes, 2 edge left", res.Footer)
	assert.True(t, res.SpendEdge)
	assert.True(t, res.ToChannel)
	require.Len(t, res.Dice, 3)

	// The banked roll is gone; edge actions cannot chain.
	_, err = loadLastRoll(context.Background(), te.store, c.Handle)
	assert.ErrorIs(t, err, ErrNoLastRoll)
}

func TestPushIgnoresLimit(t *testing.T) {
	// The six explodes into a fifth die.
	te := newTestEnv(6, 5, 5, 4, 5)
	v, err := NewPush(te.env, reqFor(newRunner(), "4", "2"))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	// Raw successes are reported; the limit renders struck through.
	assert.Contains(t, res.Title, "rolled 4 successes, ignored limit")
	assert.Equal(t, "4 ~[2]~", res.Text)
}

func TestPushOutOfEdge(t *testing.T) {
	te := newTestEnv()
	c := newRunner()
	c.EdgeCurrent = 0

	v, err := NewPush(te.env, reqFor(c, "4"))
	require.NoError(t, err)

	_, err = v.Execute(context.Background())
	require.ErrorIs(t, err, ErrOutOfEdge)

	card, ok := ErrorCard(err)
	require.True(t, ok)
	assert.Equal(t, "Out of Edge", card.Title)
	assert.Equal(t, "You can't Push the Limit, you're out of Edge!", card.Text)
	assert.False(t, card.SpendEdge, "a rejected push spends nothing")
}

func TestPushCriticalGlitchStillSpendsEdge(t *testing.T) {
	te := newTestEnv(1, 1)
	v, err := NewPush(te.env, reqFor(newRunner(), "2"))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Critical Glitch!", res.Title)
	assert.True(t, res.SpendEdge, "the edge was committed before the dice fell")
}

func TestSecondChance(t *testing.T) {
	// Banked: 8 dice, 3 successes. Second rerolls the other 5.
	te := newTestEnv(6, 4, 3, 2, 2)
	c := newRunner()
	require.NoError(t, saveLastRoll(context.Background(), te.store, c.Handle, LastRoll{
		Dice:      8,
		Successes: 3,
		Fails:     1,
		Rolls:     []int{6, 5, 5, 4, 3, 2, 2, 1},
		Text:      "sneaking",
	}))

	v, err := NewSecond(te.env, reqFor(c))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	// Three kept successes plus the rerolled six.
	assert.Equal(t, `Second Chance: Slamm-0 rolled 4 successes for "sneaking"`, res.Title)
	assert.Equal(t, "8", res.Text)
	assert.Equal(t, "2 edge left", res.Footer)
	assert.True(t, res.SpendEdge)
	require.Len(t, res.Dice, 8)

	// Burned after use.
	_, err = loadLastRoll(context.Background(), te.store, c.Handle)
	assert.ErrorIs(t, err, ErrNoLastRoll)
}

func TestSecondChanceNeverLosesSuccesses(t *testing.T) {
	// All rerolls miss; the kept successes still stand.
	te := newTestEnv(2, 2, 3)
	c := newRunner()
	require.NoError(t, saveLastRoll(context.Background(), te.store, c.Handle, LastRoll{
		Dice:      5,
		Successes: 2,
		Rolls:     []int{6, 5, 4, 3, 2},
	}))

	v, err := NewSecond(te.env, reqFor(c))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Second Chance: Slamm-0 rolled 2 successes", res.Title)
}

func TestSecondChanceStickyGlitch(t *testing.T) {
	// The prior roll glitched; clean rerolls do not clear it.
	te := newTestEnv(5, 4, 2)
	c := newRunner()
	require.NoError(t, saveLastRoll(context.Background(), te.store, c.Handle, LastRoll{
		Dice:      4,
		Successes: 1,
		Fails:     2,
		Rolls:     []int{5, 1, 1, 3},
		Glitch:    true,
	}))

	v, err := NewSecond(te.env, reqFor(c))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)
	assert.Contains(t, res.Title, ", still glitched")
	assert.Equal(t, ColorWarning, res.Color)
}

func TestSecondChanceRejections(t *testing.T) {
	t.Run("no edge", func(t *testing.T) {
		te := newTestEnv()
		c := newRunner()
		c.EdgeCurrent = 0
		v, err := NewSecond(te.env, reqFor(c))
		require.NoError(t, err)
		_, err = v.Execute(context.Background())
		assert.ErrorIs(t, err, ErrOutOfEdge)
	})

	t.Run("no banked roll", func(t *testing.T) {
		te := newTestEnv()
		v, err := NewSecond(te.env, reqFor(newRunner()))
		require.NoError(t, err)
		_, err = v.Execute(context.Background())
		assert.ErrorIs(t, err, ErrNoLastRoll)
	})

	t.Run("critical glitch is terminal", func(t *testing.T) {
		te := newTestEnv()
		c := newRunner()
		require.NoError(t, saveLastRoll(context.Background(), te.store, c.Handle, LastRoll{
			Dice: 4, Fails: 3, Rolls: []int{1, 1, 1, 2}, Glitch: true, CriticalGlitch: true,
		}))
		v, err := NewSecond(te.env, reqFor(c))
		require.NoError(t, err)
		_, err = v.Execute(context.Background())
		assert.ErrorIs(t, err, ErrCriticalGlitch)

		// The bank survives a rejection.
		_, err2 := loadLastRoll(context.Background(), te.store, c.Handle)
		assert.False(t, errors.Is(err2, ErrNoLastRoll))
	})
}

func TestSecondChanceRejectsCorruptSnapshot(t *testing.T) {
	// A snapshot claiming more successes than dice must surface as a fault,
	// not panic on a negative reroll count.
	te := newTestEnv()
	c := newRunner()
	require.NoError(t, saveLastRoll(context.Background(), te.store, c.Handle, LastRoll{
		Dice:      4,
		Successes: 9,
		Rolls:     []int{6, 5, 5, 6},
	}))

	v, err := NewSecond(te.env, reqFor(c))
	require.NoError(t, err)

	_, err = v.Execute(context.Background())
	require.Error(t, err)
	_, renderable := ErrorCard(err)
	assert.False(t, renderable, "corrupt state is a server fault, not a user card")
	assert.NotErrorIs(t, err, ErrOutOfEdge)
}
