package roll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/commlink/rollbot/internal/cache"
	"github.com/commlink/rollbot/internal/game/dice"
)

// LastRoll is the cached snapshot of a character's most recent standard pool
// roll. Second Chance consumes it; Push and Second Chance themselves never
// write one, so edge effects cannot chain.
type LastRoll struct {
	Dice           int    `json:"dice"`
	Fails          int    `json:"fails"`
	Successes      int    `json:"successes"`
	Limit          *int   `json:"limit"`
	Text           string `json:"text"`
	Rolls          []int  `json:"rolls"`
	Glitch         bool   `json:"glitch"`
	CriticalGlitch bool   `json:"criticalGlitch"`
}

// snapshotRoll builds a LastRoll from a classified outcome.
func snapshotRoll(out dice.Outcome, text string) LastRoll {
	return LastRoll{
		Dice:           out.Dice,
		Fails:          out.Fails,
		Successes:      out.Successes,
		Limit:          out.Limit,
		Text:           text,
		Rolls:          out.Rolls,
		Glitch:         out.Glitch,
		CriticalGlitch: out.CriticalGlitch,
	}
}

// saveLastRoll stores the snapshot under the character's slugged handle.
// The entry never expires; only a later roll or an edge effect replaces it.
func saveLastRoll(ctx context.Context, store cache.Store, handle string, lr LastRoll) error {
	raw, err := json.Marshal(lr)
	if err != nil {
		return fmt.Errorf("encoding last roll: %w", err)
	}
	return store.Set(ctx, cache.LastRollKey(cache.Slug(handle)), raw, 0)
}

// loadLastRoll fetches the character's cached roll.
//
// Postcondition: ErrNoLastRoll when nothing is cached.
func loadLastRoll(ctx context.Context, store cache.Store, handle string) (LastRoll, error) {
	raw, err := store.Get(ctx, cache.LastRollKey(cache.Slug(handle)))
	if errors.Is(err, cache.ErrNotFound) {
		return LastRoll{}, ErrNoLastRoll
	}
	if err != nil {
		return LastRoll{}, err
	}
	var lr LastRoll
	if err := json.Unmarshal(raw, &lr); err != nil {
		return LastRoll{}, fmt.Errorf("decoding last roll: %w", err)
	}
	return lr, nil
}

// deleteLastRoll drops the cached roll so an edge effect cannot be repeated.
func deleteLastRoll(ctx context.Context, store cache.Store, handle string) error {
	return store.Delete(ctx, cache.LastRollKey(cache.Slug(handle)))
}
