// Package combat tracks initiative collection and combat passes for a
// campaign. State lives in the roll-state cache under combat.<campaign> and
// combatants.<campaign>; every roster mutation is an atomic read-modify-write
// because multiple players roll initiative concurrently.
package combat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/commlink/rollbot/internal/cache"
	"github.com/commlink/rollbot/internal/game/dice"
)

// Phase is the combat state of a campaign. The zero value means no combat.
type Phase string

const (
	// PhaseNone means the campaign is not in combat.
	PhaseNone Phase = ""
	// PhaseCollecting means combat has started and initiative rolls are
	// being gathered.
	PhaseCollecting Phase = "collecting"
	// PhaseInProgress means the turn order is frozen and passes are running.
	PhaseInProgress Phase = "combat"
)

// passDecrement is subtracted from every combatant's initiative when a combat
// pass completes. Combatants at or below zero sit out until the next
// collection round.
const passDecrement = 10

// Combatant is one roster entry. Initiative is nil until the combatant rolls.
type Combatant struct {
	Name       string `json:"name"`
	Initiative *int   `json:"initiative"`
}

// Roster is the campaign's ordered combatant list. Order is insertion order
// until frozen, then descending initiative with stable ties.
type Roster []Combatant

// NPC is an enemy seed from an encounter definition. Its initiative is rolled
// as Base + Dice d6 the moment combat starts.
type NPC struct {
	Name string
	Base int
	Dice int
}

var (
	// ErrNotInCombat is returned when the campaign has no active combat.
	ErrNotInCombat = errors.New("combat: not in combat")
	// ErrCombatStarted is returned when a fresh initiative roll arrives after
	// the turn order has been frozen.
	ErrCombatStarted = errors.New("combat: combat already in progress")
	// ErrCombatActive is returned when starting combat over an existing one.
	ErrCombatActive = errors.New("combat: combat already underway")
	// ErrAlreadyRolled is returned when a combatant rolls initiative twice
	// in the same collection round.
	ErrAlreadyRolled = errors.New("combat: initiative already rolled")
)

// Coordinator drives the per-campaign combat state machine:
//
//	NoCombat -> Collecting -> InProgress -> ... -> NoCombat
type Coordinator struct {
	store  cache.Store
	logger *zap.Logger
}

// NewCoordinator creates a Coordinator over the given roll-state store.
//
// Precondition: store and logger must be non-nil.
func NewCoordinator(store cache.Store, logger *zap.Logger) *Coordinator {
	return &Coordinator{store: store, logger: logger}
}

// Phase returns the campaign's current combat phase.
//
// Postcondition: PhaseNone when no combat flag is set.
func (c *Coordinator) Phase(ctx context.Context, campaignID string) (Phase, error) {
	raw, err := c.store.Get(ctx, cache.CombatStateKey(campaignID))
	if errors.Is(err, cache.ErrNotFound) {
		return PhaseNone, nil
	}
	if err != nil {
		return PhaseNone, err
	}
	return Phase(raw), nil
}

// Start begins combat for a campaign: the roster is seeded with every player
// (initiative unset) plus the given NPCs with pre-rolled initiative, and the
// phase moves to Collecting.
//
// Precondition: src must be non-nil when npcs is non-empty.
// Postcondition: Returns ErrCombatActive if combat is already running,
// otherwise the seeded roster.
func (c *Coordinator) Start(ctx context.Context, campaignID string, players []string, npcs []NPC, src dice.Source) (Roster, error) {
	phase, err := c.Phase(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if phase != PhaseNone {
		return nil, ErrCombatActive
	}

	roster := make(Roster, 0, len(players)+len(npcs))
	for _, name := range players {
		roster = append(roster, Combatant{Name: name})
	}
	for _, npc := range npcs {
		total := npc.Base + dice.Sum(dice.RollSum(src, npc.Dice, dice.Sides))
		init := total
		roster = append(roster, Combatant{Name: npc.Name, Initiative: &init})
	}

	raw, err := json.Marshal(roster)
	if err != nil {
		return nil, fmt.Errorf("encoding roster: %w", err)
	}
	if err := c.store.Set(ctx, cache.CombatantsKey(campaignID), raw, 0); err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, cache.CombatStateKey(campaignID), []byte(PhaseCollecting), 0); err != nil {
		return nil, err
	}

	c.logger.Info("combat started",
		zap.String("campaign", campaignID),
		zap.Int("players", len(players)),
		zap.Int("npcs", len(npcs)),
	)
	return roster, nil
}

// RecordInitiative writes a combatant's rolled initiative into the roster.
//
// Postcondition: ErrNotInCombat when no combat (or the combatant is not on
// the roster), ErrCombatStarted when the order is already frozen,
// ErrAlreadyRolled when the combatant has a value this round.
func (c *Coordinator) RecordInitiative(ctx context.Context, campaignID, name string, value int) error {
	phase, err := c.Phase(ctx, campaignID)
	if err != nil {
		return err
	}
	switch phase {
	case PhaseNone:
		return ErrNotInCombat
	case PhaseInProgress:
		return ErrCombatStarted
	}

	return c.store.Update(ctx, cache.CombatantsKey(campaignID), func(old []byte) ([]byte, error) {
		if old == nil {
			return nil, ErrNotInCombat
		}
		var roster Roster
		if err := json.Unmarshal(old, &roster); err != nil {
			return nil, fmt.Errorf("decoding roster: %w", err)
		}
		for i := range roster {
			if roster[i].Name != name {
				continue
			}
			if roster[i].Initiative != nil {
				return nil, ErrAlreadyRolled
			}
			v := value
			roster[i].Initiative = &v
			return json.Marshal(roster)
		}
		return nil, ErrNotInCombat
	})
}

// NextPass advances the state machine.
//
// From Collecting it freezes the order (descending initiative, stable ties)
// and moves to InProgress. From InProgress it subtracts the pass decrement
// from every combatant, benches anyone at or below zero, and either stays in
// InProgress or, when nobody can act, clears all initiatives and returns to
// Collecting for fresh rolls.
//
// Postcondition: Returns the phase after the transition and the roster as it
// should be displayed.
func (c *Coordinator) NextPass(ctx context.Context, campaignID string) (Phase, Roster, error) {
	phase, err := c.Phase(ctx, campaignID)
	if err != nil {
		return PhaseNone, nil, err
	}
	if phase == PhaseNone {
		return PhaseNone, nil, ErrNotInCombat
	}

	var out Roster
	nextPhase := phase
	err = c.store.Update(ctx, cache.CombatantsKey(campaignID), func(old []byte) ([]byte, error) {
		if old == nil {
			return nil, ErrNotInCombat
		}
		var roster Roster
		if err := json.Unmarshal(old, &roster); err != nil {
			return nil, fmt.Errorf("decoding roster: %w", err)
		}

		switch phase {
		case PhaseCollecting:
			sortRoster(roster)
			nextPhase = PhaseInProgress
		case PhaseInProgress:
			active := 0
			for i := range roster {
				if roster[i].Initiative == nil {
					continue
				}
				v := *roster[i].Initiative - passDecrement
				if v <= 0 {
					// Benched until the next collection round.
					roster[i].Initiative = nil
					continue
				}
				roster[i].Initiative = &v
				active++
			}
			if active == 0 {
				nextPhase = PhaseCollecting
			} else {
				sortRoster(roster)
			}
		}

		out = roster
		return json.Marshal(roster)
	})
	if err != nil {
		return PhaseNone, nil, err
	}

	if nextPhase != phase {
		if err := c.store.Set(ctx, cache.CombatStateKey(campaignID), []byte(nextPhase), 0); err != nil {
			return PhaseNone, nil, err
		}
		c.logger.Info("combat phase changed",
			zap.String("campaign", campaignID),
			zap.String("from", string(phase)),
			zap.String("to", string(nextPhase)),
		)
	}
	return nextPhase, out, nil
}

// End clears all combat state for the campaign unconditionally.
//
// Postcondition: Phase returns PhaseNone afterwards.
func (c *Coordinator) End(ctx context.Context, campaignID string) error {
	if err := c.store.Delete(ctx, cache.CombatStateKey(campaignID)); err != nil {
		return err
	}
	if err := c.store.Delete(ctx, cache.CombatantsKey(campaignID)); err != nil {
		return err
	}
	c.logger.Info("combat ended", zap.String("campaign", campaignID))
	return nil
}

// Status returns the phase and roster without mutating anything.
//
// Postcondition: ErrNotInCombat when no combat is active.
func (c *Coordinator) Status(ctx context.Context, campaignID string) (Phase, Roster, error) {
	phase, err := c.Phase(ctx, campaignID)
	if err != nil {
		return PhaseNone, nil, err
	}
	if phase == PhaseNone {
		return PhaseNone, nil, ErrNotInCombat
	}
	raw, err := c.store.Get(ctx, cache.CombatantsKey(campaignID))
	if errors.Is(err, cache.ErrNotFound) {
		return PhaseNone, nil, ErrNotInCombat
	}
	if err != nil {
		return PhaseNone, nil, err
	}
	var roster Roster
	if err := json.Unmarshal(raw, &roster); err != nil {
		return PhaseNone, nil, fmt.Errorf("decoding roster: %w", err)
	}
	return phase, roster, nil
}

// sortRoster orders combatants by descending initiative. Unrolled (nil)
// entries sort last. Ties keep prior relative order.
func sortRoster(roster Roster) {
	sort.SliceStable(roster, func(i, j int) bool {
		a, b := roster[i].Initiative, roster[j].Initiative
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}
