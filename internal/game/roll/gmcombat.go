package roll

import (
	"context"
	"fmt"
	"strings"

	"github.com/commlink/rollbot/internal/game/combat"
)

// EncounterLoader resolves a named encounter definition into NPC seeds.
type EncounterLoader interface {
	Load(name string) ([]combat.NPC, error)
}

// StartCombat is the GM command opening a combat round: the roster is seeded
// with every registered character plus the NPCs from an optional encounter
// definition, and initiative collection begins.
type StartCombat struct {
	env        Env
	req        Request
	encounters EncounterLoader
	encounter  string
}

// NewStartCombat parses "start [encounter]".
//
// Postcondition: ErrGMOnly when the requester is not the GM.
func NewStartCombat(env Env, req Request, encounters EncounterLoader) (*StartCombat, error) {
	if !req.Character.IsGM() {
		return nil, ErrGMOnly
	}
	s := &StartCombat{env: env, req: req, encounters: encounters}
	if len(req.Args) > 0 {
		s.encounter = strings.Join(req.Args, " ")
	}
	return s, nil
}

// Execute seeds the roster and announces the collection round.
func (s *StartCombat) Execute(ctx context.Context) (Result, error) {
	players, err := s.env.Campaigns.ListHandles(ctx, s.req.CampaignID)
	if err != nil {
		return Result{}, err
	}

	var npcs []combat.NPC
	if s.encounter != "" {
		if s.encounters == nil {
			return Result{}, fmt.Errorf("%w: no encounter definitions configured", ErrInvalidArguments)
		}
		npcs, err = s.encounters.Load(s.encounter)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
	}

	roster, err := s.env.Combat.Start(ctx, s.req.CampaignID, players, npcs, s.env.Roller.Source())
	if err != nil {
		return Result{}, err
	}

	return Result{
		Color:     ColorInfo,
		Title:     "Combat started",
		Text:      "Waiting for everyone to roll initiative.",
		Fields:    rosterFields(roster),
		ToChannel: true,
	}, nil
}

// NextPass is the GM command advancing the combat state machine: it freezes
// the order after collection, or burns ten initiative off everyone and starts
// the next pass.
type NextPass struct {
	env Env
	req Request
}

// NewNextPass builds the pass-advance command.
func NewNextPass(env Env, req Request) (*NextPass, error) {
	if !req.Character.IsGM() {
		return nil, ErrGMOnly
	}
	return &NextPass{env: env, req: req}, nil
}

// Execute advances the pass and shows the resulting order.
func (n *NextPass) Execute(ctx context.Context) (Result, error) {
	phase, roster, err := n.env.Combat.NextPass(ctx, n.req.CampaignID)
	if err != nil {
		return Result{}, err
	}
	text := "Actively in combat."
	if phase == combat.PhaseCollecting {
		// Everyone ran out of initiative; a fresh collection round begins.
		text = "Pass complete. Everyone rolls initiative again."
	}
	return Result{
		Color:     ColorInfo,
		Title:     "Initiative",
		Text:      text,
		Fields:    rosterFields(roster),
		ToChannel: true,
	}, nil
}

// EndCombat is the GM command clearing all combat state.
type EndCombat struct {
	env Env
	req Request
}

// NewEndCombat builds the combat-end command.
func NewEndCombat(env Env, req Request) (*EndCombat, error) {
	if !req.Character.IsGM() {
		return nil, ErrGMOnly
	}
	return &EndCombat{env: env, req: req}, nil
}

// Execute ends combat unconditionally.
func (e *EndCombat) Execute(ctx context.Context) (Result, error) {
	if err := e.env.Combat.End(ctx, e.req.CampaignID); err != nil {
		return Result{}, err
	}
	return Result{
		Color:     ColorInfo,
		Title:     "Combat ended",
		Text:      "Combat is over.",
		ToChannel: true,
	}, nil
}

// ShowCombat renders the current initiative status. Available to everyone,
// not just the GM.
type ShowCombat struct {
	env Env
	req Request
}

// NewShowCombat builds the status command.
func NewShowCombat(env Env, req Request) (*ShowCombat, error) {
	return &ShowCombat{env: env, req: req}, nil
}

// Execute shows the phase and roster.
func (s *ShowCombat) Execute(ctx context.Context) (Result, error) {
	phase, roster, err := s.env.Combat.Status(ctx, s.req.CampaignID)
	if err != nil {
		return Result{}, err
	}
	text := "Actively in combat."
	if phase == combat.PhaseCollecting {
		text = "Waiting for everyone to roll initiative."
	}
	return Result{
		Color:  ColorInfo,
		Title:  "Initiative",
		Text:   text,
		Fields: rosterFields(roster),
	}, nil
}

// rosterFields renders one short field per combatant. Unrolled entries show
// a dash.
func rosterFields(roster combat.Roster) []Field {
	fields := make([]Field, 0, len(roster))
	for _, c := range roster {
		value := "-"
		if c.Initiative != nil {
			value = fmt.Sprintf("%d", *c.Initiative)
		}
		fields = append(fields, Field{Title: c.Name, Value: value, Short: true})
	}
	return fields
}
