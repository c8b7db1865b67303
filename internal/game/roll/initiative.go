package roll

import (
	"context"
	"fmt"

	"github.com/commlink/rollbot/internal/game/combat"
	"github.com/commlink/rollbot/internal/game/dice"
)

// blitzDice is the initiative dice count granted by the Blitz edge action.
const blitzDice = 5

// Initiative rolls a character into the combat roster: base initiative
// (reaction + intuition + bonus) plus the character's initiative dice, summed
// and recorded with the combat coordinator. Only valid while initiative is
// being collected.
type Initiative struct {
	env Env
	req Request
	// blitz swaps the initiative dice for five and spends an edge.
	blitz bool

	done   bool
	result Result
}

// NewInitiative builds a normal initiative roll.
func NewInitiative(env Env, req Request) (*Initiative, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	return &Initiative{env: env, req: req}, nil
}

// NewBlitz builds a Blitz initiative roll: five dice for one point of edge.
func NewBlitz(env Env, req Request) (*Initiative, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	return &Initiative{env: env, req: req, blitz: true}, nil
}

// Execute rolls and records initiative. On rejection nothing is recorded and
// no edge is spent; an out-of-edge Blitz leaves the character free to roll
// initiative normally.
func (v *Initiative) Execute(ctx context.Context) (Result, error) {
	if v.done {
		return v.result, nil
	}

	phase, err := v.env.Combat.Phase(ctx, v.req.CampaignID)
	if err != nil {
		return Result{}, err
	}
	switch phase {
	case combat.PhaseNone:
		return Result{}, combat.ErrNotInCombat
	case combat.PhaseInProgress:
		return Result{}, combat.ErrCombatStarted
	}

	if v.blitz && !v.req.Character.HasEdge() {
		return Result{}, withCard(ErrOutOfEdge, "No More Edge",
			"Tough luck chummer, you're out of edge. You'll have to roll initiative normally.")
	}

	c := v.req.Character
	base := c.Reaction + c.Intuition + c.InitiativeBonus
	n := 1 + c.InitiativeDiceBonus
	if v.blitz {
		n = blitzDice
	}

	rolls := v.env.Roller.Sum(n, dice.Sides)
	total := base + dice.Sum(rolls)

	if err := v.env.Combat.RecordInitiative(ctx, v.req.CampaignID, c.Handle, total); err != nil {
		return Result{}, err
	}

	res := Result{
		Color:        ColorInfo,
		Title:        "Initiative",
		Text:         fmt.Sprintf("Your initiative is %d.", total),
		FooterPrefix: fmt.Sprintf("%d+%dd6:", base, n),
		Dice:         neutralDice(rolls),
	}
	if v.blitz {
		res.Footer = fmt.Sprintf("%d edge left", c.EdgeCurrent-1)
		res.SpendEdge = true
		// Blitz is an edge action; it forfeits the banked roll like any other.
		if err := deleteLastRoll(ctx, v.env.Cache, c.Handle); err != nil {
			return Result{}, err
		}
	}

	v.result = res
	v.done = true
	return v.result, nil
}
