package roll

import (
	"context"
	"fmt"
	"strings"
)

// Cast is the staged spellcasting flow. Each stage is an ephemeral prompt
// whose action values carry the accumulated choices; the final stage rolls
// the spellcasting test, publishes it to the campaign webhook so the whole
// channel sees it, and deletes the ephemeral prompt.
type Cast struct {
	env     Env
	req     Request
	payload *castPayload
}

// NewCast builds the flow from either a bare "/roll cast" (stage zero) or a
// payload echoed back from a prompt.
func NewCast(env Env, req Request) (*Cast, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	c := &Cast{env: env, req: req}
	if len(req.Args) > 0 && strings.HasPrefix(req.Args[0], "{") {
		p, err := decodeCastPayload(strings.Join(req.Args, " "))
		if err != nil {
			return nil, err
		}
		c.payload = &p
	}
	return c, nil
}

// Execute advances the flow one stage.
func (c *Cast) Execute(ctx context.Context) (Result, error) {
	if c.req.Character.Magic == 0 {
		return Result{}, ErrNoMagic
	}
	if c.payload == nil {
		return c.chooseSpell(), nil
	}
	switch c.payload.Stage {
	case castStageForce:
		return c.chooseForce()
	case castStageMode:
		return c.chooseMode()
	case castStageRoll:
		return c.rollSpellcasting(ctx)
	default:
		return Result{}, fmt.Errorf("%w: unknown cast stage %q", ErrInvalidArguments, c.payload.Stage)
	}
}

func (c *Cast) chooseSpell() Result {
	opts := make([]Option, 0, len(c.req.Character.Spells))
	for _, s := range c.req.Character.Spells {
		opts = append(opts, Option{
			Label: s.Name,
			Value: encodePayload(castPayload{
				V:       payloadVersion,
				Stage:   castStageForce,
				SpellID: s.ID,
			}),
		})
	}
	return Result{
		Text:       "What spell would you like to cast?",
		CallbackID: c.req.Character.Handle,
		Selects: []SelectAction{{
			Name:    "cast",
			Label:   "Pick a spell...",
			Options: opts,
		}},
	}
}

func (c *Cast) chooseForce() (Result, error) {
	spell, ok := c.req.Character.SpellByID(c.payload.SpellID)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown spell %q", ErrInvalidArguments, c.payload.SpellID)
	}
	max := c.req.Character.Magic * 2
	opts := make([]Option, 0, max)
	for f := 1; f <= max; f++ {
		opts = append(opts, Option{
			Label: fmt.Sprintf("Force %d", f),
			Value: encodePayload(castPayload{
				V:       payloadVersion,
				Stage:   castStageMode,
				SpellID: spell.ID,
				Force:   f,
			}),
		})
	}
	return Result{
		Text:       fmt.Sprintf("What force would you like to cast %s at?", spell.Name),
		CallbackID: c.req.Character.Handle,
		Selects: []SelectAction{{
			Name:    "cast",
			Label:   "Pick a force...",
			Options: opts,
		}},
	}, nil
}

func (c *Cast) chooseMode() (Result, error) {
	if _, ok := c.req.Character.SpellByID(c.payload.SpellID); !ok {
		return Result{}, fmt.Errorf("%w: unknown spell %q", ErrInvalidArguments, c.payload.SpellID)
	}
	mode := func(m string) string {
		return encodePayload(castPayload{
			V:       payloadVersion,
			Stage:   castStageRoll,
			SpellID: c.payload.SpellID,
			Force:   c.payload.Force,
			Mode:    m,
		})
	}
	return Result{
		Text:       "Roll your Spellcasting test.",
		CallbackID: c.req.Character.Handle,
		Actions: []Action{
			{Name: "cast", Label: "Normal", Value: mode(castModeNormal)},
			{Name: "cast", Label: "Reckless", Value: mode(castModeReckless)},
			{Name: "cast", Label: "Push the Limit", Value: mode(castModePush)},
		},
	}, nil
}

// rollSpellcasting makes the actual test, reusing the pool and edge variants
// so casting behaves exactly like rolling those dice by hand.
func (c *Cast) rollSpellcasting(ctx context.Context) (Result, error) {
	char := c.req.Character
	spell, ok := char.SpellByID(c.payload.SpellID)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown spell %q", ErrInvalidArguments, c.payload.SpellID)
	}
	force := c.payload.Force
	if force < 1 || force > char.Magic*2 {
		return Result{}, fmt.Errorf("%w: force %d out of range", ErrInvalidArguments, force)
	}

	pool := char.Spellcasting + char.Magic
	reckless := c.payload.Mode == castModeReckless
	text := fmt.Sprintf("Casting %s at force %d", spell.Name, force)
	if reckless {
		text = fmt.Sprintf("Casting %s recklessly at force %d", spell.Name, force)
	}

	var inner Variant
	switch c.payload.Mode {
	case castModePush:
		inner = &Push{env: c.env, req: c.req, dice: pool, limit: &force, text: text}
	case castModeNormal, castModeReckless:
		inner = &Number{env: c.env, req: c.req, dice: pool, limit: &force, text: text}
	default:
		return Result{}, fmt.Errorf("%w: unknown cast mode %q", ErrInvalidArguments, c.payload.Mode)
	}

	res, err := Run(ctx, c.env, inner)
	if err != nil {
		return Result{}, err
	}

	// Hits for the drain follow-up: raw successes, reported by the title.
	// The limit has already shaped the display; drain cares about the hits
	// the caster generated.
	hits := countSuccesses(res.Dice)
	drainArgs := fmt.Sprintf("drain %s %d %d", spell.ID, force, hits)
	if reckless {
		drainArgs += " reckless"
	}
	res.Actions = append(res.Actions, Action{
		Name:  "drain",
		Label: "Resist Drain",
		Value: drainArgs,
	})

	// An ephemeral prompt cannot become a public message, so the result goes
	// out through the campaign webhook and the prompt is deleted.
	if err := c.publish(ctx, res); err != nil {
		return Result{}, err
	}
	return Result{ReplaceOriginal: true, DeleteOriginal: true, SpendEdge: res.SpendEdge}, nil
}

func (c *Cast) publish(ctx context.Context, res Result) error {
	camp, err := c.env.Campaigns.GetCampaign(ctx, c.req.CampaignID)
	if err != nil {
		return err
	}
	return c.env.Webhook.Post(ctx, camp.WebhookURL, res)
}

func countSuccesses(rolled []Die) int {
	n := 0
	for _, d := range rolled {
		if d.Kind == DieSuccess {
			n++
		}
	}
	return n
}
