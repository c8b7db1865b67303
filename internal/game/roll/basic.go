package roll

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/commlink/rollbot/internal/game/dice"
)

// Number is the standard pool roll: N six-sided dice against an optional
// limit, with optional descriptive text. It writes the character's LastRoll
// snapshot (unless the roller is the GM) so Second Chance can pick it up.
type Number struct {
	env  Env
	req  Request
	dice int
	// limit caps the reported successes in the title only. Raw successes
	// are never clamped.
	limit *int
	text  string

	done   bool
	result Result
}

// NewNumber parses "dice [limit] [text...]" into a basic pool roll.
//
// Postcondition: ErrInvalidArguments when the first token is not an integer.
func NewNumber(env Env, req Request) (*Number, error) {
	if len(req.Args) == 0 {
		return nil, ErrInvalidArguments
	}
	n, err := strconv.Atoi(req.Args[0])
	if err != nil || n < 1 {
		return nil, ErrInvalidArguments
	}
	rest := req.Args[1:]
	var limit *int
	if len(rest) > 0 {
		if l, err := strconv.Atoi(rest[0]); err == nil {
			limit = dice.Limit(l)
			rest = rest[1:]
		}
	}
	return &Number{
		env:   env,
		req:   req,
		dice:  n,
		limit: limit,
		text:  strings.Join(rest, " "),
	}, nil
}

// newFixedPool builds a Number for a pre-computed pool, used by the
// attribute-test and soak shortcuts.
func newFixedPool(env Env, req Request, pool int, text string) *Number {
	return &Number{env: env, req: req, dice: pool, limit: nil, text: text}
}

// Execute rolls the pool once. Repeat calls return the first outcome.
func (n *Number) Execute(ctx context.Context) (Result, error) {
	if n.done {
		return n.result, nil
	}

	out := n.env.Roller.Pool(n.dice, n.limit)

	// The GM rolls anonymously and never banks a roll for edge effects.
	if !n.req.Character.IsGM() {
		if err := saveLastRoll(ctx, n.env.Cache, n.req.Character.Handle, snapshotRoll(out, n.text)); err != nil {
			return Result{}, err
		}
	}

	n.result = n.render(out)
	n.done = true
	return n.result, nil
}

func (n *Number) render(out dice.Outcome) Result {
	name := n.req.Character.Handle
	marked := markDice(out.Rolls, dice.SuccessThreshold, dice.FailValue)

	if out.CriticalGlitch {
		return Result{
			Color:     ColorDanger,
			Title:     "Critical Glitch!",
			Text:      fmt.Sprintf("%s rolled %d ones with no successes!", name, out.Fails),
			Dice:      marked,
			ToChannel: true,
		}
	}

	var title string
	if out.HitLimit() {
		title = fmt.Sprintf("%s rolled %d successes, hit limit", name, *out.Limit)
	} else {
		title = fmt.Sprintf("%s rolled %d successes", name, out.Successes)
	}
	color := ColorGood
	if out.Glitch {
		color = ColorWarning
		title += ", glitched"
	} else if out.Successes == 0 {
		color = ColorDanger
	}
	if n.text != "" {
		title += fmt.Sprintf(" for %q", n.text)
	}

	res := Result{
		Color:      color,
		Title:      title,
		Text:       poolDescription(out.Dice, out.Limit),
		Dice:       marked,
		ToChannel:  true,
		CallbackID: name,
	}
	if !n.req.Character.IsGM() && n.req.Character.HasEdge() {
		res.Actions = []Action{{Name: "edge", Label: "Second Chance", Value: "second"}}
	}
	return res
}

// poolDescription formats "12 [6]" or "12" for the card body.
func poolDescription(pool int, limit *int) string {
	if limit != nil {
		return fmt.Sprintf("%d [%d]", pool, *limit)
	}
	return strconv.Itoa(pool)
}
