package roll

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/commlink/rollbot/internal/game/dice"
)

// Push is the Push the Limit edge action: the pool rolls with the Rule of Six
// (exploding sixes) and the test's limit is ignored for scoring. Using edge
// forfeits the banked LastRoll, so Second Chance cannot follow.
type Push struct {
	env  Env
	req  Request
	dice int
	// limit is displayed struck through but never applied.
	limit *int
	text  string

	done   bool
	result Result
}

// NewPush parses "dice [limit] [text...]" into an exploding edge roll.
//
// Postcondition: ErrInvalidArguments on a missing or non-numeric pool.
func NewPush(env Env, req Request) (*Push, error) {
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
	return &Push{
		env:   env,
		req:   req,
		dice:  n,
		limit: limit,
		text:  strings.Join(rest, " "),
	}, nil
}

// Execute verifies edge, rolls exploding dice, and burns the LastRoll.
// The edge decrement itself is the caller's job, signaled via SpendEdge.
func (p *Push) Execute(ctx context.Context) (Result, error) {
	if p.done {
		return p.result, nil
	}
	if !p.req.Character.HasEdge() {
		return Result{}, withCard(ErrOutOfEdge,
			"Out of Edge", "You can't Push the Limit, you're out of Edge!")
	}

	out := p.env.Roller.Exploding(p.dice, p.limit)

	// A roll made with edge cannot itself be second-chanced.
	if err := deleteLastRoll(ctx, p.env.Cache, p.req.Character.Handle); err != nil {
		return Result{}, err
	}

	p.result = p.render(out)
	p.done = true
	return p.result, nil
}

func (p *Push) render(out dice.Outcome) Result {
	name := p.req.Character.Handle
	edgeLeft := p.req.Character.EdgeCurrent - 1
	footer := fmt.Sprintf("with %d exploded sixes, %d edge left", out.Explosions, edgeLeft)
	marked := markDice(out.Rolls, dice.SuccessThreshold, dice.FailValue)

	if out.CriticalGlitch {
		return Result{
			Color:     ColorDanger,
			Title:     "Critical Glitch!",
			Text:      fmt.Sprintf("%s rolled %d ones with no successes!", name, out.Fails),
			Dice:      marked,
			Footer:    footer,
			ToChannel: true,
			SpendEdge: true,
		}
	}

	var title string
	if out.HitLimit() {
		title = fmt.Sprintf("%s rolled %d successes, ignored limit", name, out.Successes)
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
	if p.text != "" {
		title += fmt.Sprintf(" for %q", p.text)
	}

	body := strconv.Itoa(out.Dice)
	if out.Limit != nil {
		body = fmt.Sprintf("%d ~[%d]~", out.Dice, *out.Limit)
	}

	return Result{
		Color:     color,
		Title:     title,
		Text:      body,
		Dice:      marked,
		Footer:    footer,
		ToChannel: true,
		SpendEdge: true,
	}
}
