package roll

import (
	"context"
	"fmt"

	"github.com/commlink/rollbot/internal/game/dice"
)

// Second is the Second Chance edge action: reroll every non-success from the
// banked LastRoll. Prior successes are kept, the reclassification runs against
// the original pool size, and a glitch on the prior roll is sticky. Sixes do
// not explode and the limit still applies.
type Second struct {
	env Env
	req Request

	done   bool
	result Result
}

// NewSecond builds a Second Chance reroll. Args are ignored; everything the
// reroll needs comes from the banked LastRoll.
func NewSecond(env Env, req Request) (*Second, error) {
	return &Second{env: env, req: req}, nil
}

// Execute checks edge and the banked roll, rerolls the non-successes, and
// burns the LastRoll so the effect cannot be repeated.
//
// Postcondition: ErrOutOfEdge / ErrNoLastRoll / ErrCriticalGlitch on
// rejection, with no edge spent and the bank untouched.
func (s *Second) Execute(ctx context.Context) (Result, error) {
	if s.done {
		return s.result, nil
	}
	if !s.req.Character.HasEdge() {
		return Result{}, ErrOutOfEdge
	}

	prior, err := loadLastRoll(ctx, s.env.Cache, s.req.Character.Handle)
	if err != nil {
		return Result{}, err
	}
	if prior.CriticalGlitch {
		return Result{}, ErrCriticalGlitch
	}
	if prior.Dice < 1 || prior.Successes < 0 || prior.Successes > prior.Dice {
		return Result{}, fmt.Errorf(
			"inconsistent last roll for %s: %d successes on %d dice",
			s.req.Character.Handle, prior.Successes, prior.Dice)
	}

	// Keep only the successes from the prior roll and reroll the rest.
	kept := make([]int, 0, prior.Successes)
	for _, v := range prior.Rolls {
		if v >= dice.SuccessThreshold {
			kept = append(kept, v)
		}
	}
	rerolled := s.env.Roller.Sum(prior.Dice-prior.Successes, dice.Sides)

	// Fails come from the new rolls only, but the glitch floor is still the
	// original pool size.
	out := dice.Classify(append(kept, rerolled...), prior.Dice, prior.Limit)
	out.Fails = 0
	for _, v := range rerolled {
		if v == dice.FailValue {
			out.Fails++
		}
	}
	out.Glitch = prior.Glitch
	out.CriticalGlitch = false
	if out.Fails > 0 && out.Fails >= prior.Dice/2 {
		out.Glitch = true
		if out.Successes == 0 {
			out.CriticalGlitch = true
		}
	}

	if err := deleteLastRoll(ctx, s.env.Cache, s.req.Character.Handle); err != nil {
		return Result{}, err
	}

	s.result = s.render(out, prior.Text)
	s.done = true
	return s.result, nil
}

func (s *Second) render(out dice.Outcome, text string) Result {
	name := s.req.Character.Handle
	edgeLeft := s.req.Character.EdgeCurrent - 1
	footer := fmt.Sprintf("%d edge left", edgeLeft)
	marked := markDice(out.Rolls, dice.SuccessThreshold, dice.FailValue)

	if out.CriticalGlitch {
		return Result{
			Color:     ColorDanger,
			Title:     "Critical Glitch!",
			Text:      fmt.Sprintf("%s rolled %d ones with no successes on Second Chance!", name, out.Fails),
			Dice:      marked,
			Footer:    footer,
			ToChannel: true,
			SpendEdge: true,
		}
	}

	var title string
	if out.HitLimit() {
		title = fmt.Sprintf("Second Chance: %s rolled %d successes, hit limit", name, *out.Limit)
	} else {
		title = fmt.Sprintf("Second Chance: %s rolled %d successes", name, out.Successes)
	}
	color := ColorGood
	if out.Glitch {
		color = ColorWarning
		title += ", still glitched"
	} else if out.Successes == 0 {
		color = ColorDanger
	}
	if text != "" {
		title += fmt.Sprintf(" for %q", text)
	}

	return Result{
		Color:     color,
		Title:     title,
		Text:      poolDescription(out.Dice, out.Limit),
		Dice:      marked,
		Footer:    footer,
		ToChannel: true,
		SpendEdge: true,
	}
}
