package roll

import (
	"context"
	"fmt"
	"strings"

	"github.com/commlink/rollbot/internal/game/dice"
)

// Generic is the system-agnostic XdY sum roll, e.g. "3d8+2 damage". It has no
// success concept and no side effects: nothing is banked and no edge moves.
type Generic struct {
	env  Env
	req  Request
	expr dice.Expression

	done   bool
	result Result
}

// NewGeneric parses a NdM expression into a sum roll.
//
// Postcondition: dice.ErrTooManyDice above the hundred-die cap,
// dice.ErrInvalidExpression when the text does not parse.
func NewGeneric(env Env, req Request) (*Generic, error) {
	expr, err := dice.Parse(strings.Join(req.Args, " "))
	if err != nil {
		return nil, err
	}
	return &Generic{env: env, req: req, expr: expr}, nil
}

// Execute rolls and sums the dice.
func (g *Generic) Execute(ctx context.Context) (Result, error) {
	if g.done {
		return g.result, nil
	}

	rolls := g.env.Roller.Sum(g.expr.Count, g.expr.Sides)
	total := dice.Sum(rolls) + g.expr.Modifier

	word := "dice"
	if g.expr.Count == 1 {
		word = "die"
	}
	title := fmt.Sprintf("%s rolled %d %d-sided %s",
		g.req.Character.Handle, g.expr.Count, g.expr.Sides, word)
	switch {
	case g.expr.Modifier > 0:
		title += fmt.Sprintf(" adding %d", g.expr.Modifier)
	case g.expr.Modifier < 0:
		title += fmt.Sprintf(" subtracting %d", -g.expr.Modifier)
	}
	if g.expr.Text != "" {
		title += fmt.Sprintf(", for %q", g.expr.Text)
	}

	g.result = Result{
		Color:     ColorInfo,
		Title:     title,
		Text:      fmt.Sprintf("%d", total),
		Dice:      neutralDice(rolls),
		ToChannel: true,
	}
	g.done = true
	return g.result, nil
}
