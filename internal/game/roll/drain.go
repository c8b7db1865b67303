package roll

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/commlink/rollbot/internal/game/dice"
)

const (
	// minDrain is the floor on resisted drain regardless of the drain code.
	minDrain = 2
	// recklessDrain is added when the spell was cast recklessly.
	recklessDrain = 3
)

// Drain resists spell drain: Willpower + Logic dice against the drain value
// computed from the spell's drain code at the force it was cast. Successes
// reduce the drain; the remainder is damage, physical when the hits exceeded
// the caster's magic rating. Drain resistance never banks a LastRoll.
type Drain struct {
	env      Env
	req      Request
	spellID  string
	force    int
	hits     int
	reckless bool

	done   bool
	result Result
}

// NewDrain parses "spellID force hits [reckless]".
//
// Postcondition: ErrInvalidArguments when fewer than three args or
// non-numeric force/hits.
func NewDrain(env Env, req Request) (*Drain, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	if len(req.Args) < 3 {
		return nil, ErrInvalidArguments
	}
	force, err := strconv.Atoi(req.Args[1])
	if err != nil || force < 1 {
		return nil, ErrInvalidArguments
	}
	hits, err := strconv.Atoi(req.Args[2])
	if err != nil || hits < 0 {
		return nil, ErrInvalidArguments
	}
	return &Drain{
		env:      env,
		req:      req,
		spellID:  req.Args[0],
		force:    force,
		hits:     hits,
		reckless: len(req.Args) > 3,
	}, nil
}

// Execute rolls the resistance pool and reports the residual drain damage.
func (d *Drain) Execute(ctx context.Context) (Result, error) {
	if d.done {
		return d.result, nil
	}

	c := d.req.Character
	spell, ok := c.SpellByID(d.spellID)
	if !ok {
		return Result{}, withCard(ErrInvalidArguments,
			"Unknown Spell", fmt.Sprintf("You don't seem to know a spell with ID %q.", d.spellID))
	}

	drain := drainValue(spell.Drain, d.force)
	if d.reckless {
		drain += recklessDrain
	}

	pool := c.Willpower + c.Logic
	out := d.env.Roller.Pool(pool, nil)

	damageType := "S"
	if d.hits > c.Magic {
		damageType = "P"
	}
	damage := drain - out.Successes
	if damage < 0 {
		damage = 0
	}

	drainCode := spell.Drain
	if d.reckless {
		drainCode += "+3"
	}

	d.result = Result{
		Color: ColorInfo,
		Text: fmt.Sprintf("%s is resisting %s drain at force %d",
			c.Handle, spell.Drain, d.force),
		Dice:      markDice(out.Rolls, dice.SuccessThreshold, dice.FailValue),
		ToChannel: true,
		Fields: []Field{
			{Title: "Spell", Value: spell.Name, Short: true},
			{Title: "Drain code", Value: fmt.Sprintf("%s = %d", drainCode, drain), Short: true},
			{Title: "Resist with", Value: "Willpower + Logic", Short: true},
			{Title: "Damage type", Value: damageType, Short: true},
			{Title: "Reckless", Value: strconv.FormatBool(d.reckless), Short: true},
			{Title: "Damage", Value: fmt.Sprintf("%d%s", damage, damageType), Short: true},
		},
	}
	d.done = true
	return d.result, nil
}

// drainValue resolves a drain code such as "F-3" at the given force.
//
// Postcondition: result >= minDrain.
func drainValue(code string, force int) int {
	applied := strings.ToUpper(strings.TrimSpace(code))
	var value int
	switch {
	case strings.Contains(applied, "-"):
		parts := strings.SplitN(applied, "-", 2)
		value = force - atoiOrZero(parts[1])
	case strings.Contains(applied, "+"):
		parts := strings.SplitN(applied, "+", 2)
		value = force + atoiOrZero(parts[1])
	default:
		value = force
	}
	if value < minDrain {
		value = minDrain
	}
	return value
}

func atoiOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
