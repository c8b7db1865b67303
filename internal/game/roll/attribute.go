package roll

import (
	"fmt"
	"strconv"
)

// The attribute tests are thin shortcuts over the basic pool roll with a
// fixed pool and title. They share its full behavior, LastRoll banking and
// Second Chance affordance included.

// NewComposure rolls Charisma + Willpower.
func NewComposure(env Env, req Request) (*Number, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	c := req.Character
	return newFixedPool(env, req, c.Charisma+c.Willpower, "Composure Test"), nil
}

// NewJudgeIntentions rolls Charisma + Intuition.
func NewJudgeIntentions(env Env, req Request) (*Number, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	c := req.Character
	return newFixedPool(env, req, c.Charisma+c.Intuition, "Judge Intentions Test"), nil
}

// NewMemory rolls Logic + Willpower.
func NewMemory(env Env, req Request) (*Number, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	c := req.Character
	return newFixedPool(env, req, c.Logic+c.Willpower, "Memory Test"), nil
}

// NewLifting rolls Body + Strength.
func NewLifting(env Env, req Request) (*Number, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	c := req.Character
	return newFixedPool(env, req, c.Body+c.Strength, "Lifting/Carrying Test"), nil
}

// NewLuck rolls the character's full edge attribute, not the current pool.
func NewLuck(env Env, req Request) (*Number, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	return newFixedPool(env, req, req.Character.Edge, "Luck Test"), nil
}

// NewSoak rolls the soak pool, adjusted by an optional armor-penetration
// modifier given as the first argument.
func NewSoak(env Env, req Request) (*Number, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	ap := 0
	if len(req.Args) > 0 {
		v, err := strconv.Atoi(req.Args[0])
		if err != nil {
			return nil, ErrInvalidArguments
		}
		ap = v
	}
	pool := req.Character.Soak + ap
	if pool < 1 {
		return nil, ErrInvalidArguments
	}
	return newFixedPool(env, req, pool, fmt.Sprintf("Soak (AP %d)", ap)), nil
}

// requireCharacter rejects character-bound shortcuts from the GM sentinel,
// whose attributes are all zero.
func requireCharacter(req Request) error {
	if req.Character == nil || req.Character.IsGM() {
		return ErrNoCharacter
	}
	return nil
}
