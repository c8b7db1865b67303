package roll

import (
	"context"
	"strconv"
	"strings"

	"github.com/commlink/rollbot/internal/game/dice"
)

// Registry resolves command text into roll variants. A leading integer is the
// basic pool roll, an NdM expression is the generic sum roll, and everything
// else is looked up by its first token.
type Registry struct {
	env        Env
	encounters EncounterLoader
	commands   map[string]constructor
}

type constructor func(env Env, req Request) (Variant, error)

// adapt lifts a concrete constructor to the Variant interface.
func adapt[T Variant](fn func(Env, Request) (T, error)) constructor {
	return func(env Env, req Request) (Variant, error) {
		return fn(env, req)
	}
}

// NewRegistry builds the command table. encounters may be nil when no
// encounter definitions are configured; "start" then only seeds players.
func NewRegistry(env Env, encounters EncounterLoader) *Registry {
	r := &Registry{env: env, encounters: encounters}
	r.commands = map[string]constructor{
		"push":   adapt(NewPush),
		"second": adapt(NewSecond),

		"init":  adapt(NewInitiative),
		"blitz": adapt(NewBlitz),

		"composure": adapt(NewComposure),
		"judge":     adapt(NewJudgeIntentions),
		"memory":    adapt(NewMemory),
		"lifting":   adapt(NewLifting),
		"luck":      adapt(NewLuck),
		"soak":      adapt(NewSoak),

		"cast":      adapt(NewCast),
		"drain":     adapt(NewDrain),
		"addiction": adapt(NewAddiction),

		"market":       adapt(NewBlackMarket),
		"cancelmarket": adapt(NewCancelMarket),

		"campaign": adapt(NewCampaignInfo),
		"stats":    adapt(NewStats),
		"help":     adapt(NewHelp),

		"start": func(env Env, req Request) (Variant, error) {
			return NewStartCombat(env, req, encounters)
		},
		"next": adapt(NewNextPass),
		"end":  adapt(NewEndCombat),
		"show": adapt(NewShowCombat),
	}
	return r
}

// Resolve builds the variant for the given command text tokens.
//
// Postcondition: ErrUnknownCommand when the first token matches nothing;
// ErrInvalidArguments when there is no text at all.
func (r *Registry) Resolve(req Request, tokens []string) (Variant, error) {
	if len(tokens) == 0 {
		return nil, ErrInvalidArguments
	}
	first := tokens[0]

	if _, err := strconv.Atoi(first); err == nil {
		req.Args = tokens
		return NewNumber(r.env, req)
	}
	if dice.IsExpression(strings.Join(tokens, " ")) {
		req.Args = tokens
		return NewGeneric(r.env, req)
	}

	build, ok := r.commands[strings.ToLower(first)]
	if !ok {
		return nil, ErrUnknownCommand
	}
	req.Args = tokens[1:]
	return build(r.env, req)
}

// Run executes a resolved variant against this registry's environment.
func (r *Registry) Run(ctx context.Context, v Variant) (Result, error) {
	return Run(ctx, r.env, v)
}
