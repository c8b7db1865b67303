package roll

import (
	"errors"

	"github.com/commlink/rollbot/internal/game/combat"
	"github.com/commlink/rollbot/internal/game/dice"
)

// Domain errors. Every one of these is recovered at the variant boundary and
// rendered as a danger Result; none escapes to the platform adapter.
var (
	// ErrOutOfEdge rejects an edge-gated action when edgeCurrent is zero.
	ErrOutOfEdge = errors.New("roll: out of edge")
	// ErrNoLastRoll rejects Second Chance when no prior roll is cached,
	// including when the prior roll itself consumed edge.
	ErrNoLastRoll = errors.New("roll: no last roll")
	// ErrCriticalGlitch rejects Second Chance against a stored critical
	// glitch. Terminal: the prior roll cannot be fixed.
	ErrCriticalGlitch = errors.New("roll: cannot fix a critical glitch")
	// ErrInvalidArguments rejects unparseable numeric or token input.
	ErrInvalidArguments = errors.New("roll: invalid arguments")
	// ErrUnknownCommand rejects a command name with no registered variant.
	ErrUnknownCommand = errors.New("roll: unknown command")
	// ErrNoMagic rejects spellcasting by characters without a magic rating.
	ErrNoMagic = errors.New("roll: character has no magic")
	// ErrGMOnly rejects combat-management commands from non-GM users.
	ErrGMOnly = errors.New("roll: GM only")
	// ErrNoCharacter rejects character-bound rolls from the GM sentinel.
	ErrNoCharacter = errors.New("roll: no character")
)

// cardError pairs a taxonomy sentinel with a variant-specific rendering.
// errors.Is still matches the wrapped sentinel.
type cardError struct {
	err  error
	card Result
}

func (e *cardError) Error() string { return e.err.Error() }

func (e *cardError) Unwrap() error { return e.err }

// withCard wraps err so the boundary renders the given card instead of the
// default for that sentinel.
func withCard(err error, title, text string) error {
	return &cardError{err: err, card: Result{
		Color: ColorDanger,
		Title: title,
		Text:  text,
	}}
}

// ErrorCard maps a domain error to its rendered danger Result, or ok=false
// for errors that are not part of the user-facing taxonomy. The dispatcher
// uses it for errors raised before a variant is even constructed.
func ErrorCard(err error) (Result, bool) {
	return errorCard(err)
}

// errorCard maps a domain error to its rendered danger Result, or ok=false
// for errors that are not part of the user-facing taxonomy.
func errorCard(err error) (Result, bool) {
	var ce *cardError
	if errors.As(err, &ce) {
		return ce.card, true
	}
	switch {
	case errors.Is(err, ErrOutOfEdge):
		return Result{
			Color: ColorDanger,
			Title: "No More Edge",
			Text:  "Tough luck chummer, you're out of edge.",
		}, true
	case errors.Is(err, ErrNoLastRoll):
		return Result{
			Color: ColorDanger,
			Title: "No Last Roll",
			Text: "You asked to use the Second Chance edge effect, but we " +
				"don't have a last roll for you. This may be because the " +
				"last roll used edge.",
		}, true
	case errors.Is(err, ErrCriticalGlitch):
		return Result{
			Color: ColorDanger,
			Title: "Critical Glitch",
			Text:  "Second Chance can not be used to fix a critical glitch.",
		}, true
	case errors.Is(err, ErrNoMagic):
		return Result{
			Color: ColorDanger,
			Title: "Not Available",
			Text:  "Only spellcasters can cast spells.",
		}, true
	case errors.Is(err, ErrGMOnly):
		return Result{
			Color: ColorDanger,
			Title: "Not Allowed",
			Text:  "Only the GM can manage combat.",
		}, true
	case errors.Is(err, ErrNoCharacter):
		return Result{
			Color: ColorDanger,
			Title: "No Character",
			Text:  "You need a registered character for that roll.",
		}, true
	case errors.Is(err, ErrInvalidArguments), errors.Is(err, ErrUnknownCommand),
		errors.Is(err, dice.ErrInvalidExpression):
		return Result{
			Color: ColorDanger,
			Title: "Bad Request",
			Text:  "That doesn't appear to be a valid roll. Try `/roll help`.",
		}, true
	case errors.Is(err, dice.ErrTooManyDice):
		return Result{
			Color: ColorDanger,
			Title: "Too Many Dice",
			Text:  "LOL. No, just no.",
		}, true
	case errors.Is(err, combat.ErrNotInCombat):
		return Result{
			Color: ColorDanger,
			Title: "Not in combat",
			Text:  "You do not appear to be in combat.",
		}, true
	case errors.Is(err, combat.ErrCombatStarted):
		return Result{
			Color: ColorDanger,
			Title: "Combat in progress",
			Text: "Everyone has already rolled initiative and combat has " +
				"begun. Assuming you and at least one opponent survive, " +
				"you'll get another chance then.",
		}, true
	case errors.Is(err, combat.ErrCombatActive):
		return Result{
			Color: ColorDanger,
			Title: "Combat already started",
			Text:  "End the current combat before starting a new one.",
		}, true
	case errors.Is(err, combat.ErrAlreadyRolled):
		return Result{
			Color: ColorDanger,
			Title: "Already rolled",
			Text:  "You've already rolled initiative this round.",
		}, true
	}
	return Result{}, false
}
