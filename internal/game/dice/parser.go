package dice

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxGenericDice is the largest pool a generic XdY roll accepts.
const MaxGenericDice = 100

// ErrTooManyDice is returned when a generic roll requests more than
// MaxGenericDice dice. The request is rejected outright, never clamped.
var ErrTooManyDice = errors.New("dice: too many dice requested")

// ErrInvalidExpression is returned when input does not parse as "NdM[+K|-K]".
var ErrInvalidExpression = errors.New("dice: invalid expression")

// Expression represents a parsed generic dice expression ready to be rolled.
// Precondition: Count >= 1, Sides >= 2 after successful Parse.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice
	Sides    int    // faces per die
	Modifier int    // flat modifier (may be negative)
	Text     string // trailing free text, e.g. "5d10+2 called shot"
}

var genericExpr = regexp.MustCompile(`(?i)^(\d+)d(\d+)\s*([+-]\d+)?\s*(.*)$`)

// IsExpression reports whether text looks like a generic "NdM" request.
// Used by the dispatcher to distinguish generic rolls from named commands.
func IsExpression(text string) bool {
	return genericExpr.MatchString(strings.TrimSpace(text))
}

// Parse parses a generic dice expression string into an Expression.
// Supported forms: "3d6", "2d10+3", "4d8-2 dodging", with optional free text.
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns an Expression with 1 <= Count <= MaxGenericDice and
// Sides >= 2, or ErrTooManyDice / ErrInvalidExpression.
func Parse(expr string) (Expression, error) {
	raw := strings.TrimSpace(expr)
	m := genericExpr.FindStringSubmatch(raw)
	if m == nil {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, raw)
	}

	count, err := strconv.Atoi(m[1])
	if err != nil || count < 1 {
		return Expression{}, fmt.Errorf("%w: die count in %q", ErrInvalidExpression, raw)
	}
	if count > MaxGenericDice {
		return Expression{}, fmt.Errorf("%w: %d > %d", ErrTooManyDice, count, MaxGenericDice)
	}

	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 2 {
		return Expression{}, fmt.Errorf("%w: die sides in %q", ErrInvalidExpression, raw)
	}

	modifier := 0
	if m[3] != "" {
		modifier, err = strconv.Atoi(m[3])
		if err != nil {
			return Expression{}, fmt.Errorf("%w: modifier in %q", ErrInvalidExpression, raw)
		}
	}

	return Expression{
		Raw:      raw,
		Count:    count,
		Sides:    sides,
		Modifier: modifier,
		Text:     strings.TrimSpace(m[4]),
	}, nil
}
