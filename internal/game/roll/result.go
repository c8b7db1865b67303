// Package roll implements the catalog of roll variants: the Shadowrun 5E
// pool rolls with their edge economy, the combat initiative rolls, generic
// XdY rolls, and the staged interactive flows (spellcasting, addiction,
// black-market negotiation). Each variant composes the dice roller, the
// roll-state cache, and character attributes into a platform-neutral Result
// that the Slack and Discord adapters render.
package roll

// Color classifies a Result for platform styling.
type Color string

const (
	// ColorGood marks a successful roll.
	ColorGood Color = "good"
	// ColorWarning marks a qualified success, e.g. a non-critical glitch.
	ColorWarning Color = "warning"
	// ColorDanger marks a failure or a rejected request.
	ColorDanger Color = "danger"
	// ColorInfo marks neutral informational output such as initiative.
	ColorInfo Color = "info"
)

// DieKind classifies a single rolled value for display.
type DieKind int

const (
	// DieNeutral is a mid value: neither success nor fail.
	DieNeutral DieKind = iota
	// DieSuccess is a value at or above the success threshold.
	DieSuccess
	// DieFail is a rolled one.
	DieFail
)

// Die is one rolled value with its display classification. The glyphs used
// to distinguish kinds (bold, strikethrough) belong to the platform adapter;
// the classification itself is part of the roll contract.
type Die struct {
	Value int
	Kind  DieKind
}

// Action is an interactive affordance attached to a Result, e.g. the
// Second Chance button. Value is an opaque payload echoed back verbatim
// when the user clicks.
type Action struct {
	Name  string
	Label string
	Value string
}

// SelectAction is a dropdown affordance offering enumerated options.
type SelectAction struct {
	Name    string
	Label   string
	Options []Option
}

// Option is one choice in a SelectAction.
type Option struct {
	Label string
	Value string
}

// Field is a short titled value rendered in a result card.
type Field struct {
	Title string
	Value string
	Short bool
}

// Result is the platform-neutral outcome of executing a roll variant.
// The Slack adapter maps it to attachment JSON, the Discord adapter to
// markdown text.
type Result struct {
	Title string
	Text  string
	Color Color

	// Dice holds the rolled values, sorted descending, each classified for
	// display. Empty for prompts and errors.
	Dice []Die
	// FooterPrefix renders before the dice, e.g. the "9+2d6:" initiative
	// expression.
	FooterPrefix string
	// Footer renders after the dice, e.g. "1 edge left".
	Footer string

	// ToChannel publishes the result to the whole channel rather than
	// ephemerally to the roller.
	ToChannel bool
	// ReplaceOriginal and DeleteOriginal control interactive-message
	// housekeeping on platforms that support it.
	ReplaceOriginal bool
	DeleteOriginal  bool

	// CallbackID routes interactive follow-ups back to the roller.
	CallbackID string
	Actions    []Action
	Selects    []SelectAction
	Fields     []Field

	// SpendEdge is the single side-effect intent a variant may emit: the
	// caller must persist a decrement of the character's remaining edge by
	// exactly one point.
	SpendEdge bool
}

// markDice classifies pool values for display.
func markDice(values []int, successThreshold, failValue int) []Die {
	out := make([]Die, len(values))
	for i, v := range values {
		kind := DieNeutral
		switch {
		case v >= successThreshold:
			kind = DieSuccess
		case v == failValue:
			kind = DieFail
		}
		out[i] = Die{Value: v, Kind: kind}
	}
	return out
}

// neutralDice wraps values without classification, for sum-based rolls.
func neutralDice(values []int) []Die {
	out := make([]Die, len(values))
	for i, v := range values {
		out[i] = Die{Value: v, Kind: DieNeutral}
	}
	return out
}
