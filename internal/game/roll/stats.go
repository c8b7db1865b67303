package roll

import (
	"context"
	"fmt"
	"strconv"
)

// Stats renders the requester's stat block: attributes, the edge economy,
// initiative, and the derived pools the other commands roll. The card stays
// private to the requester.
type Stats struct {
	req Request
}

// NewStats builds the stat-block command.
func NewStats(env Env, req Request) (*Stats, error) {
	return &Stats{req: req}, nil
}

// Execute renders the stat block, or a stock card for the GM sentinel.
func (s *Stats) Execute(ctx context.Context) (Result, error) {
	c := s.req.Character
	if c == nil || c.IsGM() {
		return Result{
			Title: "The World",
			Text:  "You're the GM... What else can we say?",
		}, nil
	}

	attributes := []struct {
		name  string
		value int
	}{
		{"Body", c.Body},
		{"Agility", c.Agility},
		{"Reaction", c.Reaction},
		{"Strength", c.Strength},
		{"Willpower", c.Willpower},
		{"Logic", c.Logic},
		{"Intuition", c.Intuition},
		{"Charisma", c.Charisma},
		{"Magic", c.Magic},
		{"Resonance", c.Resonance},
	}
	fields := make([]Field, 0, len(attributes)+4)
	for _, a := range attributes {
		// Mundanes have zero magic and resonance; those rows are omitted.
		if a.value == 0 {
			continue
		}
		fields = append(fields, Field{Title: a.name, Value: strconv.Itoa(a.value), Short: true})
	}

	base := c.Reaction + c.Intuition + c.InitiativeBonus
	initiativeDice := 1 + c.InitiativeDiceBonus
	fields = append(fields,
		Field{Title: "Edge", Value: fmt.Sprintf("%d / %d", c.EdgeCurrent, c.Edge), Short: true},
		Field{Title: "Initiative", Value: fmt.Sprintf("%d + %dd6", base, initiativeDice), Short: true},
		Field{Title: "Soak", Value: strconv.Itoa(c.Soak), Short: true},
		Field{Title: "Social Limit", Value: strconv.Itoa(c.SocialLimit), Short: true},
	)

	return Result{Title: c.Handle, Fields: fields}, nil
}
