// Package discord adapts roll results to Discord markdown and listens for
// prefixed roll commands on the gateway.
package discord

import (
	"fmt"
	"strings"

	"github.com/commlink/rollbot/internal/game/roll"
)

// Render maps a platform-neutral Result to a Discord markdown message.
// Discord has no attachment cards, so the title goes bold on its own line,
// fields become labelled lines, and the dice footer closes the message.
func Render(res roll.Result) string {
	var b strings.Builder
	if res.Title != "" {
		fmt.Fprintf(&b, "**%s**\n", res.Title)
	}
	if res.Text != "" {
		b.WriteString(res.Text)
		b.WriteString("\n")
	}
	for _, f := range res.Fields {
		fmt.Fprintf(&b, "**%s:** %s\n", f.Title, f.Value)
	}
	if footer := renderFooter(res); footer != "" {
		b.WriteString(footer)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderFooter(res roll.Result) string {
	parts := make([]string, 0, 3)
	if res.FooterPrefix != "" {
		parts = append(parts, res.FooterPrefix)
	}
	if len(res.Dice) > 0 {
		parts = append(parts, formatDice(res.Dice))
	}
	if res.Footer != "" {
		parts = append(parts, res.Footer)
	}
	return strings.Join(parts, " ")
}

// formatDice bolds successes and strikes out ones, Discord-style.
func formatDice(dice []roll.Die) string {
	out := make([]string, len(dice))
	for i, d := range dice {
		switch d.Kind {
		case roll.DieSuccess:
			out[i] = fmt.Sprintf("**%d**", d.Value)
		case roll.DieFail:
			out[i] = fmt.Sprintf("~~%d~~", d.Value)
		default:
			out[i] = fmt.Sprintf("%d", d.Value)
		}
	}
	return strings.Join(out, " ")
}
