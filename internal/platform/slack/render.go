// Package slack adapts roll results to Slack's attachment wire format and
// serves the slash-command and interactive-message endpoints.
package slack

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/commlink/rollbot/internal/game/roll"
)

// colorInfo is the hex code Slack renders for informational results; the
// other colors are Slack's named attachment palette.
const colorInfo = "#439FE0"

// Render maps a platform-neutral Result to a Slack message.
//
// Postcondition: the message always contains exactly one attachment.
func Render(res roll.Result) slack.Msg {
	att := slack.Attachment{
		Color:      attachmentColor(res.Color),
		Title:      res.Title,
		Text:       res.Text,
		Footer:     renderFooter(res),
		CallbackID: res.CallbackID,
	}
	for _, f := range res.Fields {
		att.Fields = append(att.Fields, slack.AttachmentField{
			Title: f.Title,
			Value: f.Value,
			Short: f.Short,
		})
	}
	for _, a := range res.Actions {
		att.Actions = append(att.Actions, slack.AttachmentAction{
			Name:  a.Name,
			Text:  a.Label,
			Type:  "button",
			Value: a.Value,
		})
	}
	for _, s := range res.Selects {
		action := slack.AttachmentAction{
			Name: s.Name,
			Text: s.Label,
			Type: "select",
		}
		for _, o := range s.Options {
			action.Options = append(action.Options, slack.AttachmentActionOption{
				Text:  o.Label,
				Value: o.Value,
			})
		}
		att.Actions = append(att.Actions, action)
	}

	msg := slack.Msg{
		ResponseType:    slack.ResponseTypeEphemeral,
		ReplaceOriginal: res.ReplaceOriginal,
		DeleteOriginal:  res.DeleteOriginal,
		Attachments:     []slack.Attachment{att},
	}
	if res.ToChannel {
		msg.ResponseType = slack.ResponseTypeInChannel
	}
	return msg
}

func attachmentColor(c roll.Color) string {
	if c == roll.ColorInfo {
		return colorInfo
	}
	return string(c)
}

// renderFooter joins the footer prefix, the formatted dice, and the footer
// suffix with single spaces. Successes render bold, ones struck out.
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

func formatDice(dice []roll.Die) string {
	out := make([]string, len(dice))
	for i, d := range dice {
		switch d.Kind {
		case roll.DieSuccess:
			out[i] = fmt.Sprintf("*%d*", d.Value)
		case roll.DieFail:
			out[i] = fmt.Sprintf("~%d~", d.Value)
		default:
			out[i] = fmt.Sprintf("%d", d.Value)
		}
	}
	return strings.Join(out, " ")
}
