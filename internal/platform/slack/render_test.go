package slack

import (
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commlink/rollbot/internal/game/roll"
)

func TestRenderAttachment(t *testing.T) {
	res := roll.Result{
		Color:      roll.ColorGood,
		Title:      "Slamm-0 rolled 3 successes",
		Text:       "5 [4]",
		CallbackID: "Slamm-0",
		Dice: []roll.Die{
			{Value: 6, Kind: roll.DieSuccess},
			{Value: 4, Kind: roll.DieNeutral},
			{Value: 1, Kind: roll.DieFail},
		},
		Footer:    "1 edge left",
		ToChannel: true,
	}

	msg := Render(res)

	assert.Equal(t, slack.ResponseTypeInChannel, msg.ResponseType)
	require.Len(t, msg.Attachments, 1)
	att := msg.Attachments[0]
	assert.Equal(t, "good", att.Color)
	assert.Equal(t, "Slamm-0 rolled 3 successes", att.Title)
	assert.Equal(t, "5 [4]", att.Text)
	assert.Equal(t, "Slamm-0", att.CallbackID)
	assert.Equal(t, "*6* 4 ~1~ 1 edge left", att.Footer)
}

func TestRenderEphemeralDefault(t *testing.T) {
	msg := Render(roll.Result{Color: roll.ColorDanger, Title: "Out of Edge"})
	assert.Equal(t, slack.ResponseTypeEphemeral, msg.ResponseType)
}

func TestRenderInfoColorHex(t *testing.T) {
	msg := Render(roll.Result{Color: roll.ColorInfo, Title: "Initiative"})
	assert.Equal(t, colorInfo, msg.Attachments[0].Color)
}

func TestRenderButtons(t *testing.T) {
	msg := Render(roll.Result{
		Color:   roll.ColorGood,
		Actions: []roll.Action{{Name: "edge", Label: "Second Chance", Value: "second"}},
	})
	require.Len(t, msg.Attachments[0].Actions, 1)
	a := msg.Attachments[0].Actions[0]
	assert.Equal(t, "edge", a.Name)
	assert.Equal(t, "Second Chance", a.Text)
	assert.Equal(t, "button", string(a.Type))
	assert.Equal(t, "second", a.Value)
}

func TestRenderSelects(t *testing.T) {
	msg := Render(roll.Result{
		Color: roll.ColorInfo,
		Selects: []roll.SelectAction{{
			Name:  "spell",
			Label: "Pick a spell",
			Options: []roll.Option{
				{Label: "Fireball", Value: `{"v":1,"stage":"force","spellId":"fireball"}`},
				{Label: "Heal", Value: `{"v":1,"stage":"force","spellId":"heal"}`},
			},
		}},
	})
	require.Len(t, msg.Attachments[0].Actions, 1)
	a := msg.Attachments[0].Actions[0]
	assert.Equal(t, "select", string(a.Type))
	require.Len(t, a.Options, 2)
	assert.Equal(t, "Fireball", a.Options[0].Text)
}

func TestRenderFields(t *testing.T) {
	msg := Render(roll.Result{
		Color: roll.ColorDanger,
		Title: "Channel Not Registered",
		Fields: []roll.Field{
			{Title: "team_id", Value: "T123", Short: true},
			{Title: "channel_id", Value: "C456", Short: true},
		},
	})
	require.Len(t, msg.Attachments[0].Fields, 2)
	assert.Equal(t, "team_id", msg.Attachments[0].Fields[0].Title)
	assert.True(t, bool(msg.Attachments[0].Fields[0].Short))
}

func TestRenderFooterPrefix(t *testing.T) {
	msg := Render(roll.Result{
		Color:        roll.ColorInfo,
		FooterPrefix: "8+2d6:",
		Dice:         []roll.Die{{Value: 5}, {Value: 2}},
	})
	assert.Equal(t, "8+2d6: 5 2", msg.Attachments[0].Footer)
}

func TestRenderHousekeepingFlags(t *testing.T) {
	msg := Render(roll.Result{Color: roll.ColorInfo, ReplaceOriginal: true, DeleteOriginal: true})
	assert.True(t, msg.ReplaceOriginal)
	assert.True(t, msg.DeleteOriginal)
}
