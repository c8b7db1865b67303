// Package bot dispatches chat events to roll variants. It is the
// platform-neutral middle layer: the Slack and Discord adapters parse their
// wire formats into an Event, and the dispatcher resolves the campaign and
// character, runs the roll, and persists any edge spend before handing the
// Result back for rendering.
package bot

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/commlink/rollbot/internal/commlink"
	"github.com/commlink/rollbot/internal/game/campaign"
	"github.com/commlink/rollbot/internal/game/character"
	"github.com/commlink/rollbot/internal/game/roll"
)

// CharacterService is the slice of the character API the dispatcher needs.
type CharacterService interface {
	// FindByUser resolves the character a chat user plays in a campaign, or
	// commlink.ErrNotFound.
	FindByUser(ctx context.Context, campaignID, userID string) (*character.Character, error)
	// SpendEdge persists a decrement of the character's remaining edge by one.
	SpendEdge(ctx context.Context, characterID string) error
}

// Event is one inbound chat command, already stripped of platform framing.
type Event struct {
	// TeamID and ChannelID identify the conversation: Slack team + channel,
	// or Discord guild + channel.
	TeamID    string
	ChannelID string
	// UserID is the platform user who issued the command.
	UserID string
	// Text is everything after the slash command or prefix.
	Text string
}

// Dispatcher routes events through the campaign lookup, character resolution,
// and the roll registry.
type Dispatcher struct {
	campaigns  campaign.Store
	characters CharacterService
	registry   *roll.Registry
	logger     *zap.Logger
}

// NewDispatcher creates a Dispatcher.
//
// Precondition: all arguments must be non-nil.
func NewDispatcher(campaigns campaign.Store, characters CharacterService, registry *roll.Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		campaigns:  campaigns,
		characters: characters,
		registry:   registry,
		logger:     logger,
	}
}

// Dispatch resolves and executes the roll an event asks for.
//
// Postcondition: the returned Result is always renderable; every failure mode
// comes back as a danger card, never as an error. An edge-spending roll has
// its spend persisted before the Result is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) roll.Result {
	camp, err := d.campaigns.FindByChannel(ctx, ev.TeamID, ev.ChannelID)
	if errors.Is(err, campaign.ErrNotFound) {
		d.logger.Warn("no campaign found",
			zap.String("teamId", ev.TeamID),
			zap.String("channelId", ev.ChannelID),
		)
		return noCampaignCard(ev)
	}
	if err != nil {
		d.logger.Error("campaign lookup failed", zap.Error(err))
		return serverErrorCard()
	}

	ch, err := d.characters.FindByUser(ctx, camp.ID, ev.UserID)
	if errors.Is(err, commlink.ErrNotFound) {
		// Some rolls don't really require a character.
		ch = character.NewGM()
	} else if err != nil {
		d.logger.Error("character lookup failed",
			zap.String("campaignId", camp.ID),
			zap.String("userId", ev.UserID),
			zap.Error(err),
		)
		return serverErrorCard()
	}

	req := roll.Request{Character: ch, CampaignID: camp.ID}
	variant, err := d.registry.Resolve(req, strings.Fields(ev.Text))
	if err != nil {
		if card, ok := roll.ErrorCard(err); ok {
			return card
		}
		d.logger.Error("resolving roll failed", zap.Error(err))
		return serverErrorCard()
	}

	res, err := d.registry.Run(ctx, variant)
	if err != nil {
		d.logger.Error("roll failed",
			zap.String("handle", ch.Handle),
			zap.String("text", ev.Text),
			zap.Error(err),
		)
		return serverErrorCard()
	}

	if res.SpendEdge && !ch.IsGM() {
		if err := d.characters.SpendEdge(ctx, ch.ID); err != nil {
			// The roll already happened; losing the spend is better than
			// losing the result. The next lookup resyncs the edge total.
			d.logger.Error("persisting edge spend failed",
				zap.String("characterId", ch.ID),
				zap.Error(err),
			)
		}
	}
	return res
}

// noCampaignCard tells the user this conversation is not bound to a campaign.
func noCampaignCard(ev Event) roll.Result {
	return roll.Result{
		Title: "Channel Not Registered",
		Text:  "This channel is not registered for any campaign.",
		Color: roll.ColorDanger,
		Fields: []roll.Field{
			{Title: "team_id", Value: ev.TeamID, Short: true},
			{Title: "channel_id", Value: ev.ChannelID, Short: true},
		},
	}
}

// serverErrorCard is the generic apology for faults the user cannot fix.
func serverErrorCard() roll.Result {
	return roll.Result{
		Title: "Server Error",
		Text:  "RollBot is unable to respond!",
		Color: roll.ColorDanger,
	}
}
