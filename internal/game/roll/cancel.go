package roll

import (
	"context"
	"errors"
	"fmt"

	"github.com/commlink/rollbot/internal/game/campaign"
)

// CancelMarket withdraws the character's first un-rolled black-market search.
type CancelMarket struct {
	env Env
	req Request
}

// NewCancelMarket builds the cancel command.
func NewCancelMarket(env Env, req Request) (*CancelMarket, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	return &CancelMarket{env: env, req: req}, nil
}

// Execute deletes the first open search, announcing the outcome either way.
func (v *CancelMarket) Execute(ctx context.Context) (Result, error) {
	handle := v.req.Character.Handle
	_, err := v.env.Market.CancelFirstOpen(ctx, v.req.Character.ID)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, campaign.ErrNoOpenSearch) {
			msg = "all black market searches have been started"
		}
		return Result{
			Color: ColorDanger,
			Title: "Black Market Search Cancelled",
			Text: fmt.Sprintf(
				"%s tried to cancel their black market search, but had an error: %s",
				handle, msg),
			ToChannel: true,
		}, nil
	}
	return Result{
		Title:     "Black Market Search Cancelled",
		Text:      fmt.Sprintf("%s cancelled their black market search.", handle),
		ToChannel: true,
	}, nil
}
