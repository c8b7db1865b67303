package slack

import (
	"context"

	"github.com/commlink/rollbot/internal/game/roll"
	"github.com/commlink/rollbot/internal/webhook"
)

// ResultPoster publishes roll results to a campaign's Slack webhook. Staged
// flows hand it platform-neutral Results; it renders them to attachment JSON
// before posting.
type ResultPoster struct {
	poster *webhook.Poster
}

// NewResultPoster creates a ResultPoster over the given webhook client.
func NewResultPoster(poster *webhook.Poster) *ResultPoster {
	return &ResultPoster{poster: poster}
}

// Post renders and publishes the body.
func (p *ResultPoster) Post(ctx context.Context, url string, body any) error {
	if res, ok := body.(roll.Result); ok {
		msg := Render(res)
		// Webhook messages always land in the bound channel.
		msg.ResponseType = ""
		msg.ReplaceOriginal = false
		msg.DeleteOriginal = false
		return p.poster.Post(ctx, url, msg)
	}
	return p.poster.Post(ctx, url, body)
}
