package roll

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/commlink/rollbot/internal/cache"
	"github.com/commlink/rollbot/internal/game/campaign"
	"github.com/commlink/rollbot/internal/game/character"
	"github.com/commlink/rollbot/internal/game/combat"
	"github.com/commlink/rollbot/internal/game/dice"
)

// Poster publishes a JSON body to a webhook URL. Used by staged flows that
// must turn an ephemeral private prompt into a public channel message.
type Poster interface {
	Post(ctx context.Context, url string, body any) error
}

// Env carries the capability dependencies a variant may need. Variants
// receive exactly the capabilities they use; nothing reads ambient state.
type Env struct {
	Roller    *dice.Roller
	Cache     cache.Store
	Combat    *combat.Coordinator
	Campaigns campaign.Store
	Market    campaign.MarketStore
	Webhook   Poster
	Logger    *zap.Logger
	// Now supplies the wall-clock time; tests pin it.
	Now func() time.Time
}

// Request is the per-event context a variant is constructed with.
type Request struct {
	// Character is the roller's character, or the GM sentinel.
	Character *character.Character
	// CampaignID is the campaign bound to the originating channel.
	CampaignID string
	// Args are the tokens after the command name.
	Args []string
}

// Variant is a single executable roll. Execute must be idempotent per
// instance: the dice are thrown on the first call and the same Result is
// returned on any repeat call.
type Variant interface {
	Execute(ctx context.Context) (Result, error)
}

// Run executes a variant and converts every taxonomy error into its rendered
// danger card. Only unexpected faults (store unreachable, corrupt state)
// escape as errors for the dispatcher's generic apology.
//
// Precondition: env.Logger and env.Now must be set.
func Run(ctx context.Context, env Env, v Variant) (Result, error) {
	start := env.Now()
	res, err := v.Execute(ctx)
	env.Logger.Debug("roll executed",
		zap.String("title", res.Title),
		zap.Duration("elapsed", env.Now().Sub(start)),
		zap.Error(err),
	)
	if err == nil {
		return res, nil
	}
	if card, ok := errorCard(err); ok {
		return card, nil
	}
	return Result{}, err
}
