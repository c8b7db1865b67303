package roll

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/commlink/rollbot/internal/game/campaign"
	"github.com/commlink/rollbot/internal/game/dice"
)

// maxGreaseDice caps the dice bought with bribe money.
const maxGreaseDice = 12

// BlackMarket negotiates a pending procurement search: an opposed test of
// negotiation + charisma + grease dice against the item's availability, with
// the requester's successes capped at their social limit. The net result sets
// the delivery date or, on a failure, when the search may be retried.
type BlackMarket struct {
	env Env
	req Request
	// index selects a specific search instead of the first open one.
	index *int

	done   bool
	result Result
}

// NewBlackMarket parses an optional search index.
func NewBlackMarket(env Env, req Request) (*BlackMarket, error) {
	if err := requireCharacter(req); err != nil {
		return nil, err
	}
	b := &BlackMarket{env: env, req: req}
	if len(req.Args) > 0 {
		i, err := strconv.Atoi(req.Args[0])
		if err != nil || i < 0 {
			return nil, ErrInvalidArguments
		}
		b.index = &i
	}
	return b, nil
}

// Execute rolls the opposed test and persists the outcome on the search.
func (b *BlackMarket) Execute(ctx context.Context) (Result, error) {
	if b.done {
		return b.result, nil
	}

	camp, err := b.env.Campaigns.GetCampaign(ctx, b.req.CampaignID)
	if err != nil {
		return Result{}, err
	}
	today := camp.Today()

	search, err := b.findSearch(ctx, today)
	if err != nil {
		return b.searchError(err), nil
	}

	c := b.req.Character
	negotiation := c.NegotiationDice()
	grease := 0
	if search.Total >= 4 {
		grease = search.Grease / (search.Total / 4)
	}
	if grease > maxGreaseDice {
		grease = maxGreaseDice
	}
	pool := negotiation + c.Charisma + grease

	mine := b.env.Roller.Pool(pool, nil)
	theirs := b.env.Roller.Pool(search.Availability, nil)

	if mine.CriticalGlitch {
		b.result = Result{
			Color: ColorDanger,
			Title: "Black Market Search: Critical Glitch!",
			Text: fmt.Sprintf(
				"%s critical glitched on %d dice for their black market roll: Charisma (%d), Negotiation (%d), and Grease Dice (%d)",
				c.Handle, pool, c.Charisma, negotiation, grease),
			Dice:      markDice(mine.Rolls, dice.SuccessThreshold, dice.FailValue),
			ToChannel: true,
		}
		b.done = true
		return b.result, nil
	}

	// The social limit caps the requester's successes; the opposition has no
	// limit.
	successes := mine.Successes
	hitLimit := false
	if successes > c.SocialLimit {
		successes = c.SocialLimit
		hitLimit = true
	}
	net := successes - theirs.Successes

	interval := deliveryInterval(search.Total)
	title := "Black Market Search "
	fields := []Field{{Title: "Start Date", Value: search.SearchDate.Format("2006-01-02"), Short: true}}
	switch {
	case net > 0:
		title += "Succeeded"
		deliver := divideInterval(search.SearchDate, interval, net)
		search.DeliverOn = &deliver
		fields = append(fields, Field{Title: "Delivery on", Value: deliver.Format("2006-01-02"), Short: true})
	case net == 0:
		// A tie doubles the base delivery time.
		title += "Tied"
		deliver := search.SearchDate.Add(2 * interval)
		search.DeliverOn = &deliver
		fields = append(fields, Field{Title: "Delivery on", Value: deliver.Format("2006-01-02"), Short: true})
	default:
		// A failure locks the search until double the base time has passed.
		title += "Failed"
		retry := search.SearchDate.Add(2 * interval)
		search.RetryAfter = &retry
		fields = append(fields, Field{Title: "Try Again After", Value: retry.Format("2006-01-02"), Short: true})
	}
	if hitLimit {
		title += ", Hit Limit"
	}
	if mine.Glitch {
		title += ", Glitched"
	}

	if err := b.env.Market.SaveResult(ctx, search); err != nil {
		return Result{}, err
	}

	plural := "es"
	if net == 1 {
		plural = ""
	}
	b.result = Result{
		Title: title,
		Text: fmt.Sprintf(
			"%s rolled %d dice for their black market roll: Charisma (%d), Negotiation (%d), and Grease Dice (%d) and got %d net success%s.",
			c.Handle, pool, c.Charisma, negotiation, grease, net, plural),
		Dice:      markDice(mine.Rolls, dice.SuccessThreshold, dice.FailValue),
		Footer:    "vs " + formatRolls(theirs.Rolls),
		Fields:    fields,
		ToChannel: true,
	}
	b.done = true
	return b.result, nil
}

// findSearch loads the search to negotiate and enforces the rolled and
// retry-lockout rules for indexed lookups.
func (b *BlackMarket) findSearch(ctx context.Context, today time.Time) (*campaign.MarketSearch, error) {
	search, err := b.env.Market.OpenSearch(ctx, b.req.Character.ID, b.index)
	if err != nil {
		return nil, err
	}
	if b.index == nil {
		return search, nil
	}
	if search.DeliverOn != nil {
		return nil, fmt.Errorf(
			"the search has already been rolled, and will be delivered on %s",
			search.DeliverOn.Format("2006-01-02"))
	}
	if search.RetryAfter != nil && today.Before(*search.RetryAfter) {
		return nil, errors.New("it's too soon to retry your search")
	}
	return search, nil
}

// searchError renders a lookup failure. The bare-command form goes to the
// channel like its success counterpart would.
func (b *BlackMarket) searchError(err error) Result {
	msg := err.Error()
	switch {
	case errors.Is(err, campaign.ErrNoOpenSearch):
		msg = "all black market searches have already been rolled"
	case errors.Is(err, campaign.ErrNotFound):
		msg = "requested black market search not found"
	}
	return Result{
		Color: ColorDanger,
		Title: "Black Market Search",
		Text: fmt.Sprintf(
			"An error occurred trying negotiate your black market search for %s: %s",
			b.req.Character.Handle, msg),
		ToChannel: b.index == nil,
	}
}

// deliveryInterval is the base delivery time for an item of the given cost.
func deliveryInterval(cost int) time.Duration {
	switch {
	case cost < 100:
		return 6 * time.Hour
	case cost < 1000:
		return 24 * time.Hour
	case cost < 10000:
		return 48 * time.Hour
	case cost < 100000:
		return 7 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// divideInterval shortens the base interval by the net successes, in whole
// days. Sub-day intervals round down to same-day delivery.
func divideInterval(start time.Time, interval time.Duration, net int) time.Time {
	days := int(interval.Hours()/24) / net
	return start.AddDate(0, 0, days)
}

func formatRolls(rolls []int) string {
	out := ""
	for i, v := range rolls {
		if i > 0 {
			out += " "
		}
		out += strconv.Itoa(v)
	}
	return out
}
