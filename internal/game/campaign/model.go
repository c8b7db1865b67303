// Package campaign defines campaign metadata and the black-market search
// records the negotiation roll operates on, plus the store contracts the
// persistence layer implements.
package campaign

import (
	"context"
	"errors"
	"time"
)

// Campaign is a game table bound to a chat channel.
type Campaign struct {
	ID   string
	Name string
	// Type selects the rule system, e.g. "shadowrun5e".
	Type string
	// WebhookURL receives public results published from ephemeral prompts.
	WebhookURL string
	// Team and Channel bind the campaign to a chat conversation: the Slack
	// team + channel pair, or the Discord guild + channel pair.
	Team    string
	Channel string
	// StartDate is the in-game calendar start; CurrentDate, when set,
	// overrides it as "today" for delivery-date arithmetic.
	StartDate   time.Time
	CurrentDate *time.Time
	Notes       string
}

// Today returns the campaign's in-game current date.
func (c *Campaign) Today() time.Time {
	if c.CurrentDate != nil {
		return *c.CurrentDate
	}
	return c.StartDate
}

// MarketSearch is one pending black-market procurement attempt.
type MarketSearch struct {
	ID          string
	CharacterID string
	// Item describes what is being procured.
	Item string
	// Total is the full price in nuyen; it drives the base delivery interval.
	Total int
	// Grease is the bribe money spent to ease the deal.
	Grease int
	// Availability is the item's availability rating; it sizes the
	// opposition pool.
	Availability int
	// SearchDate is when the search began (in-game).
	SearchDate time.Time
	// DeliverOn is set once a successful negotiation fixes a delivery date.
	DeliverOn *time.Time
	// RetryAfter is set when a failed negotiation locks the search until a
	// later date.
	RetryAfter *time.Time
}

// Rolled reports whether this search has already been negotiated.
func (s *MarketSearch) Rolled() bool {
	return s.DeliverOn != nil || s.RetryAfter != nil
}

// ErrNotFound is returned by stores when no matching record exists.
var ErrNotFound = errors.New("campaign: not found")

// ErrNoOpenSearch is returned when every black-market search has been rolled
// or the character has none.
var ErrNoOpenSearch = errors.New("campaign: no open black-market search")

// Store reads campaign metadata.
type Store interface {
	// GetCampaign returns the campaign by ID, or ErrNotFound.
	GetCampaign(ctx context.Context, id string) (*Campaign, error)
	// FindByChannel resolves the campaign bound to a team+channel pair,
	// or ErrNotFound.
	FindByChannel(ctx context.Context, teamID, channelID string) (*Campaign, error)
	// ListHandles returns the handles of all characters registered to the
	// campaign, in registration order.
	ListHandles(ctx context.Context, campaignID string) ([]string, error)
}

// MarketStore reads and updates a character's black-market searches.
type MarketStore interface {
	// OpenSearch returns the search to negotiate: the index'th search when
	// index is non-nil (ErrNotFound when absent), otherwise the first search
	// that has not been rolled (ErrNoOpenSearch when none).
	OpenSearch(ctx context.Context, characterID string, index *int) (*MarketSearch, error)
	// SaveResult persists the DeliverOn/RetryAfter outcome of a negotiation.
	SaveResult(ctx context.Context, search *MarketSearch) error
	// CancelFirstOpen deletes the first un-rolled search and returns it,
	// or ErrNoOpenSearch.
	CancelFirstOpen(ctx context.Context, characterID string) (*MarketSearch, error)
}
