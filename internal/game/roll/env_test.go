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

// scriptSource replays fixed face values, then panics.
type scriptSource struct {
	faces []int
	i     int
}

func (s *scriptSource) Intn(n int) int {
	if s.i >= len(s.faces) {
		panic("script exhausted")
	}
	v := s.faces[s.i]
	s.i++
	if v < 1 || v > n {
		panic("scripted face out of range")
	}
	return v - 1
}

// fakeCampaigns is an in-memory campaign.Store.
type fakeCampaigns struct {
	campaigns map[string]*campaign.Campaign
	handles   []string
}

func (f *fakeCampaigns) GetCampaign(_ context.Context, id string) (*campaign.Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return nil, campaign.ErrNotFound
	}
	return c, nil
}

func (f *fakeCampaigns) FindByChannel(_ context.Context, teamID, channelID string) (*campaign.Campaign, error) {
	for _, c := range f.campaigns {
		if c.Team == teamID && c.Channel == channelID {
			return c, nil
		}
	}
	return nil, campaign.ErrNotFound
}

func (f *fakeCampaigns) ListHandles(context.Context, string) ([]string, error) {
	return f.handles, nil
}

// fakeMarket is an in-memory campaign.MarketStore over a single slice.
type fakeMarket struct {
	searches []*campaign.MarketSearch
	saved    []*campaign.MarketSearch
}

func (f *fakeMarket) OpenSearch(_ context.Context, characterID string, index *int) (*campaign.MarketSearch, error) {
	if index != nil {
		n := 0
		for _, s := range f.searches {
			if s.CharacterID != characterID {
				continue
			}
			if n == *index {
				return s, nil
			}
			n++
		}
		return nil, campaign.ErrNotFound
	}
	for _, s := range f.searches {
		if s.CharacterID == characterID && !s.Rolled() {
			return s, nil
		}
	}
	return nil, campaign.ErrNoOpenSearch
}

func (f *fakeMarket) SaveResult(_ context.Context, search *campaign.MarketSearch) error {
	f.saved = append(f.saved, search)
	return nil
}

func (f *fakeMarket) CancelFirstOpen(_ context.Context, characterID string) (*campaign.MarketSearch, error) {
	for i, s := range f.searches {
		if s.CharacterID == characterID && !s.Rolled() {
			f.searches = append(f.searches[:i], f.searches[i+1:]...)
			return s, nil
		}
	}
	return nil, campaign.ErrNoOpenSearch
}

// recordingPoster captures published webhook bodies.
type recordingPoster struct {
	urls   []string
	bodies []any
}

func (p *recordingPoster) Post(_ context.Context, url string, body any) error {
	p.urls = append(p.urls, url)
	p.bodies = append(p.bodies, body)
	return nil
}

// testEnv bundles an Env over fakes with the pieces tests poke at.
type testEnv struct {
	env       Env
	store     *cache.Memory
	campaigns *fakeCampaigns
	market    *fakeMarket
	poster    *recordingPoster
	combat    *combat.Coordinator
}

// newTestEnv builds an Env whose roller replays the given faces.
func newTestEnv(faces ...int) *testEnv {
	store := cache.NewMemory()
	logger := zap.NewNop()
	coord := combat.NewCoordinator(store, logger)
	campaigns := &fakeCampaigns{campaigns: map[string]*campaign.Campaign{}}
	market := &fakeMarket{}
	poster := &recordingPoster{}
	return &testEnv{
		env: Env{
			Roller:    dice.NewLoggedRoller(&scriptSource{faces: faces}, logger),
			Cache:     store,
			Combat:    coord,
			Campaigns: campaigns,
			Market:    market,
			Webhook:   poster,
			Logger:    logger,
			Now:       func() time.Time { return time.Date(2080, 4, 1, 12, 0, 0, 0, time.UTC) },
		},
		store:     store,
		campaigns: campaigns,
		market:    market,
		poster:    poster,
		combat:    coord,
	}
}

// newRunner returns a character with enough attributes to exercise every
// variant.
func newRunner() *character.Character {
	return &character.Character{
		ID:           "char-1",
		Handle:       "Slamm-0",
		CampaignID:   "camp-1",
		Body:         4,
		Agility:      5,
		Reaction:     4,
		Strength:     3,
		Willpower:    4,
		Logic:        3,
		Intuition:    4,
		Charisma:     5,
		Magic:        4,
		Edge:         5,
		EdgeCurrent:  3,
		Soak:         9,
		SocialLimit:  6,
		Negotiation:  4,
		Spellcasting: 5,
		Spells: []character.Spell{
			{ID: "fireball", Name: "Fireball", Drain: "F-1"},
			{ID: "heal", Name: "Heal", Drain: "F-4"},
		},
	}
}

func reqFor(c *character.Character, args ...string) Request {
	return Request{Character: c, CampaignID: "camp-1", Args: args}
}
