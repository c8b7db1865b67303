package roll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commlink/rollbot/internal/game/campaign"
)

func TestCampaignInfo(t *testing.T) {
	te := newTestEnv()
	te.campaigns.campaigns["camp-1"] = &campaign.Campaign{
		ID:        "camp-1",
		Name:      "Neon Shadows",
		StartDate: time.Date(2080, 4, 1, 0, 0, 0, 0, time.UTC),
		Notes:     "Johnson pays on delivery.",
	}

	v, err := NewCampaignInfo(te.env, reqFor(newRunner()))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Neon Shadows", res.Title)
	require.Len(t, res.Fields, 3)
	assert.Equal(t, "Monday, April 1, 2080", res.Fields[0].Value)
	assert.Equal(t, "Slamm-0", res.Fields[1].Value)
	assert.Equal(t, "Johnson pays on delivery.", res.Fields[2].Value)
}

func TestCampaignInfoUsesCurrentDate(t *testing.T) {
	te := newTestEnv()
	current := time.Date(2080, 6, 15, 0, 0, 0, 0, time.UTC)
	te.campaigns.campaigns["camp-1"] = &campaign.Campaign{
		ID:          "camp-1",
		Name:        "Neon Shadows",
		StartDate:   time.Date(2080, 4, 1, 0, 0, 0, 0, time.UTC),
		CurrentDate: &current,
	}

	v, err := NewCampaignInfo(te.env, reqFor(newRunner()))
	require.NoError(t, err)

	res, err := v.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Saturday, June 15, 2080", res.Fields[0].Value)
}

func TestCampaignInfoMissingCampaign(t *testing.T) {
	te := newTestEnv()
	v, err := NewCampaignInfo(te.env, reqFor(newRunner()))
	require.NoError(t, err)

	_, err = v.Execute(context.Background())
	assert.ErrorIs(t, err, campaign.ErrNotFound)
}
