package roll

import (
	"context"
)

// CampaignInfo renders the campaign's metadata card: name, in-game date, the
// requester's handle, and the GM's notes.
type CampaignInfo struct {
	env Env
	req Request
}

// NewCampaignInfo builds the campaign info command.
func NewCampaignInfo(env Env, req Request) (*CampaignInfo, error) {
	return &CampaignInfo{env: env, req: req}, nil
}

// Execute loads the campaign and renders its card.
func (v *CampaignInfo) Execute(ctx context.Context) (Result, error) {
	camp, err := v.env.Campaigns.GetCampaign(ctx, v.req.CampaignID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Title: camp.Name,
		Fields: []Field{
			{Title: "Date", Value: camp.Today().Format("Monday, January 2, 2006"), Short: true},
			{Title: "Handle", Value: v.req.Character.Handle, Short: true},
			{Title: "Notes", Value: camp.Notes, Short: false},
		},
	}, nil
}
