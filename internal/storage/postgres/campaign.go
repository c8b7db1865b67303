package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commlink/rollbot/internal/game/campaign"
)

// CampaignRepository provides campaign persistence operations. It implements
// campaign.Store.
type CampaignRepository struct {
	db *pgxpool.Pool
}

// NewCampaignRepository creates a CampaignRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCampaignRepository(db *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `id, name, type, webhook_url, team_id, channel_id,
	 start_date, in_game_date, notes`

// Create inserts a new campaign bound to a chat conversation.
//
// Postcondition: Returns the campaign with its generated ID set.
func (r *CampaignRepository) Create(ctx context.Context, c *campaign.Campaign) (*campaign.Campaign, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO campaigns
		 (id, name, type, webhook_url, team_id, channel_id, start_date, in_game_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.Type, c.WebhookURL, c.Team, c.Channel,
		c.StartDate, c.CurrentDate, c.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting campaign: %w", err)
	}
	return c, nil
}

// GetCampaign retrieves a campaign by ID.
//
// Postcondition: Returns the campaign or campaign.ErrNotFound.
func (r *CampaignRepository) GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	return scanCampaign(row)
}

// FindByChannel resolves the campaign bound to a team+channel pair, either
// a Slack team + channel or a Discord guild + channel.
//
// Postcondition: Returns the campaign or campaign.ErrNotFound.
func (r *CampaignRepository) FindByChannel(ctx context.Context, teamID, channelID string) (*campaign.Campaign, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns
		 WHERE team_id = $1 AND channel_id = $2`,
		teamID, channelID)
	return scanCampaign(row)
}

// SetCurrentDate advances the campaign's in-game calendar.
//
// Postcondition: campaign.ErrNotFound when no such campaign exists.
func (r *CampaignRepository) SetCurrentDate(ctx context.Context, id string, date time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE campaigns SET in_game_date = $1 WHERE id = $2`, date, id)
	if err != nil {
		return fmt.Errorf("updating campaign date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

// RegisterCharacter adds a character handle to the campaign roster.
//
// Postcondition: Registration order is preserved for ListHandles.
func (r *CampaignRepository) RegisterCharacter(ctx context.Context, campaignID, characterID, handle string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO campaign_characters (campaign_id, character_id, handle)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (campaign_id, character_id) DO UPDATE SET handle = $3`,
		campaignID, characterID, handle,
	)
	if err != nil {
		return fmt.Errorf("registering character: %w", err)
	}
	return nil
}

// ListHandles returns the handles of all characters registered to the
// campaign, in registration order.
func (r *CampaignRepository) ListHandles(ctx context.Context, campaignID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT handle FROM campaign_characters
		 WHERE campaign_id = $1 ORDER BY registered_at, handle`,
		campaignID)
	if err != nil {
		return nil, fmt.Errorf("querying campaign characters: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scanning handle: %w", err)
		}
		handles = append(handles, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaign characters: %w", err)
	}
	return handles, nil
}

func scanCampaign(row pgx.Row) (*campaign.Campaign, error) {
	var c campaign.Campaign
	err := row.Scan(
		&c.ID, &c.Name, &c.Type, &c.WebhookURL, &c.Team, &c.Channel,
		&c.StartDate, &c.CurrentDate, &c.Notes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}
	return &c, nil
}
