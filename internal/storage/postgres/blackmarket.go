package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commlink/rollbot/internal/game/campaign"
)

// MarketRepository persists black-market searches. It implements
// campaign.MarketStore.
type MarketRepository struct {
	db *pgxpool.Pool
}

// NewMarketRepository creates a MarketRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMarketRepository(db *pgxpool.Pool) *MarketRepository {
	return &MarketRepository{db: db}
}

const searchColumns = `id, character_id, item, total, grease, availability,
	 search_date, deliver_on, retry_after`

// Create opens a new search for a character.
func (r *MarketRepository) Create(ctx context.Context, s *campaign.MarketSearch) (*campaign.MarketSearch, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO black_market_searches
		 (id, character_id, item, total, grease, availability, search_date, deliver_on, retry_after)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.CharacterID, s.Item, s.Total, s.Grease, s.Availability,
		s.SearchDate, s.DeliverOn, s.RetryAfter,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting search: %w", err)
	}
	return s, nil
}

// OpenSearch returns the search to negotiate: the index'th search (in
// creation order) when index is non-nil, otherwise the first search that has
// not been rolled.
//
// Postcondition: campaign.ErrNotFound when the index is out of range;
// campaign.ErrNoOpenSearch when every search has been rolled.
func (r *MarketRepository) OpenSearch(ctx context.Context, characterID string, index *int) (*campaign.MarketSearch, error) {
	if index != nil {
		row := r.db.QueryRow(ctx,
			`SELECT `+searchColumns+` FROM black_market_searches
			 WHERE character_id = $1
			 ORDER BY created_at OFFSET $2 LIMIT 1`,
			characterID, *index)
		s, err := scanSearch(row)
		if errors.Is(err, campaign.ErrNoOpenSearch) {
			return nil, campaign.ErrNotFound
		}
		return s, err
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+searchColumns+` FROM black_market_searches
		 WHERE character_id = $1 AND deliver_on IS NULL AND retry_after IS NULL
		 ORDER BY created_at LIMIT 1`,
		characterID)
	return scanSearch(row)
}

// SaveResult persists the DeliverOn/RetryAfter outcome of a negotiation.
// A successful retry clears the previous lockout.
func (r *MarketRepository) SaveResult(ctx context.Context, s *campaign.MarketSearch) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE black_market_searches
		 SET deliver_on = $1, retry_after = $2 WHERE id = $3`,
		s.DeliverOn, s.RetryAfter, s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating search: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

// CancelFirstOpen deletes the first un-rolled search and returns it.
//
// Postcondition: campaign.ErrNoOpenSearch when nothing can be cancelled.
func (r *MarketRepository) CancelFirstOpen(ctx context.Context, characterID string) (*campaign.MarketSearch, error) {
	row := r.db.QueryRow(ctx,
		`DELETE FROM black_market_searches
		 WHERE id = (
		     SELECT id FROM black_market_searches
		     WHERE character_id = $1 AND deliver_on IS NULL AND retry_after IS NULL
		     ORDER BY created_at LIMIT 1
		 )
		 RETURNING `+searchColumns,
		characterID)
	return scanSearch(row)
}

func scanSearch(row pgx.Row) (*campaign.MarketSearch, error) {
	var s campaign.MarketSearch
	err := row.Scan(
		&s.ID, &s.CharacterID, &s.Item, &s.Total, &s.Grease, &s.Availability,
		&s.SearchDate, &s.DeliverOn, &s.RetryAfter,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, campaign.ErrNoOpenSearch
	}
	if err != nil {
		return nil, fmt.Errorf("scanning search: %w", err)
	}
	return &s, nil
}
