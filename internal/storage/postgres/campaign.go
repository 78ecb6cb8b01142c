package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hexcrawl/internal/game/campaign"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
)

// CampaignRepository provides campaign persistence operations.
type CampaignRepository struct {
	db *pgxpool.Pool
}

// NewCampaignRepository creates a CampaignRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the schema in
// Migrations applied.
func NewCampaignRepository(db *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Save upserts the campaign row and replaces its tiles in one transaction.
//
// Precondition: c.ID != uuid.Nil.
// Postcondition: A later Load(c.ID) returns c's map, party and clock.
func (r *CampaignRepository) Save(ctx context.Context, c *campaign.Campaign) error {
	if c.ID == uuid.Nil {
		return errors.New("postgres store: campaign id must be set")
	}
	partyJSON, err := json.Marshal(c.Party)
	if err != nil {
		return fmt.Errorf("encoding party: %w", err)
	}
	rows := make([][]any, 0, len(c.Map.Tiles))
	for i, rec := range c.Map.Tiles {
		if rec.Q == nil || rec.R == nil {
			return fmt.Errorf("tile %d: %w", i, grid.ErrMissingCoordinate)
		}
		biome := ""
		if rec.Biome != nil {
			biome = *rec.Biome
		}
		var data []byte
		if len(rec.Data) > 0 {
			if data, err = json.Marshal(rec.Data); err != nil {
				return fmt.Errorf("tile %d data: %w", i, err)
			}
		}
		trails := rec.Trails
		if trails == nil {
			trails = []string{}
		}
		rows = append(rows, []any{c.ID, *rec.Q, *rec.R, biome, rec.Elevation, trails, data})
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO campaigns (id, name, saved_at, time_days, party)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET
			     name = EXCLUDED.name,
			     saved_at = EXCLUDED.saved_at,
			     time_days = EXCLUDED.time_days,
			     party = EXCLUDED.party`,
			c.ID, c.Name, c.SavedAt, c.TimeDays, partyJSON,
		); err != nil {
			return fmt.Errorf("upserting campaign: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM campaign_tiles WHERE campaign_id = $1`, c.ID); err != nil {
			return fmt.Errorf("clearing tiles: %w", err)
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"campaign_tiles"},
			[]string{"campaign_id", "q", "r", "biome", "elevation", "trails", "data"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("copying tiles: %w", err)
		}
		return nil
	})
}

// Load returns the campaign with id, tiles ordered by r then q.
//
// Postcondition: Returns an error wrapping campaign.ErrNotFound for an
// unknown id.
func (r *CampaignRepository) Load(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	c := &campaign.Campaign{ID: id}
	var partyJSON []byte
	err := r.db.QueryRow(ctx,
		`SELECT name, saved_at, time_days, party FROM campaigns WHERE id = $1`, id,
	).Scan(&c.Name, &c.SavedAt, &c.TimeDays, &partyJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", campaign.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading campaign %s: %w", id, err)
	}
	if err := json.Unmarshal(partyJSON, &c.Party); err != nil {
		return nil, fmt.Errorf("decoding party of %s: %w", id, err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT q, r, biome, elevation, trails, data FROM campaign_tiles
		 WHERE campaign_id = $1 ORDER BY r, q`, id)
	if err != nil {
		return nil, fmt.Errorf("loading tiles of %s: %w", id, err)
	}
	defer rows.Close()

	c.Map.Tiles = []grid.TileRecord{}
	for rows.Next() {
		var (
			q, rr, elevation int
			biome            string
			trails           []string
			data             []byte
		)
		if err := rows.Scan(&q, &rr, &biome, &elevation, &trails, &data); err != nil {
			return nil, fmt.Errorf("scanning tile of %s: %w", id, err)
		}
		rec := grid.TileRecord{Q: &q, R: &rr, Biome: &biome, Elevation: elevation, Trails: trails}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &rec.Data); err != nil {
				return nil, fmt.Errorf("decoding tile data of %s: %w", id, err)
			}
		}
		c.Map.Tiles = append(c.Map.Tiles, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tiles of %s: %w", id, err)
	}
	c.SavedAt = c.SavedAt.UTC()
	return c, nil
}

// List returns every campaign, most recently saved first.
func (r *CampaignRepository) List(ctx context.Context) ([]campaign.Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.name, c.saved_at,
		        (SELECT COUNT(*) FROM campaign_tiles t WHERE t.campaign_id = c.id)
		 FROM campaigns c ORDER BY c.saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	var out []campaign.Summary
	for rows.Next() {
		var s campaign.Summary
		var tiles int64
		if err := rows.Scan(&s.ID, &s.Name, &s.SavedAt, &tiles); err != nil {
			return nil, fmt.Errorf("scanning campaign: %w", err)
		}
		s.SavedAt = s.SavedAt.UTC()
		s.Tiles = int(tiles)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Store is a campaign.Store that owns its connection pool.
type Store struct {
	*CampaignRepository
	pool *Pool
}

var _ campaign.Store = (*Store)(nil)

// NewStore wraps pool. Closing the store closes the pool.
func NewStore(pool *Pool) *Store {
	return &Store{CampaignRepository: NewCampaignRepository(pool.DB()), pool: pool}
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
