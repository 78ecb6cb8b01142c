// Package sqlite stores campaigns in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/hexcrawl/internal/game/campaign"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/party"
)

// DB is a campaign.Store backed by SQLite.
type DB struct {
	conn   *sqlx.DB
	logger *zap.Logger
}

var _ campaign.Store = (*DB)(nil)

// Open opens or creates the database at path and ensures the schema exists.
// The path ":memory:" gives a private in-memory database.
func Open(path string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// An in-memory database lives in one connection.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, logger: logger}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS campaigns (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		saved_at INTEGER NOT NULL,
		time_days REAL NOT NULL,
		party_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiles (
		campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		biome TEXT NOT NULL,
		elevation INTEGER NOT NULL,
		trails_json TEXT NOT NULL,
		data_json TEXT,
		PRIMARY KEY (campaign_id, q, r)
	);

	CREATE INDEX IF NOT EXISTS idx_campaigns_saved_at ON campaigns(saved_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type campaignRow struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	SavedAt   int64   `db:"saved_at"`
	TimeDays  float64 `db:"time_days"`
	PartyJSON string  `db:"party_json"`
}

type tileRow struct {
	Q          int            `db:"q"`
	R          int            `db:"r"`
	Biome      string         `db:"biome"`
	Elevation  int            `db:"elevation"`
	TrailsJSON string         `db:"trails_json"`
	DataJSON   sql.NullString `db:"data_json"`
}

type summaryRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	SavedAt int64  `db:"saved_at"`
	Tiles   int    `db:"tiles"`
}

// Save writes c, fully replacing its tiles, in one transaction.
func (db *DB) Save(ctx context.Context, c *campaign.Campaign) error {
	if c.ID == uuid.Nil {
		return errors.New("sqlite store: campaign id must be set")
	}
	partyJSON, err := json.Marshal(c.Party)
	if err != nil {
		return fmt.Errorf("encoding party: %w", err)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := c.ID.String()
	if _, err := tx.ExecContext(ctx, `INSERT INTO campaigns (id, name, saved_at, time_days, party_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			saved_at = excluded.saved_at,
			time_days = excluded.time_days,
			party_json = excluded.party_json`,
		id, c.Name, c.SavedAt.UnixNano(), c.TimeDays, string(partyJSON)); err != nil {
		return fmt.Errorf("upserting campaign: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tiles WHERE campaign_id = ?", id); err != nil {
		return fmt.Errorf("clearing tiles: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO tiles
		(campaign_id, q, r, biome, elevation, trails_json, data_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range c.Map.Tiles {
		if rec.Q == nil || rec.R == nil {
			return fmt.Errorf("tile %d: %w", i, grid.ErrMissingCoordinate)
		}
		biome := ""
		if rec.Biome != nil {
			biome = *rec.Biome
		}
		trailsJSON, err := json.Marshal(rec.Trails)
		if err != nil {
			return fmt.Errorf("tile %d trails: %w", i, err)
		}
		var data sql.NullString
		if len(rec.Data) > 0 {
			b, err := json.Marshal(rec.Data)
			if err != nil {
				return fmt.Errorf("tile %d data: %w", i, err)
			}
			data = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, *rec.Q, *rec.R, biome, rec.Elevation, string(trailsJSON), data); err != nil {
			return fmt.Errorf("inserting tile %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	db.logger.Debug("campaign saved", zap.String("id", id), zap.Int("tiles", len(c.Map.Tiles)))
	return nil
}

// Load returns the campaign with id; tiles come back ordered by r then q.
func (db *DB) Load(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	var row campaignRow
	err := db.conn.GetContext(ctx, &row,
		"SELECT id, name, saved_at, time_days, party_json FROM campaigns WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", campaign.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading campaign %s: %w", id, err)
	}

	var p party.Record
	if err := json.Unmarshal([]byte(row.PartyJSON), &p); err != nil {
		return nil, fmt.Errorf("decoding party of %s: %w", id, err)
	}

	var tiles []tileRow
	if err := db.conn.SelectContext(ctx, &tiles,
		`SELECT q, r, biome, elevation, trails_json, data_json FROM tiles
		 WHERE campaign_id = ? ORDER BY r, q`, id.String()); err != nil {
		return nil, fmt.Errorf("loading tiles of %s: %w", id, err)
	}

	doc := grid.Document{Tiles: make([]grid.TileRecord, 0, len(tiles))}
	for _, t := range tiles {
		rec, err := t.record()
		if err != nil {
			return nil, fmt.Errorf("campaign %s tile (%d,%d): %w", id, t.Q, t.R, err)
		}
		doc.Tiles = append(doc.Tiles, rec)
	}

	return &campaign.Campaign{
		ID:       id,
		Name:     row.Name,
		SavedAt:  time.Unix(0, row.SavedAt).UTC(),
		Map:      doc,
		Party:    p,
		TimeDays: row.TimeDays,
	}, nil
}

func (t tileRow) record() (grid.TileRecord, error) {
	q, r, biome := t.Q, t.R, t.Biome
	rec := grid.TileRecord{Q: &q, R: &r, Biome: &biome, Elevation: t.Elevation}
	if err := json.Unmarshal([]byte(t.TrailsJSON), &rec.Trails); err != nil {
		return rec, fmt.Errorf("decoding trails: %w", err)
	}
	if t.DataJSON.Valid {
		if err := json.Unmarshal([]byte(t.DataJSON.String), &rec.Data); err != nil {
			return rec, fmt.Errorf("decoding data: %w", err)
		}
	}
	return rec, nil
}

// List returns every campaign, newest first.
func (db *DB) List(ctx context.Context) ([]campaign.Summary, error) {
	var rows []summaryRow
	if err := db.conn.SelectContext(ctx, &rows,
		`SELECT c.id, c.name, c.saved_at,
			(SELECT COUNT(*) FROM tiles t WHERE t.campaign_id = c.id) AS tiles
		 FROM campaigns c ORDER BY c.saved_at DESC`); err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	out := make([]campaign.Summary, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			db.logger.Warn("skipping campaign with bad id", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		out = append(out, campaign.Summary{ID: id, Name: r.Name, SavedAt: time.Unix(0, r.SavedAt).UTC(), Tiles: r.Tiles})
	}
	return out, nil
}
