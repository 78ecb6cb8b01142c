// Package campaign defines the saved-game record and the store contract
// implemented by the storage backends.
package campaign

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/party"
)

// ErrNotFound is returned by Store.Load for an unknown campaign id.
var ErrNotFound = errors.New("campaign not found")

// Campaign is everything needed to resume a session: the map, the party and
// the world clock.
type Campaign struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	SavedAt  time.Time     `json:"saved_at"`
	Map      grid.Document `json:"map"`
	Party    party.Record  `json:"party"`
	TimeDays float64       `json:"time_days"`
}

// Summary describes a stored campaign without its map.
type Summary struct {
	ID      uuid.UUID
	Name    string
	SavedAt time.Time
	Tiles   int
}

// Summary returns the listing entry for c.
func (c *Campaign) Summary() Summary {
	return Summary{ID: c.ID, Name: c.Name, SavedAt: c.SavedAt, Tiles: len(c.Map.Tiles)}
}

// Store persists campaigns.
type Store interface {
	// Save inserts or fully replaces the campaign with c.ID.
	//
	// Precondition: c.ID != uuid.Nil.
	Save(ctx context.Context, c *Campaign) error
	// Load returns the campaign with id, or an error wrapping ErrNotFound.
	Load(ctx context.Context, id uuid.UUID) (*Campaign, error)
	// List returns every stored campaign, most recently saved first.
	List(ctx context.Context) ([]Summary, error)
	Close() error
}
