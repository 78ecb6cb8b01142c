package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/game/campaign"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/party"
)

// campaignRef remembers which stored campaign the session came from so that
// later saves overwrite it.
type campaignRef struct {
	id   uuid.UUID
	name string
}

// Snapshot captures the session as a campaign record. The first snapshot
// allocates a new id; later ones reuse it unless name changes.
//
// Precondition: no stroke is open.
func (s *Session) Snapshot(name string) *campaign.Campaign {
	if name == "" {
		name = s.campaign.name
	}
	if s.campaign.id == uuid.Nil || name != s.campaign.name {
		s.campaign = campaignRef{id: uuid.New(), name: name}
	}
	return &campaign.Campaign{
		ID:       s.campaign.id,
		Name:     name,
		SavedAt:  time.Now().UTC(),
		Map:      s.grid.ToDocument(),
		Party:    s.party.ToRecord(),
		TimeDays: s.engine.Time(),
	}
}

// Restore replaces the grid, party and clock with those of c. History is
// cleared. On error the session is unchanged.
func (s *Session) Restore(c *campaign.Campaign) error {
	g, err := grid.FromDocument(c.Map, grid.DecodeOptions{DefaultBiome: s.defaultBiome})
	if err != nil {
		return fmt.Errorf("restoring campaign %s map: %w", c.ID, err)
	}
	if err := g.Validate(s.catalogs.Biomes, s.catalogs.Trails); err != nil {
		return fmt.Errorf("restoring campaign %s map: %w", c.ID, err)
	}
	p, err := party.FromRecord(c.Party)
	if err != nil {
		return fmt.Errorf("restoring campaign %s party: %w", c.ID, err)
	}
	s.party = p
	s.ReplaceGrid(g)
	s.engine.SetTime(c.TimeDays)
	s.campaign = campaignRef{id: c.ID, name: c.Name}
	s.logger.Info("campaign restored",
		zap.String("id", c.ID.String()),
		zap.String("name", c.Name),
		zap.Int("tiles", g.Len()),
	)
	return nil
}

// ImportMap replaces the grid with a bare map document, keeping the party
// and clock.
func (s *Session) ImportMap(doc grid.Document) error {
	g, err := grid.FromDocument(doc, grid.DecodeOptions{DefaultBiome: s.defaultBiome})
	if err != nil {
		return fmt.Errorf("importing map: %w", err)
	}
	if err := g.Validate(s.catalogs.Biomes, s.catalogs.Trails); err != nil {
		return fmt.Errorf("importing map: %w", err)
	}
	s.ReplaceGrid(g)
	return nil
}
