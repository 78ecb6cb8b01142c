// Package edit expresses every map and party mutation as a reversible
// command and keeps the undo/redo history, including drag transactions.
package edit

import (
	"fmt"

	"github.com/cory-johannsen/hexcrawl/internal/game/events"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
	"github.com/cory-johannsen/hexcrawl/internal/game/party"
)

// Target is the state commands mutate.
type Target interface {
	Grid() *grid.Grid
	Party() *party.Party
	Publish(events.Event)
}

// Command is a reversible mutation. Undo must restore exactly the state Do
// found, provided every command executed after it has been undone first.
type Command interface {
	Do(t Target)
	Undo(t Target)
	Name() string
}

// ChangeBiome sets the biome of one tile. An empty Old means the tile did
// not exist, so Undo removes it.
type ChangeBiome struct {
	Coord hexmath.Coord
	Old   string
	New   string
}

// NewChangeBiome captures the current biome at c.
func NewChangeBiome(g *grid.Grid, c hexmath.Coord, biomeID string) *ChangeBiome {
	old, _ := g.BiomeAt(c)
	return &ChangeBiome{Coord: c, Old: old, New: biomeID}
}

// Do sets the new biome, creating the tile if it was missing.
func (c *ChangeBiome) Do(t Target) {
	t.Grid().SetBiome(c.Coord, c.New)
	t.Publish(events.Event{Name: events.TileChanged, Coord: c.Coord})
}

// Undo restores the old biome, or removes a tile Do created.
func (c *ChangeBiome) Undo(t Target) {
	if c.Old == "" {
		t.Grid().Remove(c.Coord)
	} else {
		t.Grid().SetBiome(c.Coord, c.Old)
	}
	t.Publish(events.Event{Name: events.TileChanged, Coord: c.Coord})
}

// Name describes the change for logs.
func (c *ChangeBiome) Name() string {
	return fmt.Sprintf("biome %s %s -> %s", c.Coord, orNone(c.Old), c.New)
}

// SetTrail sets one trail slot and its mirror. OldMirror holds the
// neighbor's previous opposite slot so that Undo restores an asymmetric
// edge exactly; HasNeighbor records whether that neighbor existed.
type SetTrail struct {
	Coord       hexmath.Coord
	Dir         hexmath.Direction
	Old         string
	New         string
	OldMirror   string
	HasNeighbor bool
}

// NewSetTrail captures the current trail state at c in direction d.
//
// Precondition: d.Valid().
func NewSetTrail(g *grid.Grid, c hexmath.Coord, d hexmath.Direction, value string) *SetTrail {
	if value == "" {
		value = grid.NoTrail
	}
	cmd := &SetTrail{Coord: c, Dir: d, New: value}
	cmd.Old, _ = g.Trail(c, d)
	cmd.OldMirror, cmd.HasNeighbor = g.Trail(c.Neighbor(d), d.Opposite())
	return cmd
}

// Do sets the trail and its mirror on the neighboring tile.
func (c *SetTrail) Do(t Target) {
	t.Grid().SetTrail(c.Coord, c.Dir, c.New)
	t.Publish(events.Event{Name: events.TrailChanged, Coord: c.Coord, Direction: c.Dir})
}

// Undo restores both slots exactly as they were captured.
func (c *SetTrail) Undo(t Target) {
	g := t.Grid()
	g.SetTrail(c.Coord, c.Dir, c.Old)
	if c.HasNeighbor {
		if n, ok := g.Get(c.Coord.Neighbor(c.Dir)); ok {
			n.Trails[c.Dir.Opposite()] = c.OldMirror
		}
	}
	t.Publish(events.Event{Name: events.TrailChanged, Coord: c.Coord, Direction: c.Dir})
}

// Name describes the change for logs.
func (c *SetTrail) Name() string {
	return fmt.Sprintf("trail %s %s %s -> %s", c.Coord, c.Dir, c.Old, c.New)
}

// MoveParty changes the party position. Token spending and elapsed time are
// not part of the command and are not undone.
type MoveParty struct {
	From hexmath.Coord
	To   hexmath.Coord
}

// Do places the party on To.
func (c *MoveParty) Do(t Target) {
	t.Party().Position = c.To
	t.Publish(events.Event{Name: events.PartyMoved, Coord: c.To})
}

// Undo places the party back on From.
func (c *MoveParty) Undo(t Target) {
	t.Party().Position = c.From
	t.Publish(events.Event{Name: events.PartyMoved, Coord: c.From})
}

// Name describes the move for logs.
func (c *MoveParty) Name() string {
	return fmt.Sprintf("move %s -> %s", c.From, c.To)
}

// Composite runs its children in order and undoes them in reverse order.
type Composite struct {
	Commands []Command
}

// Do runs every child in order.
func (c *Composite) Do(t Target) {
	for _, cmd := range c.Commands {
		cmd.Do(t)
	}
}

// Undo reverts every child, last first.
func (c *Composite) Undo(t Target) {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		c.Commands[i].Undo(t)
	}
}

// Name reports the number of children.
func (c *Composite) Name() string {
	return fmt.Sprintf("composite of %d", len(c.Commands))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
