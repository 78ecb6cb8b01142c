// Package events delivers change notifications from the session to whatever
// presentation layer is listening.
package events

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
)

// Event names.
const (
	GridChanged  = "grid_changed"
	PartyMoved   = "party_moved"
	TileChanged  = "tile_changed"
	TrailChanged = "trail_changed"
	TimeAdvanced = "time_advanced"
	Encounter    = "encounter"
	GridReplaced = "grid_replaced"
)

// Event is one notification. Coord and Direction are meaningful only for
// the events that concern a tile or trail.
type Event struct {
	Name      string
	Coord     hexmath.Coord
	Direction hexmath.Direction
	Payload   any
}

// Handler receives events.
type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

// Bus fans events out to subscribers in subscription order. A subscriber
// that panics is logged and skipped; delivery to the others continues.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]subscription
	logger *zap.Logger
}

// NewBus returns an empty bus. A nil logger disables logging.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{subs: make(map[string][]subscription), logger: logger}
}

// Subscribe registers fn for events named name. The returned function
// removes the subscription and may be called more than once.
func (b *Bus) Subscribe(name string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[name]
		for i, s := range list {
			if s.id == id {
				b.subs[name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every subscriber of e.Name.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	list := append([]subscription(nil), b.subs[e.Name]...)
	b.mu.Unlock()
	for _, s := range list {
		b.deliver(s.fn, e)
	}
}

func (b *Bus) deliver(fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("event subscriber panicked",
				zap.String("event", e.Name),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	fn(e)
}
