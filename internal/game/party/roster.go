package party

import (
	"fmt"

	"github.com/cory-johannsen/hexcrawl/internal/game/catalog"
)

// Roster defaults for columns left blank.
const (
	DefaultSpeed = 30
	DefaultCon   = 10
)

// Entry is one row of a party roster table.
type Entry struct {
	Name  string
	Speed int
	Con   int
}

// FallbackRoster returns the two members used when no roster table exists.
func FallbackRoster() []Entry {
	return []Entry{
		{Name: "Arden", Speed: 30, Con: 14},
		{Name: "Lira", Speed: 25, Con: 12},
	}
}

// LoadRoster reads a roster table of {name, speed, con} rows from a CSV or
// YAML file (top-level key "party"). An empty path or a missing file yields
// FallbackRoster.
//
// Postcondition: Returns at least one entry or a non-nil error.
func LoadRoster(path string) ([]Entry, bool, error) {
	if path == "" {
		return FallbackRoster(), false, nil
	}
	rows, err := catalog.ReadTable(path, "party")
	if err != nil {
		if catalog.IsMissing(err) {
			return FallbackRoster(), false, nil
		}
		return nil, false, fmt.Errorf("loading party roster: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		var e Entry
		if e.Name, err = r.Required("name"); err != nil {
			return nil, false, fmt.Errorf("loading party roster %s: %w", path, err)
		}
		if e.Speed, err = r.Int("speed", DefaultSpeed); err != nil {
			return nil, false, fmt.Errorf("loading party roster %s: %w", path, err)
		}
		if e.Con, err = r.Int("con", DefaultCon); err != nil {
			return nil, false, fmt.Errorf("loading party roster %s: %w", path, err)
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, false, fmt.Errorf("loading party roster %s: %w", path, ErrEmpty)
	}
	return entries, true, nil
}

// FromRoster builds a rested party at the origin from roster entries.
func FromRoster(entries []Entry) (*Party, error) {
	members := make([]*Member, 0, len(entries))
	for _, e := range entries {
		m, err := NewMember(e.Name, e.Speed, e.Con)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return New(members)
}
