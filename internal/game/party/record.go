package party

import (
	"fmt"

	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
)

// Record is the persisted party format.
type Record struct {
	Position    [2]int         `json:"position" yaml:"position"`
	LeaderIndex int            `json:"leader_index" yaml:"leader_index"`
	Members     []MemberRecord `json:"members" yaml:"members"`
}

// MemberRecord is the persisted form of a Member. MaxTokens is derived and
// written for readers only; it is ignored on load.
type MemberRecord struct {
	Name       string   `json:"name" yaml:"name"`
	Speed      int      `json:"speed" yaml:"speed"`
	Con        int      `json:"con" yaml:"con"`
	MaxTokens  int      `json:"max_tokens" yaml:"max_tokens"`
	Tokens     *float64 `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Exhaustion float64  `json:"exhaustion" yaml:"exhaustion"`
}

// ToRecord returns the persisted form of p.
func (p *Party) ToRecord() Record {
	rec := Record{
		Position:    [2]int{p.Position.Q, p.Position.R},
		LeaderIndex: p.LeaderIndex,
		Members:     make([]MemberRecord, len(p.Members)),
	}
	for i, m := range p.Members {
		tokens := m.Tokens
		rec.Members[i] = MemberRecord{
			Name:       m.Name,
			Speed:      m.Speed,
			Con:        m.Con,
			MaxTokens:  m.MaxTokens(),
			Tokens:     &tokens,
			Exhaustion: m.Exhaustion,
		}
	}
	return rec
}

// FromRecord rebuilds a party. Members without a tokens value start rested.
//
// Postcondition: Returns an error for an empty member list, an unnamed
// member, or a leader index out of range.
func FromRecord(rec Record) (*Party, error) {
	members := make([]*Member, 0, len(rec.Members))
	for i, mr := range rec.Members {
		m, err := NewMember(mr.Name, mr.Speed, mr.Con)
		if err != nil {
			return nil, fmt.Errorf("party member %d: %w", i, err)
		}
		if mr.Tokens != nil {
			m.Tokens = *mr.Tokens
		}
		m.Exhaustion = mr.Exhaustion
		members = append(members, m)
	}
	p, err := New(members)
	if err != nil {
		return nil, err
	}
	if err := p.SetLeader(rec.LeaderIndex); err != nil {
		return nil, err
	}
	p.Position = hexmath.Coord{Q: rec.Position[0], R: rec.Position[1]}
	return p, nil
}
