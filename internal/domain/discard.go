package domain

import "time"

// Discard is one entry in the discard log. ClaimedBy is set when a call takes
// the tile into an exposed meld; the entry stays in the log so the pile only
// ever grows during play.
type Discard struct {
	Tile      Tile
	PlayerID  string
	At        time.Time
	ClaimedBy string
}

// DiscardPile is the time-ordered, append-only log of discarded tiles.
type DiscardPile struct {
	entries []Discard
}

// Add appends a discard to the log.
func (p *DiscardPile) Add(t Tile, playerID string, at time.Time) {
	p.entries = append(p.entries, Discard{Tile: t, PlayerID: playerID, At: at})
}

// Len returns the number of logged discards, claimed or not.
func (p *DiscardPile) Len() int {
	return len(p.entries)
}

// Last returns the most recent entry, or nil for an empty pile.
func (p *DiscardPile) Last() *Discard {
	if len(p.entries) == 0 {
		return nil
	}
	return &p.entries[len(p.entries)-1]
}

// Entries returns the full log in discard order.
func (p *DiscardPile) Entries() []Discard {
	return p.entries
}

// Count returns how many unclaimed copies of the tile sit in the pile.
// Claimed entries are excluded so a called tile is not counted both here and
// in the caller's exposure.
func (p *DiscardPile) Count(t Tile) int {
	n := 0
	for _, e := range p.entries {
		if e.Tile == t && e.ClaimedBy == "" {
			n++
		}
	}
	return n
}

// UnclaimedTiles returns the tiles still sitting in the pile.
func (p *DiscardPile) UnclaimedTiles() []Tile {
	var out []Tile
	for _, e := range p.entries {
		if e.ClaimedBy == "" {
			out = append(out, e.Tile)
		}
	}
	return out
}
