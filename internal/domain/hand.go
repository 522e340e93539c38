package domain

// MeldKind is the exposure arity: pung 3, kong 4, quint 5.
type MeldKind string

const (
	MeldPung  MeldKind = "pung"
	MeldKong  MeldKind = "kong"
	MeldQuint MeldKind = "quint"
)

// MeldSize returns the number of tiles a meld kind exposes.
func MeldSize(kind MeldKind) int {
	switch kind {
	case MeldKong:
		return 4
	case MeldQuint:
		return 5
	default:
		return 3
	}
}

// Meld is an exposed set of identical tiles. Jokers records how many of the
// exposed copies are jokers standing in for the meld tile.
type Meld struct {
	Kind        MeldKind
	Tile        Tile
	Jokers      int
	ClaimedFrom string // player id the claimed discard came from
}

// Tiles returns the literal tiles on the table for this meld.
func (m Meld) Tiles() []Tile {
	out := make([]Tile, 0, MeldSize(m.Kind))
	for i := 0; i < MeldSize(m.Kind)-m.Jokers; i++ {
		out = append(out, m.Tile)
	}
	for i := 0; i < m.Jokers; i++ {
		out = append(out, JokerTile)
	}
	return out
}

// Hand is a player's tiles: an unordered concealed multiset plus exposed melds.
type Hand struct {
	Concealed []Tile
	Melds     []Meld
}

// Add appends a tile to the concealed multiset.
func (h *Hand) Add(t Tile) {
	h.Concealed = append(h.Concealed, t)
}

// RemoveOne removes a single instance of the tile from the concealed multiset
// and reports whether an instance was present.
func (h *Hand) RemoveOne(t Tile) bool {
	for i, c := range h.Concealed {
		if c == t {
			h.Concealed = append(h.Concealed[:i], h.Concealed[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns how many concealed copies of the tile the hand holds.
func (h *Hand) Count(t Tile) int {
	n := 0
	for _, c := range h.Concealed {
		if c == t {
			n++
		}
	}
	return n
}

// CountJokers returns the number of concealed jokers.
func (h *Hand) CountJokers() int {
	return h.Count(JokerTile)
}

// AllTiles returns concealed tiles plus every exposed meld tile.
func (h *Hand) AllTiles() []Tile {
	out := make([]Tile, 0, len(h.Concealed)+len(h.Melds)*5)
	out = append(out, h.Concealed...)
	for _, m := range h.Melds {
		out = append(out, m.Tiles()...)
	}
	return out
}

// Size returns the total tile count including exposed melds.
func (h *Hand) Size() int {
	n := len(h.Concealed)
	for _, m := range h.Melds {
		n += MeldSize(m.Kind)
	}
	return n
}
