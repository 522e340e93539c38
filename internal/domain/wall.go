package domain

import (
	"errors"
	"math/rand"
	"time"
)

// WallCapacity is the fixed tile population for the NMJL set.
const WallCapacity = 152

// HandSize is the number of tiles dealt to each player.
const HandSize = 13

// ErrNoTiles is returned by Draw when the wall has been emptied.
var ErrNoTiles = errors.New("No tiles available")

// Wall owns the shared undealt tile pool. Invariant: TilesRemaining +
// TotalDealt == WallCapacity for every reachable state.
type Wall struct {
	tiles      []Tile
	totalDealt int
}

// NewWall builds a full 152-tile wall shuffled with the supplied rng, or a
// time-seeded rng when nil. Passing a fixed-seed rng makes deals deterministic.
func NewWall(rng *rand.Rand) *Wall {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	tiles := FullTileSet()
	// Fisher-Yates.
	rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })
	return &Wall{tiles: tiles}
}

// TilesRemaining returns how many tiles are still in the wall.
func (w *Wall) TilesRemaining() int {
	return len(w.tiles)
}

// TotalDealt returns how many tiles have left the wall.
func (w *Wall) TotalDealt() int {
	return w.totalDealt
}

// IsExhausted reports whether the wall is empty.
func (w *Wall) IsExhausted() bool {
	return len(w.tiles) == 0
}

// Draw removes and returns exactly one tile, or ErrNoTiles on an empty wall.
func (w *Wall) Draw() (Tile, error) {
	if len(w.tiles) == 0 {
		return Tile{}, ErrNoTiles
	}
	t := w.tiles[0]
	w.tiles = w.tiles[1:]
	w.totalDealt++
	return t, nil
}

// Deal removes n tiles from the wall, or ErrNoTiles if fewer remain.
func (w *Wall) Deal(n int) ([]Tile, error) {
	if len(w.tiles) < n {
		return nil, ErrNoTiles
	}
	out := make([]Tile, n)
	copy(out, w.tiles[:n])
	w.tiles = w.tiles[n:]
	w.totalDealt += n
	return out, nil
}

// IsWallExhausted is a pure what-if predicate: it reports whether drawing n
// tiles total would exceed the fixed wall capacity. It never touches state.
func IsWallExhausted(n int) bool {
	return n > WallCapacity
}
