// Package analysis turns game state and pattern matches into the co-pilot's
// recommendations: tile availability, joker planning, priority weights and
// the completion score. Every function here is pure and stateless; results
// are safe to compute in parallel or cache per hand fingerprint.
package analysis

import (
	"mjcopilot/internal/domain"
)

// TileAvailability is the conservative remaining-in-wall estimate for one
// tile id. Concealed opponent hands are unknown and are not subtracted, so
// RemainingInWall is an upper bound.
type TileAvailability struct {
	Tile            domain.Tile
	OriginalCount   int
	InHand          int
	ExposedByOthers int
	InDiscard       int
	RemainingInWall int
}

// CalculateTileAvailability counts the visible copies of a tile and derives
// the remaining-in-wall upper bound, clamped at zero against over-counts.
func CalculateTileAvailability(tile domain.Tile, hand *domain.Hand, exposedByOthers []domain.Tile, pile *domain.DiscardPile) TileAvailability {
	a := TileAvailability{
		Tile:          tile,
		OriginalCount: domain.OriginalTileCount(tile),
	}

	if hand != nil {
		for _, t := range hand.AllTiles() {
			if t == tile {
				a.InHand++
			}
		}
	}
	for _, t := range exposedByOthers {
		if t == tile {
			a.ExposedByOthers++
		}
	}
	if pile != nil {
		a.InDiscard = pile.Count(tile)
	}

	remaining := a.OriginalCount - a.InHand - a.ExposedByOthers - a.InDiscard
	if remaining < 0 {
		remaining = 0
	}
	a.RemainingInWall = remaining
	return a
}
