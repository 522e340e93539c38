package domain

import (
	"fmt"
	"strings"
)

// Suit classifies a tile within the American Mahjong (NMJL) set.
type Suit int32

const (
	SuitNone Suit = iota
	// SuitCrak, SuitBam and SuitDot are the three numbered suits, in the
	// order used for "first/second/third" suit-role binding.
	SuitCrak
	SuitBam
	SuitDot
	SuitWind
	SuitDragon
	SuitFlower
	SuitJoker
)

// Wind ranks in NMJL seating order.
const (
	WindNorth int32 = iota + 1
	WindEast
	WindWest
	WindSouth
)

// Dragon ranks. Each dragon pairs with a numbered suit: red with craks,
// green with bams, soap (white) with dots.
const (
	DragonRed int32 = iota + 1
	DragonGreen
	DragonSoap
)

// Tile is an immutable tile value. Rank is 1-9 for numbered suits, a wind or
// dragon constant for honors, 1-8 for the distinct flowers and 0 for jokers.
type Tile struct {
	Suit Suit
	Rank int32
}

// NumberedSuits lists the three numbered suits in first/second/third order.
var NumberedSuits = [3]Suit{SuitCrak, SuitBam, SuitDot}

// JokerTile is the single joker identity; all eight jokers are identical.
var JokerTile = Tile{Suit: SuitJoker}

// IsNumbered reports whether the tile belongs to one of the three numbered suits.
func (t Tile) IsNumbered() bool {
	return t.Suit == SuitCrak || t.Suit == SuitBam || t.Suit == SuitDot
}

// IsJoker reports whether the tile is a joker.
func (t Tile) IsJoker() bool {
	return t.Suit == SuitJoker
}

// IsFlower reports whether the tile is a flower.
func (t Tile) IsFlower() bool {
	return t.Suit == SuitFlower
}

// IsHonor reports whether the tile is a wind or dragon.
func (t Tile) IsHonor() bool {
	return t.Suit == SuitWind || t.Suit == SuitDragon
}

// IsTerminal reports whether the tile is a 1 or 9 of a numbered suit.
func (t Tile) IsTerminal() bool {
	return t.IsNumbered() && (t.Rank == 1 || t.Rank == 9)
}

// DragonForSuit returns the dragon tile associated with a numbered suit.
func DragonForSuit(s Suit) Tile {
	switch s {
	case SuitCrak:
		return Tile{Suit: SuitDragon, Rank: DragonRed}
	case SuitBam:
		return Tile{Suit: SuitDragon, Rank: DragonGreen}
	default:
		return Tile{Suit: SuitDragon, Rank: DragonSoap}
	}
}

// OriginalTileCount returns how many copies of the tile exist in a full set:
// eight jokers, one of each distinct flower, four of everything else.
func OriginalTileCount(t Tile) int {
	switch t.Suit {
	case SuitJoker:
		return 8
	case SuitFlower:
		return 1
	default:
		return 4
	}
}

// FullTileSet returns the complete 152-tile population in a fixed order.
func FullTileSet() []Tile {
	tiles := make([]Tile, 0, WallCapacity)
	for _, s := range NumberedSuits {
		for r := int32(1); r <= 9; r++ {
			for i := 0; i < 4; i++ {
				tiles = append(tiles, Tile{Suit: s, Rank: r})
			}
		}
	}
	for r := WindNorth; r <= WindSouth; r++ {
		for i := 0; i < 4; i++ {
			tiles = append(tiles, Tile{Suit: SuitWind, Rank: r})
		}
	}
	for r := DragonRed; r <= DragonSoap; r++ {
		for i := 0; i < 4; i++ {
			tiles = append(tiles, Tile{Suit: SuitDragon, Rank: r})
		}
	}
	for r := int32(1); r <= 8; r++ {
		tiles = append(tiles, Tile{Suit: SuitFlower, Rank: r})
	}
	for i := 0; i < 8; i++ {
		tiles = append(tiles, JokerTile)
	}
	return tiles
}

var windNames = map[int32]string{WindNorth: "N", WindEast: "E", WindWest: "W", WindSouth: "S"}
var dragonNames = map[int32]string{DragonRed: "RD", DragonGreen: "GD", DragonSoap: "SD"}

// String renders a compact tile id like "3B", "N", "RD", "F2" or "J".
func (t Tile) String() string {
	switch t.Suit {
	case SuitCrak:
		return fmt.Sprintf("%dC", t.Rank)
	case SuitBam:
		return fmt.Sprintf("%dB", t.Rank)
	case SuitDot:
		return fmt.Sprintf("%dD", t.Rank)
	case SuitWind:
		return windNames[t.Rank]
	case SuitDragon:
		return dragonNames[t.Rank]
	case SuitFlower:
		return fmt.Sprintf("F%d", t.Rank)
	case SuitJoker:
		return "J"
	default:
		return "?"
	}
}

// ParseTile parses the compact id format produced by Tile.String.
func ParseTile(s string) (Tile, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "J":
		return JokerTile, nil
	case "N", "E", "W", "S":
		for rank, name := range windNames {
			if name == s {
				return Tile{Suit: SuitWind, Rank: rank}, nil
			}
		}
	case "RD", "GD", "SD":
		for rank, name := range dragonNames {
			if name == s {
				return Tile{Suit: SuitDragon, Rank: rank}, nil
			}
		}
	}
	if len(s) == 2 {
		rank := int32(s[0] - '0')
		if s[0] == 'F' {
			rank = int32(s[1] - '0')
			if rank >= 1 && rank <= 8 {
				return Tile{Suit: SuitFlower, Rank: rank}, nil
			}
			return Tile{}, fmt.Errorf("invalid flower id %q", s)
		}
		if rank >= 1 && rank <= 9 {
			switch s[1] {
			case 'C':
				return Tile{Suit: SuitCrak, Rank: rank}, nil
			case 'B':
				return Tile{Suit: SuitBam, Rank: rank}, nil
			case 'D':
				return Tile{Suit: SuitDot, Rank: rank}, nil
			}
		}
	}
	return Tile{}, fmt.Errorf("invalid tile id %q", s)
}

// ParseTiles parses a whitespace-separated list of tile ids.
func ParseTiles(s string) ([]Tile, error) {
	fields := strings.Fields(s)
	tiles := make([]Tile, 0, len(fields))
	for _, f := range fields {
		t, err := ParseTile(f)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, t)
	}
	return tiles, nil
}

// TilesString renders a slice of tiles as space-separated ids.
func TilesString(tiles []Tile) string {
	names := make([]string, len(tiles))
	for i, t := range tiles {
		names[i] = t.String()
	}
	return strings.Join(names, " ")
}
