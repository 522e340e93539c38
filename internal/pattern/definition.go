// Package pattern models the NMJL card: pattern definitions, their expansion
// into concrete tile variations, and hand matching against them. Everything
// here is pure and safe to share once loaded.
package pattern

import (
	"fmt"

	"mjcopilot/internal/domain"
)

// SuitRole is a pattern group's suit placeholder. Fixed roles bind to the
// same numbered suit in every variation; "any" groups vary per suit
// permutation; "none" groups hold suitless tiles (winds, flowers, jokers).
type SuitRole string

const (
	RoleFirst  SuitRole = "first"
	RoleSecond SuitRole = "second"
	RoleThird  SuitRole = "third"
	RoleAny    SuitRole = "any"
	RoleNone   SuitRole = "none"
)

// GroupKind is the structural constraint of a pattern group.
type GroupKind string

const (
	GroupSingle   GroupKind = "single"
	GroupPair     GroupKind = "pair"
	GroupPung     GroupKind = "pung"
	GroupKong     GroupKind = "kong"
	GroupQuint    GroupKind = "quint"
	GroupSequence GroupKind = "sequence"
)

// Group is one structural element of a pattern definition.
//
// Values is the raw constraint string from the card data: numeral characters
// '1'-'9', the neutral wildcard '0', winds 'N'/'E'/'W'/'S', the suit-matched
// dragon 'D', flowers 'F' and jokers 'J'. Non-sequence groups carry exactly
// one value character; sequences carry one per tile.
type Group struct {
	Name      string    `json:"name,omitempty"`
	Role      SuitRole  `json:"suit_role"`
	Kind      GroupKind `json:"kind"`
	Values    string    `json:"values"`
	MustMatch string    `json:"must_match,omitempty"`
	// Jokers overrides the default joker rule for this group. When absent,
	// jokers are allowed for pung/kong/quint and forbidden elsewhere.
	Jokers *bool `json:"jokers,omitempty"`
}

// TileCount returns how many of the fourteen tiles this group contributes.
func (g Group) TileCount() int {
	switch g.Kind {
	case GroupSingle:
		return 1
	case GroupPair:
		return 2
	case GroupPung:
		return 3
	case GroupKong:
		return 4
	case GroupQuint:
		return 5
	case GroupSequence:
		return len(g.Values)
	}
	return 0
}

// JokerAllowed reports whether jokers may stand in for this group's tiles.
// The NMJL rule is the default: jokers only join groupings of three or more
// identical tiles. Card data may override per group.
func (g Group) JokerAllowed() bool {
	if g.Jokers != nil {
		return *g.Jokers
	}
	switch g.Kind {
	case GroupPung, GroupKong, GroupQuint:
		return true
	default:
		return false
	}
}

// Definition is one scoring pattern from the card.
type Definition struct {
	ID            string  `json:"id"`
	Section       string  `json:"section"`
	Line          int     `json:"line"`
	Description   string  `json:"description"`
	Points        int     `json:"points"`
	ConcealedOnly bool    `json:"concealed_only"`
	Groups        []Group `json:"groups"`
}

// PatternTileCount is the fixed size of every complete hand.
const PatternTileCount = 14

// Validate checks the structural rules every definition must satisfy before
// it can be expanded. Violations are reported as MalformedPattern errors.
func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: missing pattern id", ErrMalformedPattern)
	}
	if len(d.Groups) == 0 {
		return fmt.Errorf("%w: pattern %s has no groups", ErrMalformedPattern, d.ID)
	}

	names := make(map[string]bool, len(d.Groups))
	total := 0
	for i, g := range d.Groups {
		if g.Values == "" {
			return fmt.Errorf("%w: pattern %s group %d has no values", ErrMalformedPattern, d.ID, i)
		}
		if g.Kind != GroupSequence && len(g.Values) != 1 {
			return fmt.Errorf("%w: pattern %s group %d: %s groups take exactly one value", ErrMalformedPattern, d.ID, i, g.Kind)
		}
		switch g.Role {
		case RoleFirst, RoleSecond, RoleThird, RoleAny, RoleNone:
		default:
			return fmt.Errorf("%w: pattern %s group %d has unknown suit role %q", ErrMalformedPattern, d.ID, i, g.Role)
		}
		switch g.Kind {
		case GroupSingle, GroupPair, GroupPung, GroupKong, GroupQuint, GroupSequence:
		default:
			return fmt.Errorf("%w: pattern %s group %d has unknown kind %q", ErrMalformedPattern, d.ID, i, g.Kind)
		}
		for _, c := range g.Values {
			if err := validateValueChar(byte(c), g.Role); err != nil {
				return fmt.Errorf("%w: pattern %s group %d: %v", ErrMalformedPattern, d.ID, i, err)
			}
		}
		if g.Name != "" {
			names[g.Name] = true
		}
		total += g.TileCount()
	}
	if total != PatternTileCount {
		return fmt.Errorf("%w: pattern %s expands to %d tiles, want %d", ErrMalformedPattern, d.ID, total, PatternTileCount)
	}

	for i, g := range d.Groups {
		if g.MustMatch == "" {
			continue
		}
		if !names[g.MustMatch] {
			return fmt.Errorf("%w: pattern %s group %d must-match references unknown group %q", ErrMalformedPattern, d.ID, i, g.MustMatch)
		}
		if g.MustMatch == g.Name {
			return fmt.Errorf("%w: pattern %s group %d must-match references itself", ErrMalformedPattern, d.ID, i)
		}
	}
	return nil
}

func validateValueChar(c byte, role SuitRole) error {
	switch {
	case c >= '1' && c <= '9', c == '0', c == 'D':
		if role == RoleNone {
			return fmt.Errorf("value %q needs a numbered suit role", string(c))
		}
	case c == 'N', c == 'E', c == 'W', c == 'S', c == 'F', c == 'J':
	default:
		return fmt.Errorf("unknown value character %q", string(c))
	}
	return nil
}

// tileForValue resolves one value character under a suit binding.
func tileForValue(c byte, suit domain.Suit) (tile domain.Tile, anyRank bool) {
	switch {
	case c >= '1' && c <= '9':
		return domain.Tile{Suit: suit, Rank: int32(c - '0')}, false
	case c == '0':
		// Neutral numeral: binds to any rank of the suit.
		return domain.Tile{Suit: suit}, true
	case c == 'N':
		return domain.Tile{Suit: domain.SuitWind, Rank: domain.WindNorth}, false
	case c == 'E':
		return domain.Tile{Suit: domain.SuitWind, Rank: domain.WindEast}, false
	case c == 'W':
		return domain.Tile{Suit: domain.SuitWind, Rank: domain.WindWest}, false
	case c == 'S':
		return domain.Tile{Suit: domain.SuitWind, Rank: domain.WindSouth}, false
	case c == 'D':
		return domain.DragonForSuit(suit), false
	case c == 'F':
		// Flowers are interchangeable for matching despite distinct ids.
		return domain.Tile{Suit: domain.SuitFlower}, true
	default: // 'J'
		return domain.JokerTile, false
	}
}
