package pattern

import (
	"fmt"

	"mjcopilot/internal/domain"
)

// TileRequirement is one literal tile slot of an expanded variation. AnyRank
// marks the neutral '0' wildcard (any rank in the suit) and interchangeable
// flowers.
type TileRequirement struct {
	Tile       domain.Tile
	AnyRank    bool
	GroupIndex int
}

// Variation is a concrete 14-tile expansion of a Definition under one suit
// binding. GroupSuits records the numbered suit bound per group (SuitNone for
// suitless groups).
type Variation struct {
	PatternID    string
	GroupSuits   []domain.Suit
	Requirements []TileRequirement
}

// suitPermutations enumerates the 3! orderings of the numbered suits in a
// fixed order so expansion is deterministic.
var suitPermutations = [6][3]domain.Suit{
	{domain.SuitCrak, domain.SuitBam, domain.SuitDot},
	{domain.SuitCrak, domain.SuitDot, domain.SuitBam},
	{domain.SuitBam, domain.SuitCrak, domain.SuitDot},
	{domain.SuitBam, domain.SuitDot, domain.SuitCrak},
	{domain.SuitDot, domain.SuitCrak, domain.SuitBam},
	{domain.SuitDot, domain.SuitBam, domain.SuitCrak},
}

// Expand resolves a definition's suit-role placeholders into concrete
// variations: one per suit permutation of the "any" groups, pruned to
// permutations consistent with must-match constraints, deduplicated, in a
// stable order. Fixed roles bind identically across all variations.
func Expand(def Definition) ([]Variation, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	// Ordinal position of each independently-bound "any" group, for
	// permutation slots. An "any" group carrying a must-match constraint
	// inherits its referenced group's binding instead of taking a slot.
	anyOrdinal := make(map[int]int)
	for i, g := range def.Groups {
		if g.Role == RoleAny && g.MustMatch == "" {
			anyOrdinal[i] = len(anyOrdinal)
		}
	}

	nameToIndex := make(map[string]int, len(def.Groups))
	for i, g := range def.Groups {
		if g.Name != "" {
			nameToIndex[g.Name] = i
		}
	}

	var variations []Variation
	seen := make(map[string]bool)

	for _, perm := range suitPermutations {
		suits := make([]domain.Suit, len(def.Groups))
		deferred := make([]int, 0, len(def.Groups))
		for i, g := range def.Groups {
			switch g.Role {
			case RoleFirst:
				suits[i] = domain.NumberedSuits[0]
			case RoleSecond:
				suits[i] = domain.NumberedSuits[1]
			case RoleThird:
				suits[i] = domain.NumberedSuits[2]
			case RoleAny:
				if g.MustMatch != "" {
					deferred = append(deferred, i)
					continue
				}
				suits[i] = perm[anyOrdinal[i]%3]
			case RoleNone:
				suits[i] = domain.SuitNone
			}
		}
		// Must-match "any" groups inherit their reference. References may
		// chain, so iterate until stable.
		for pass := 0; pass < len(deferred)+1; pass++ {
			for _, i := range deferred {
				suits[i] = suits[nameToIndex[def.Groups[i].MustMatch]]
			}
		}

		if !mustMatchHolds(def, suits, nameToIndex) {
			continue
		}

		v := Variation{PatternID: def.ID, GroupSuits: suits}
		for i, g := range def.Groups {
			count := g.TileCount()
			if g.Kind == GroupSequence {
				for k := 0; k < len(g.Values); k++ {
					tile, anyRank := tileForValue(g.Values[k], suits[i])
					v.Requirements = append(v.Requirements, TileRequirement{Tile: tile, AnyRank: anyRank, GroupIndex: i})
				}
				continue
			}
			tile, anyRank := tileForValue(g.Values[0], suits[i])
			for k := 0; k < count; k++ {
				v.Requirements = append(v.Requirements, TileRequirement{Tile: tile, AnyRank: anyRank, GroupIndex: i})
			}
		}

		key := variationKey(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		variations = append(variations, v)
	}

	if len(variations) == 0 {
		return nil, fmt.Errorf("%w: pattern %s has contradictory must-match constraints", ErrMalformedPattern, def.ID)
	}
	return variations, nil
}

// mustMatchHolds reports whether every must-match constraint binds equal
// suits under this assignment.
func mustMatchHolds(def Definition, suits []domain.Suit, nameToIndex map[string]int) bool {
	for i, g := range def.Groups {
		if g.MustMatch == "" {
			continue
		}
		j, ok := nameToIndex[g.MustMatch]
		if !ok {
			return false
		}
		if suits[i] != suits[j] {
			return false
		}
	}
	return true
}

func variationKey(v Variation) string {
	key := make([]byte, 0, len(v.Requirements)*4)
	for _, r := range v.Requirements {
		key = append(key, byte(r.Tile.Suit), byte(r.Tile.Rank), boolByte(r.AnyRank), byte(r.GroupIndex))
	}
	return string(key)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
