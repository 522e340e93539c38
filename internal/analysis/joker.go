package analysis

import (
	"sort"

	"mjcopilot/internal/domain"
	"mjcopilot/internal/pattern"
)

// JokerPlan says which missing tiles jokers may cover and how many jokers
// the plan consumes. SubstitutableTiles is ordered by descending tile
// priority so scarcer, higher-value tiles receive joker coverage first.
type JokerPlan struct {
	SubstitutableTiles []domain.Tile
	JokersNeeded       int
	JokersAvailable    int
}

// CanJokerSubstituteForTile reports whether a joker may cover the missing
// slot. A tile denoting a joker is never substitutable, nor is a slot whose
// owning group disallows jokers.
func CanJokerSubstituteForTile(m pattern.MissingTile) bool {
	if m.Tile.IsJoker() {
		return false
	}
	return m.JokerAllowed
}

// PlanJokerSubstitution builds the joker plan for a set of missing tiles.
func PlanJokerSubstitution(missing []pattern.MissingTile, jokersInHand int) JokerPlan {
	plan := JokerPlan{JokersAvailable: jokersInHand}
	for _, m := range missing {
		if CanJokerSubstituteForTile(m) {
			plan.SubstitutableTiles = append(plan.SubstitutableTiles, m.Tile)
		}
	}

	sort.SliceStable(plan.SubstitutableTiles, func(i, j int) bool {
		return TilePriority(plan.SubstitutableTiles[i]) > TilePriority(plan.SubstitutableTiles[j])
	})

	plan.JokersNeeded = len(plan.SubstitutableTiles)
	if jokersInHand < plan.JokersNeeded {
		plan.JokersNeeded = jokersInHand
	}
	return plan
}
