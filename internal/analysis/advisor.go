package analysis

import (
	"sort"

	"mjcopilot/internal/domain"
	"mjcopilot/internal/pattern"
)

// Recommendation bundles everything the co-pilot derives for one pattern.
type Recommendation struct {
	Pattern      pattern.Definition
	Match        pattern.MatchResult
	Availability []TileAvailability
	JokerPlan    JokerPlan
	Completion   CompletionResult
}

// AnalyzeHand ranks every catalog pattern against the hand, best first.
// Ties keep catalog order. The call is pure; it reads the catalog's cached
// expansions and never mutates game state.
func AnalyzeHand(catalog *pattern.Catalog, hand *domain.Hand, exposedByOthers []domain.Tile, pile *domain.DiscardPile) []Recommendation {
	jokers := hand.CountJokers()
	out := make([]Recommendation, 0, len(catalog.Patterns))

	for _, def := range catalog.Patterns {
		match := pattern.MatchVariations(hand, def, catalog.Variations(def.ID))

		availability := make([]TileAvailability, len(match.Missing))
		for i, m := range match.Missing {
			availability[i] = CalculateTileAvailability(m.Tile, hand, exposedByOthers, pile)
		}

		plan := PlanJokerSubstitution(match.Missing, jokers)
		priority := OverallPriority(def, match.Variation)

		out = append(out, Recommendation{
			Pattern:      def,
			Match:        match,
			Availability: availability,
			JokerPlan:    plan,
			Completion:   ScoreCompletion(match, availability, plan, priority),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Completion.Score > out[j].Completion.Score
	})
	return out
}

// SuggestDiscards returns the concealed tiles the best recommendation does
// not use, least valuable first: the co-pilot's "safe to throw" list.
func SuggestDiscards(hand *domain.Hand, best Recommendation) []domain.Tile {
	counts := make(map[domain.Tile]int)
	for _, t := range hand.Concealed {
		counts[t]++
	}
	for _, t := range best.Match.UsedTiles {
		if counts[t] > 0 {
			counts[t]--
		}
	}

	var surplus []domain.Tile
	for _, t := range hand.Concealed {
		if counts[t] > 0 {
			counts[t]--
			surplus = append(surplus, t)
		}
	}

	sort.SliceStable(surplus, func(i, j int) bool {
		return TilePriority(surplus[i]) < TilePriority(surplus[j])
	})
	return surplus
}
