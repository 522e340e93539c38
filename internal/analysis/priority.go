package analysis

import (
	"slices"
	"strings"

	"mjcopilot/internal/domain"
	"mjcopilot/internal/pattern"
)

// The priority rubric below is a fixed external contract shared with the
// presentation layer; the constants must not be rebalanced.

// TilePriority scores a single tile's strategic weight.
func TilePriority(t domain.Tile) float64 {
	score := 5.0
	if t.IsNumbered() {
		if t.Rank == 1 || t.Rank == 9 {
			score += 3
		}
		if t.Rank >= 4 && t.Rank <= 6 {
			score--
		}
	}
	if t.IsHonor() {
		score += 2
	}
	if t.IsJoker() {
		score += 5
	}
	if t.IsFlower() {
		score -= 2
	}
	return score
}

// GroupPriority scores a pattern group's strategic weight.
func GroupPriority(g pattern.Group) float64 {
	score := 5.0
	switch g.Kind {
	case pattern.GroupSequence:
		if isRun(g.Values, "123") || isRun(g.Values, "789") {
			score += 4
		} else {
			score++
		}
	case pattern.GroupKong:
		score += 3
	case pattern.GroupPung:
		score += 2
	case pattern.GroupPair:
		score++
	}
	if purelyJoker(g.Values) {
		score += 5
	}
	// Substring containment on the raw values, not a numeric range check.
	if strings.ContainsAny(g.Values, "19") {
		score += 2
	}
	return score
}

// OverallPriority averages tile and group scores for one expanded variation.
func OverallPriority(def pattern.Definition, v pattern.Variation) float64 {
	total := 0.0
	for _, req := range v.Requirements {
		total += TilePriority(req.Tile)
	}
	for _, g := range def.Groups {
		total += GroupPriority(g)
	}
	return total / float64(len(v.Requirements)+len(def.Groups))
}

// isRun reports whether the value characters form exactly the given run,
// regardless of order.
func isRun(values, run string) bool {
	if len(values) != len(run) {
		return false
	}
	sorted := []byte(values)
	slices.Sort(sorted)
	return string(sorted) == run
}

func purelyJoker(values string) bool {
	if values == "" {
		return false
	}
	for i := 0; i < len(values); i++ {
		if values[i] != 'J' {
			return false
		}
	}
	return true
}
