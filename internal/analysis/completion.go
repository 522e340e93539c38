package analysis

import (
	"mjcopilot/internal/pattern"
)

// Recommendation labels, bucketed from the completion score.
const (
	RecommendExcellent  = "excellent"
	RecommendGood       = "good"
	RecommendFair       = "fair"
	RecommendPoor       = "poor"
	RecommendImpossible = "impossible"
)

// CompletionResult is the combined 0-100 score with its component breakdown.
type CompletionResult struct {
	PatternID         string
	Score             float64
	CurrentTileScore  float64
	AvailabilityScore float64
	JokerScore        float64
	PriorityScore     float64
	Recommendation    string
}

// ScoreCompletion folds a match, the availability of its missing tiles, the
// joker plan and the pattern's overall priority into the completion score.
// The formula's constants and the bucket breakpoints are an external
// contract and are reproduced exactly.
func ScoreCompletion(match pattern.MatchResult, availability []TileAvailability, plan JokerPlan, overallPriority float64) CompletionResult {
	res := CompletionResult{PatternID: match.PatternID}

	res.CurrentTileScore = float64(match.TileCount) / float64(pattern.PatternTileCount) * 40

	avail := 0.0
	for i, m := range match.Missing {
		remaining := 0
		if i < len(availability) {
			remaining = availability[i].RemainingInWall
		}
		bonus := 0.0
		if CanJokerSubstituteForTile(m) {
			bonus = 2
		}
		avail += (float64(remaining) + bonus) * 2
	}
	res.AvailabilityScore = min(30, avail)

	balance := float64(plan.JokersAvailable - plan.JokersNeeded)
	if balance >= 0 {
		res.JokerScore = min(20, balance*5+10)
	} else {
		res.JokerScore = max(0, 10+balance*3)
	}

	res.PriorityScore = min(10, overallPriority)

	res.Score = min(100, res.CurrentTileScore+res.AvailabilityScore+res.JokerScore+res.PriorityScore)
	res.Recommendation = recommendationFor(res.Score)
	return res
}

func recommendationFor(score float64) string {
	switch {
	case score >= 80:
		return RecommendExcellent
	case score >= 65:
		return RecommendGood
	case score >= 45:
		return RecommendFair
	case score >= 25:
		return RecommendPoor
	default:
		return RecommendImpossible
	}
}
