package pattern

import (
	"mjcopilot/internal/domain"
)

// GroupMatch is the per-group overlap breakdown of a match.
type GroupMatch struct {
	GroupIndex int
	Name       string
	Matched    int
	Required   int
}

// MissingTile is a variation slot the hand could not fill, annotated with
// whether a joker may cover it.
type MissingTile struct {
	Tile         domain.Tile
	AnyRank      bool
	GroupIndex   int
	JokerAllowed bool
}

// MatchResult reports how closely a hand fits one pattern: the best
// variation, the matched tile count (0-14, jokers included), per-group
// overlap, the unfilled slots and the hand tiles the match consumed.
type MatchResult struct {
	PatternID  string
	TileCount  int
	Variation  Variation
	Groups     []GroupMatch
	Missing    []MissingTile
	JokersUsed int
	UsedTiles  []domain.Tile
}

// MatchHand counts the overlap between the hand and every expanded variation
// of the definition and returns the best one. Ties keep the first-generated
// variation. The result is a pure function of its inputs.
func MatchHand(hand *domain.Hand, def Definition) (MatchResult, error) {
	variations, err := Expand(def)
	if err != nil {
		return MatchResult{}, err
	}
	return MatchVariations(hand, def, variations), nil
}

// MatchVariations is MatchHand over pre-expanded variations, for callers
// holding a catalog with cached expansions.
func MatchVariations(hand *domain.Hand, def Definition, variations []Variation) MatchResult {
	var best MatchResult
	for i, v := range variations {
		res := matchOne(hand, def, v)
		if i == 0 || res.TileCount > best.TileCount {
			best = res
		}
	}
	return best
}

func matchOne(hand *domain.Hand, def Definition, v Variation) MatchResult {
	res := MatchResult{PatternID: v.PatternID, Variation: v}

	counts := make(map[domain.Tile]int)
	jokers := 0
	for _, t := range hand.AllTiles() {
		if t.IsJoker() {
			jokers++
			continue
		}
		counts[t]++
	}

	matched := make([]bool, len(v.Requirements))

	// Pass 1: exact tiles, including joker slots filled by physical jokers.
	for i, req := range v.Requirements {
		if req.AnyRank {
			continue
		}
		if req.Tile.IsJoker() {
			if jokers > 0 {
				jokers--
				matched[i] = true
				res.UsedTiles = append(res.UsedTiles, domain.JokerTile)
			}
			continue
		}
		if counts[req.Tile] > 0 {
			counts[req.Tile]--
			matched[i] = true
			res.UsedTiles = append(res.UsedTiles, req.Tile)
		}
	}

	// Pass 2: neutral-rank slots. Interchangeable flowers and sequence slots
	// fill independently, lowest rank first for determinism. A '0'-valued
	// meld group needs identical tiles, so all of its slots bind to one
	// concrete rank: the rank of the bound suit with the most copies on hand.
	groupRank := make(map[int]int32)
	for i, req := range v.Requirements {
		if !req.AnyRank || matched[i] {
			continue
		}
		if req.Tile.Suit == domain.SuitFlower || def.Groups[req.GroupIndex].Kind == GroupSequence {
			if t, ok := takeLowestOfSuit(counts, req.Tile.Suit); ok {
				matched[i] = true
				res.UsedTiles = append(res.UsedTiles, t)
			}
			continue
		}
		rank, bound := groupRank[req.GroupIndex]
		if !bound {
			rank = bestRankOfSuit(counts, req.Tile.Suit)
			groupRank[req.GroupIndex] = rank
		}
		if rank == 0 {
			continue
		}
		t := domain.Tile{Suit: req.Tile.Suit, Rank: rank}
		if counts[t] > 0 {
			counts[t]--
			matched[i] = true
			res.UsedTiles = append(res.UsedTiles, t)
		}
	}

	// Pass 3: jokers stand in wherever the owning group allows them. A joker
	// never substitutes for another joker.
	for i, req := range v.Requirements {
		if matched[i] || jokers == 0 || req.Tile.IsJoker() {
			continue
		}
		if !def.Groups[req.GroupIndex].JokerAllowed() {
			continue
		}
		jokers--
		matched[i] = true
		res.JokersUsed++
		res.UsedTiles = append(res.UsedTiles, domain.JokerTile)
	}

	res.Groups = make([]GroupMatch, len(def.Groups))
	for i, g := range def.Groups {
		res.Groups[i] = GroupMatch{GroupIndex: i, Name: g.Name, Required: g.TileCount()}
	}
	for i, req := range v.Requirements {
		if matched[i] {
			res.TileCount++
			res.Groups[req.GroupIndex].Matched++
			continue
		}
		missing := MissingTile{
			Tile:         req.Tile,
			AnyRank:      req.AnyRank,
			GroupIndex:   req.GroupIndex,
			JokerAllowed: def.Groups[req.GroupIndex].JokerAllowed() && !req.Tile.IsJoker(),
		}
		// Slots of a rank-bound like-number group want that concrete rank.
		if rank := groupRank[req.GroupIndex]; missing.AnyRank && rank != 0 {
			missing.Tile = domain.Tile{Suit: req.Tile.Suit, Rank: rank}
			missing.AnyRank = false
		}
		res.Missing = append(res.Missing, missing)
	}
	return res
}

// bestRankOfSuit picks the rank of the suit with the most available copies,
// lowest rank on ties, 0 when the suit is absent.
func bestRankOfSuit(counts map[domain.Tile]int, suit domain.Suit) int32 {
	best, bestCount := int32(0), 0
	for r := int32(1); r <= 9; r++ {
		if c := counts[domain.Tile{Suit: suit, Rank: r}]; c > bestCount {
			best, bestCount = r, c
		}
	}
	return best
}

// takeLowestOfSuit consumes the lowest-ranked available tile of the suit.
func takeLowestOfSuit(counts map[domain.Tile]int, suit domain.Suit) (domain.Tile, bool) {
	maxRank := int32(9)
	if suit == domain.SuitFlower {
		maxRank = 8
	}
	for r := int32(1); r <= maxRank; r++ {
		t := domain.Tile{Suit: suit, Rank: r}
		if counts[t] > 0 {
			counts[t]--
			return t, true
		}
	}
	return domain.Tile{}, false
}
