package pattern

import (
	"testing"

	"mjcopilot/internal/domain"
)

func tiles(t *testing.T, ids string) []domain.Tile {
	t.Helper()
	out, err := domain.ParseTiles(ids)
	if err != nil {
		t.Fatalf("parse tiles: %v", err)
	}
	return out
}

func handOf(t *testing.T, ids string) *domain.Hand {
	t.Helper()
	return &domain.Hand{Concealed: tiles(t, ids)}
}

func pungsDefinition() Definition {
	return Definition{
		ID: "pungs",
		Groups: []Group{
			{Name: "ones", Role: RoleFirst, Kind: GroupPung, Values: "1"},
			{Name: "fives", Role: RoleFirst, Kind: GroupPung, Values: "5"},
			{Name: "nines", Role: RoleSecond, Kind: GroupKong, Values: "9"},
			{Name: "winds", Role: RoleNone, Kind: GroupKong, Values: "N"},
		},
	}
}

func TestMatchCompleteHand(t *testing.T) {
	hand := handOf(t, "1C 1C 1C 5C 5C 5C 9B 9B 9B 9B N N N N")
	res, err := MatchHand(hand, pungsDefinition())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if res.TileCount != 14 {
		t.Errorf("tileCount = %d, want 14", res.TileCount)
	}
	if len(res.Missing) != 0 {
		t.Errorf("expected no missing tiles, got %v", res.Missing)
	}
	for _, g := range res.Groups {
		if g.Matched != g.Required {
			t.Errorf("group %s matched %d/%d", g.Name, g.Matched, g.Required)
		}
	}
}

func TestMatchJokerStandsIn(t *testing.T) {
	// Two 1C are missing; two jokers cover them because pungs allow jokers.
	hand := handOf(t, "1C J J 5C 5C 5C 9B 9B 9B 9B N N N N")
	res, err := MatchHand(hand, pungsDefinition())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if res.TileCount != 14 {
		t.Errorf("tileCount = %d, want 14", res.TileCount)
	}
	if res.JokersUsed != 2 {
		t.Errorf("jokersUsed = %d, want 2", res.JokersUsed)
	}
}

func TestMatchJokerForbiddenInPair(t *testing.T) {
	def := Definition{
		ID: "pairline",
		Groups: []Group{
			{Name: "pair", Role: RoleFirst, Kind: GroupPair, Values: "2"},
			{Role: RoleFirst, Kind: GroupKong, Values: "4"},
			{Role: RoleSecond, Kind: GroupKong, Values: "6"},
			{Role: RoleThird, Kind: GroupKong, Values: "8"},
		},
	}
	// Pair is half-filled; the joker must not complete it.
	hand := handOf(t, "2C J 4C 4C 4C 4C 6B 6B 6B 6B 8D 8D 8D 8D")
	res, err := MatchHand(hand, def)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if res.TileCount != 13 {
		t.Errorf("tileCount = %d, want 13 (joker may not fill the pair)", res.TileCount)
	}
	if len(res.Missing) != 1 || res.Missing[0].JokerAllowed {
		t.Errorf("missing = %+v, want one joker-forbidden 2C", res.Missing)
	}
}

func TestMatchJokerNeverSubstitutesForJoker(t *testing.T) {
	yes := true
	def := Definition{
		ID: "jokerline",
		Groups: []Group{
			{Name: "jokers", Role: RoleNone, Kind: GroupPair, Values: "J", Jokers: &yes},
			{Role: RoleFirst, Kind: GroupKong, Values: "1"},
			{Role: RoleSecond, Kind: GroupKong, Values: "2"},
			{Role: RoleThird, Kind: GroupKong, Values: "3"},
		},
	}
	// One physical joker fills one joker slot; the second slot stays missing
	// and must not be flagged joker-substitutable.
	hand := handOf(t, "J 1C 1C 1C 1C 2B 2B 2B 2B 3D 3D 3D 3D 4C")
	res, err := MatchHand(hand, def)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if res.TileCount != 13 {
		t.Errorf("tileCount = %d, want 13", res.TileCount)
	}
	for _, m := range res.Missing {
		if m.Tile.IsJoker() && m.JokerAllowed {
			t.Errorf("a missing joker slot must never be joker-substitutable: %+v", m)
		}
	}
}

func TestMatchPicksBestVariation(t *testing.T) {
	def := Definition{
		ID: "anyline",
		Groups: []Group{
			{Name: "ones", Role: RoleAny, Kind: GroupQuint, Values: "1"},
			{Name: "twos", Role: RoleAny, Kind: GroupQuint, Values: "2"},
			{Role: RoleNone, Kind: GroupKong, Values: "F"},
		},
	}
	// Strongly a bams hand: the bams-first variation should win.
	hand := handOf(t, "1B 1B 1B 1B J 2D 2D 2D 2D J F1 F2 F3 F4")
	res, err := MatchHand(hand, def)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if res.TileCount != 14 {
		t.Errorf("tileCount = %d, want 14", res.TileCount)
	}
	if got := res.Variation.GroupSuits[0]; got != domain.SuitBam {
		t.Errorf("best variation binds ones to %v, want bams", got)
	}
	if got := res.Variation.GroupSuits[1]; got != domain.SuitDot {
		t.Errorf("best variation binds twos to %v, want dots", got)
	}
}

func TestMatchTieKeepsFirstVariation(t *testing.T) {
	def := Definition{
		ID: "tie",
		Groups: []Group{
			{Role: RoleAny, Kind: GroupQuint, Values: "7"},
			{Role: RoleAny, Kind: GroupQuint, Values: "8"},
			{Role: RoleNone, Kind: GroupKong, Values: "S"},
		},
	}
	// Empty overlap everywhere: every variation ties at zero.
	hand := handOf(t, "F1 F2")
	variations, err := Expand(def)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	res := MatchVariations(&domain.Hand{Concealed: hand.Concealed}, def, variations)
	if variationKey(res.Variation) != variationKey(variations[0]) {
		t.Error("tied match should keep the first-generated variation")
	}
}

func likeNumbersDefinition() Definition {
	return Definition{
		ID: "like-numbers",
		Groups: []Group{
			{Name: "flowers", Role: RoleNone, Kind: GroupPair, Values: "F"},
			{Name: "craks", Role: RoleFirst, Kind: GroupKong, Values: "0"},
			{Name: "bams", Role: RoleSecond, Kind: GroupPung, Values: "0"},
			{Name: "dots", Role: RoleThird, Kind: GroupPung, Values: "0"},
			{Name: "jokers", Role: RoleNone, Kind: GroupPair, Values: "J"},
		},
	}
}

func TestMatchLikeNumberGroupNeedsIdenticalTiles(t *testing.T) {
	// Four different crak ranks must not satisfy a kong of like numbers: the
	// whole group binds to a single rank.
	hand := handOf(t, "1C 2C 5C 8C")
	res, err := MatchHand(hand, likeNumbersDefinition())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if res.TileCount != 1 {
		t.Errorf("tileCount = %d, want 1 (one rank only)", res.TileCount)
	}
	for _, g := range res.Groups {
		if g.Name == "craks" && g.Matched != 1 {
			t.Errorf("craks matched %d/%d, want 1", g.Matched, g.Required)
		}
	}
	for _, used := range res.UsedTiles {
		if used != (domain.Tile{Suit: domain.SuitCrak, Rank: 1}) {
			t.Errorf("used tile %s outside the bound rank", used)
		}
	}
}

func TestMatchLikeNumbersCompleteHand(t *testing.T) {
	hand := handOf(t, "F1 F2 3C 3C 3C 3C 7B 7B 7B 2D 2D 2D J J")
	res, err := MatchHand(hand, likeNumbersDefinition())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if res.TileCount != 14 {
		t.Errorf("tileCount = %d, want 14", res.TileCount)
	}
	if len(res.Missing) != 0 {
		t.Errorf("expected no missing tiles, got %v", res.Missing)
	}
}

func TestMatchLikeNumberBindsMostHeldRank(t *testing.T) {
	// Two fives beat one nine; the kong binds rank 5 and its open slots ask
	// for concrete 5C, not any crak.
	hand := handOf(t, "5C 5C 9C")
	res, err := MatchHand(hand, likeNumbersDefinition())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if res.TileCount != 2 {
		t.Errorf("tileCount = %d, want 2", res.TileCount)
	}
	want := domain.Tile{Suit: domain.SuitCrak, Rank: 5}
	for _, m := range res.Missing {
		if m.GroupIndex != 1 {
			continue
		}
		if m.AnyRank || m.Tile != want {
			t.Errorf("missing slot = %+v, want concrete %s", m, want)
		}
	}
}

func TestMatchCountsExposedMelds(t *testing.T) {
	hand := &domain.Hand{
		Concealed: tiles(t, "1C 1C 1C 5C 5C 5C N N N N"),
		Melds: []domain.Meld{
			{Kind: domain.MeldKong, Tile: domain.Tile{Suit: domain.SuitBam, Rank: 9}},
		},
	}
	res, err := MatchHand(hand, pungsDefinition())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if res.TileCount != 14 {
		t.Errorf("tileCount = %d, want 14 including the exposed kong", res.TileCount)
	}
}
