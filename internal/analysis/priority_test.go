package analysis

import (
	"testing"

	"mjcopilot/internal/domain"
	"mjcopilot/internal/pattern"
)

func TestTilePriorityConstants(t *testing.T) {
	tests := []struct {
		name string
		tile domain.Tile
		want float64
	}{
		{name: "terminal one", tile: domain.Tile{Suit: domain.SuitCrak, Rank: 1}, want: 8},
		{name: "terminal nine", tile: domain.Tile{Suit: domain.SuitDot, Rank: 9}, want: 8},
		{name: "middle five", tile: domain.Tile{Suit: domain.SuitBam, Rank: 5}, want: 4},
		{name: "plain three", tile: domain.Tile{Suit: domain.SuitBam, Rank: 3}, want: 5},
		{name: "wind", tile: domain.Tile{Suit: domain.SuitWind, Rank: domain.WindNorth}, want: 7},
		{name: "dragon", tile: domain.Tile{Suit: domain.SuitDragon, Rank: domain.DragonRed}, want: 7},
		{name: "joker", tile: domain.JokerTile, want: 10},
		{name: "flower", tile: domain.Tile{Suit: domain.SuitFlower, Rank: 1}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TilePriority(tt.tile); got != tt.want {
				t.Errorf("TilePriority(%s) = %v, want %v", tt.tile, got, tt.want)
			}
		})
	}
}

func TestGroupPriorityConstants(t *testing.T) {
	tests := []struct {
		name  string
		group pattern.Group
		want  float64
	}{
		{name: "low run sequence", group: pattern.Group{Kind: pattern.GroupSequence, Values: "123"}, want: 11}, // 5+4+2 ("1" substring)
		{name: "high run sequence", group: pattern.Group{Kind: pattern.GroupSequence, Values: "789"}, want: 11},
		{name: "other sequence", group: pattern.Group{Kind: pattern.GroupSequence, Values: "456"}, want: 6},
		{name: "kong", group: pattern.Group{Kind: pattern.GroupKong, Values: "2"}, want: 8},
		{name: "pung", group: pattern.Group{Kind: pattern.GroupPung, Values: "3"}, want: 7},
		{name: "pair", group: pattern.Group{Kind: pattern.GroupPair, Values: "4"}, want: 6},
		{name: "pure joker pair", group: pattern.Group{Kind: pattern.GroupPair, Values: "J"}, want: 11}, // 5+1+5
		{name: "substring one bonus", group: pattern.Group{Kind: pattern.GroupPung, Values: "1"}, want: 9},
		{name: "substring nine bonus", group: pattern.Group{Kind: pattern.GroupKong, Values: "9"}, want: 10},
		// "19" contains both marker characters but the bonus applies once.
		{name: "bonus applies once", group: pattern.Group{Kind: pattern.GroupSequence, Values: "19"}, want: 8}, // 5+1+2
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GroupPriority(tt.group); got != tt.want {
				t.Errorf("GroupPriority(%+v) = %v, want %v", tt.group, got, tt.want)
			}
		})
	}
}

func TestOverallPriorityAverages(t *testing.T) {
	def := pattern.Definition{
		ID: "avg",
		Groups: []pattern.Group{
			{Role: pattern.RoleFirst, Kind: pattern.GroupKong, Values: "1"},
			{Role: pattern.RoleFirst, Kind: pattern.GroupQuint, Values: "9"},
			{Role: pattern.RoleSecond, Kind: pattern.GroupQuint, Values: "5"},
		},
	}
	variations, err := pattern.Expand(def)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	// Tiles: 4x rank-1 (8) + 5x rank-9 (8) + 5x rank-5 (4) = 92.
	// Groups: kong "1" (5+3+2=10) + quint "9" (5+2=7) + quint "5" (5) = 22.
	// (92+22)/(14+3) = 114/17.
	want := 114.0 / 17.0
	if got := OverallPriority(def, variations[0]); got != want {
		t.Errorf("OverallPriority = %v, want %v", got, want)
	}
}
