package domain

import (
	"errors"
	"fmt"
	"math/rand"
)

// Phase is the lifecycle stage of a game.
type Phase string

const (
	PhaseDealing    Phase = "dealing"
	PhaseCharleston Phase = "charleston"
	PhasePlaying    Phase = "playing"
	PhaseEnded      Phase = "ended"
)

// TurnStateKind tracks where the action cycle sits within a turn.
type TurnStateKind string

const (
	// AwaitingDraw: the current player must draw.
	AwaitingDraw TurnStateKind = "awaiting_draw"
	// AwaitingDiscard: the current player holds 14 tiles and must discard.
	AwaitingDiscard TurnStateKind = "awaiting_discard"
	// AwaitingCalls: a discard is pending and other players may call it.
	AwaitingCalls TurnStateKind = "awaiting_calls"
	// Won: terminal, a player completed a pattern.
	Won TurnStateKind = "won"
	// WallExhausted: terminal, the wall emptied with no winner.
	WallExhausted TurnStateKind = "wall_exhausted"
)

// ErrInvalidRoster is returned when a deal is requested for an empty or
// duplicate-bearing player list.
var ErrInvalidRoster = errors.New("invalid roster")

// Player holds per-seat state inside a game.
type Player struct {
	ID       string
	Hand     Hand
	HasDrawn bool
}

// Game is the authoritative per-table aggregate: wall, discard pile, players
// and turn bookkeeping. It is an explicitly owned handle; callers must
// serialize access per table (one owner per room).
type Game struct {
	Phase     Phase
	TurnState TurnStateKind
	Winner    string

	Wall     *Wall
	Discards *DiscardPile
	Players  map[string]*Player

	// Order is the cyclic turn order; current indexes into it.
	Order   []string
	current int

	Turn      int
	RoundWind int32
}

// NewGame creates a table for the given roster, deals 13 tiles to each player
// and leaves the game in the playing phase awaiting the first draw. The rng
// seeds the wall shuffle; nil means time-seeded.
func NewGame(playerIDs []string, rng *rand.Rand) (*Game, error) {
	if len(playerIDs) == 0 {
		return nil, fmt.Errorf("%w: empty player list", ErrInvalidRoster)
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if id == "" || seen[id] {
			return nil, fmt.Errorf("%w: duplicate or empty player id %q", ErrInvalidRoster, id)
		}
		seen[id] = true
	}

	g := &Game{
		Phase:     PhaseDealing,
		Wall:      NewWall(rng),
		Discards:  &DiscardPile{},
		Players:   make(map[string]*Player, len(playerIDs)),
		Order:     append([]string{}, playerIDs...),
		RoundWind: WindEast,
		Turn:      1,
	}
	for _, id := range playerIDs {
		hand, err := g.Wall.Deal(HandSize)
		if err != nil {
			return nil, err
		}
		g.Players[id] = &Player{ID: id, Hand: Hand{Concealed: hand}}
	}

	// Charleston tile passing happens outside this core; the phase exists so
	// a session layer can hold the table there before play starts.
	g.Phase = PhasePlaying
	g.TurnState = AwaitingDraw
	return g, nil
}

// CurrentPlayer returns the id whose turn it is.
func (g *Game) CurrentPlayer() string {
	return g.Order[g.current]
}

// NextPlayer returns the id after the current player in turn order.
func (g *Game) NextPlayer() string {
	return g.Order[(g.current+1)%len(g.Order)]
}

// advance moves the turn to the next player in cyclic order.
func (g *Game) advance() {
	g.current = (g.current + 1) % len(g.Order)
	g.Turn++
}

// setCurrent makes the given player the current one (used when a call claims
// the turn out of order).
func (g *Game) setCurrent(playerID string) {
	for i, id := range g.Order {
		if id == playerID {
			g.current = i
			return
		}
	}
}

// IsTerminal reports whether the game has reached a terminal state.
func (g *Game) IsTerminal() bool {
	return g.TurnState == Won || g.TurnState == WallExhausted
}

// MarkWon transitions the game into its winning terminal state.
func (g *Game) MarkWon(playerID string) {
	g.TurnState = Won
	g.Winner = playerID
	g.Phase = PhaseEnded
}

// markWallExhausted transitions into the no-winner terminal state.
func (g *Game) markWallExhausted() {
	g.TurnState = WallExhausted
	g.Phase = PhaseEnded
}
