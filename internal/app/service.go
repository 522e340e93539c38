package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"mjcopilot/internal/analysis"
	"mjcopilot/internal/domain"
	"mjcopilot/internal/pattern"
)

// Service contains the co-pilot use-cases operating on domain state.
type Service struct {
	rng     *rand.Rand
	catalog *pattern.Catalog
}

// NewService constructs a Service with the provided rng or a time-seeded
// default. The catalog drives win verification and hand analysis and may be
// nil for tables that only need the turn engine.
func NewService(catalog *pattern.Catalog, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, catalog: catalog}
}

var (
	ErrNotPlaying    = errors.New("match not in playing phase")
	ErrUnknownPlayer = errors.New("player not found")
	ErrNoCatalog     = errors.New("no pattern catalog loaded")
	ErrNotAWin       = errors.New("hand does not complete any pattern")
)

// StartGame creates a table for the given seats, deals every hand and emits
// the targeted hand_dealt events plus the game_started broadcast. Seat order
// is preserved; empty strings mark empty seats and are skipped.
func (s *Service) StartGame(playerIDs []string) (*domain.Game, []Event, error) {
	var roster []string
	for _, id := range playerIDs {
		if id != "" {
			roster = append(roster, id)
		}
	}

	game, err := domain.NewGame(roster, s.rng)
	if err != nil {
		return nil, nil, err
	}

	events := make([]Event, 0, len(roster)+1)
	for _, id := range roster {
		pl := game.Players[id]
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				UserID: id,
				Tiles:  tileIDs(pl.Hand.Concealed),
			},
			Recipients: []string{id},
		})
	}

	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Phase:           game.Phase,
			FirstTurnUserID: game.CurrentPlayer(),
			WallRemaining:   game.Wall.TilesRemaining(),
		},
	})
	return game, events, nil
}

// HandleAction runs one player action through the turn engine and translates
// the result into dispatchable events. Rejections are not errors: they become
// a targeted action_rejected event carrying the violations and the legal
// alternatives, so clients can self-correct.
func (s *Service) HandleAction(game *domain.Game, actorUserID string, action domain.ActionType, payload domain.ActionPayload) ([]Event, error) {
	if _, ok := game.Players[actorUserID]; !ok {
		return nil, ErrUnknownPlayer
	}

	validation := game.ValidateAction(actorUserID, action, payload)
	result := game.ExecuteAction(actorUserID, action, payload)
	if !result.Success {
		events := []Event{{
			Kind: EventActionRejected,
			Payload: ActionRejectedPayload{
				UserID:       actorUserID,
				Action:       action,
				Violations:   validation.Violations,
				Alternatives: validation.AlternativeActions,
			},
			Recipients: []string{actorUserID},
		}}
		// A draw against an empty wall also ends the game for everyone.
		if game.TurnState == domain.WallExhausted {
			events = append(events, Event{
				Kind:    EventGameEnded,
				Payload: GameEndedPayload{Reason: "wall_exhausted"},
			})
		}
		return events, nil
	}

	switch action {
	case domain.ActionDraw:
		tile, _ := result.Data["tile"].(string)
		return []Event{
			{
				Kind: EventTileDrawn,
				Payload: TileDrawnPayload{
					UserID:        actorUserID,
					Tile:          tile,
					WallRemaining: game.Wall.TilesRemaining(),
				},
				Recipients: []string{actorUserID},
			},
			{
				Kind: EventTileDrawn,
				Payload: TileDrawnPayload{
					UserID:        actorUserID,
					WallRemaining: game.Wall.TilesRemaining(),
				},
				Recipients: othersThan(game, actorUserID),
			},
		}, nil

	case domain.ActionDiscard:
		tile, _ := result.Data["tile"].(string)
		return []Event{{
			Kind: EventTileDiscarded,
			Payload: TileDiscardedPayload{
				UserID:         actorUserID,
				Tile:           tile,
				NextTurnUserID: result.NextPlayer,
				CallWindowOpen: game.TurnState == domain.AwaitingCalls,
			},
		}}, nil

	case domain.ActionCallPung, domain.ActionCallKong, domain.ActionCallQuint:
		tile, _ := result.Data["tile"].(string)
		meld, _ := result.Data["meld"].(string)
		pl := game.Players[actorUserID]
		claimed := pl.Hand.Melds[len(pl.Hand.Melds)-1]
		return []Event{{
			Kind: EventMeldClaimed,
			Payload: MeldClaimedPayload{
				UserID:      actorUserID,
				Tile:        tile,
				Meld:        meld,
				JokersUsed:  claimed.Jokers,
				ClaimedFrom: claimed.ClaimedFrom,
			},
		}}, nil

	default: // pass
		reason, _ := result.Data["reason"].(string)
		return []Event{{
			Kind: EventTurnPassed,
			Payload: TurnPassedPayload{
				UserID:         actorUserID,
				Reason:         reason,
				NextTurnUserID: result.NextPlayer,
			},
		}}, nil
	}
}

// DeclareWin verifies the declarer's hand completes a catalog pattern and, if
// it does, moves the game to its won terminal state. Verification is strict:
// all fourteen tiles must match, and concealed-only patterns are skipped when
// the hand holds exposed melds.
func (s *Service) DeclareWin(game *domain.Game, actorUserID string) ([]Event, error) {
	if s.catalog == nil {
		return nil, ErrNoCatalog
	}
	if game.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	pl, ok := game.Players[actorUserID]
	if !ok {
		return nil, ErrUnknownPlayer
	}

	patternID, err := s.winningPattern(&pl.Hand)
	if err != nil {
		return nil, err
	}

	game.MarkWon(actorUserID)
	return []Event{{
		Kind: EventGameEnded,
		Payload: GameEndedPayload{
			Reason:   "win",
			WinnerID: actorUserID,
			Pattern:  patternID,
		},
	}}, nil
}

// Analyze ranks the catalog against a player's current hand. The result is
// advisory and goes only to the requesting player; nothing here mutates the
// game.
func (s *Service) Analyze(game *domain.Game, actorUserID string) ([]analysis.Recommendation, error) {
	if s.catalog == nil {
		return nil, ErrNoCatalog
	}
	pl, ok := game.Players[actorUserID]
	if !ok {
		return nil, ErrUnknownPlayer
	}

	var exposed []domain.Tile
	for id, other := range game.Players {
		if id == actorUserID {
			continue
		}
		for _, m := range other.Hand.Melds {
			exposed = append(exposed, m.Tiles()...)
		}
	}
	return analysis.AnalyzeHand(s.catalog, &pl.Hand, exposed, game.Discards), nil
}

func (s *Service) winningPattern(hand *domain.Hand) (string, error) {
	if hand.Size() != pattern.PatternTileCount {
		return "", fmt.Errorf("%w: hand holds %d tiles, need %d", ErrNotAWin, hand.Size(), pattern.PatternTileCount)
	}
	for _, def := range s.catalog.Patterns {
		if def.ConcealedOnly && len(hand.Melds) > 0 {
			continue
		}
		match := pattern.MatchVariations(hand, def, s.catalog.Variations(def.ID))
		if match.TileCount == pattern.PatternTileCount {
			return def.ID, nil
		}
	}
	return "", ErrNotAWin
}

func tileIDs(tiles []domain.Tile) []string {
	out := make([]string, len(tiles))
	for i, t := range tiles {
		out[i] = t.String()
	}
	return out
}

func othersThan(game *domain.Game, userID string) []string {
	var out []string
	for _, id := range game.Order {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}
