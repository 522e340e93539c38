package app

import (
	"errors"
	"math/rand"
	"testing"

	"mjcopilot/internal/domain"
	"mjcopilot/internal/pattern"
)

func testCatalog(t *testing.T) *pattern.Catalog {
	t.Helper()
	defs := []pattern.Definition{
		{
			ID: "winds-and-dragons",
			Groups: []pattern.Group{
				{Role: pattern.RoleNone, Kind: pattern.GroupKong, Values: "N"},
				{Role: pattern.RoleNone, Kind: pattern.GroupKong, Values: "E"},
				{Role: pattern.RoleNone, Kind: pattern.GroupKong, Values: "W"},
				{Role: pattern.RoleNone, Kind: pattern.GroupPair, Values: "S"},
			},
		},
	}
	catalog, err := pattern.NewCatalog("test", defs)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return catalog
}

func newTestService(t *testing.T) (*Service, *domain.Game) {
	t.Helper()
	svc := NewService(testCatalog(t), rand.New(rand.NewSource(7)))
	game, _, err := svc.StartGame([]string{"p1", "p2", "p3", "p4"})
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	return svc, game
}

func TestStartGameEvents(t *testing.T) {
	svc := NewService(testCatalog(t), rand.New(rand.NewSource(7)))
	game, events, err := svc.StartGame([]string{"p1", "", "p2", "p3", "p4"})
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if len(game.Players) != 4 {
		t.Fatalf("players = %d, want 4 after skipping the empty seat", len(game.Players))
	}
	if len(events) != 5 {
		t.Fatalf("events = %d, want 4 hand_dealt + 1 game_started", len(events))
	}

	for i := 0; i < 4; i++ {
		ev := events[i]
		if ev.Kind != EventHandDealt {
			t.Fatalf("event %d kind = %s, want %s", i, ev.Kind, EventHandDealt)
		}
		payload := ev.Payload.(HandDealtPayload)
		if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.UserID {
			t.Errorf("hand_dealt for %s targeted at %v", payload.UserID, ev.Recipients)
		}
		if len(payload.Tiles) != domain.HandSize {
			t.Errorf("dealt %d tiles to %s, want %d", len(payload.Tiles), payload.UserID, domain.HandSize)
		}
	}

	last := events[4]
	if last.Kind != EventGameStarted || len(last.Recipients) != 0 {
		t.Fatalf("final event = %s recipients %v, want broadcast game_started", last.Kind, last.Recipients)
	}
	started := last.Payload.(GameStartedPayload)
	if started.FirstTurnUserID != "p1" {
		t.Errorf("first turn = %s, want p1", started.FirstTurnUserID)
	}
	if started.WallRemaining != domain.WallCapacity-4*domain.HandSize {
		t.Errorf("wall remaining = %d, want %d", started.WallRemaining, domain.WallCapacity-4*domain.HandSize)
	}
}

func TestStartGameInvalidRoster(t *testing.T) {
	svc := NewService(testCatalog(t), rand.New(rand.NewSource(7)))
	if _, _, err := svc.StartGame([]string{"p1", "p1"}); !errors.Is(err, domain.ErrInvalidRoster) {
		t.Fatalf("err = %v, want ErrInvalidRoster", err)
	}
}

func TestHandleActionDrawMasksTileForOthers(t *testing.T) {
	svc, game := newTestService(t)

	events, err := svc.HandleAction(game, "p1", domain.ActionDraw, domain.ActionPayload{})
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want targeted + masked tile_drawn", len(events))
	}

	own := events[0].Payload.(TileDrawnPayload)
	if own.Tile == "" {
		t.Errorf("actor's event is missing the drawn tile")
	}
	if len(events[0].Recipients) != 1 || events[0].Recipients[0] != "p1" {
		t.Errorf("actor event recipients = %v", events[0].Recipients)
	}

	masked := events[1].Payload.(TileDrawnPayload)
	if masked.Tile != "" {
		t.Errorf("masked event leaks the drawn tile %q", masked.Tile)
	}
	if len(events[1].Recipients) != 3 {
		t.Errorf("masked event recipients = %v, want the other three seats", events[1].Recipients)
	}
}

func TestHandleActionRejectionEvent(t *testing.T) {
	svc, game := newTestService(t)

	// p2 drawing out of turn is a sequence violation, not a Go error.
	events, err := svc.HandleAction(game, "p2", domain.ActionDraw, domain.ActionPayload{})
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventActionRejected {
		t.Fatalf("events = %+v, want one action_rejected", events)
	}
	payload := events[0].Payload.(ActionRejectedPayload)
	if len(payload.Violations) == 0 || payload.Violations[0].Code != domain.CodeSequenceViolation {
		t.Errorf("violations = %+v, want a sequence violation", payload.Violations)
	}
	if len(events[0].Recipients) != 1 || events[0].Recipients[0] != "p2" {
		t.Errorf("rejection recipients = %v, want just p2", events[0].Recipients)
	}
}

func TestHandleActionUnknownPlayer(t *testing.T) {
	svc, game := newTestService(t)
	if _, err := svc.HandleAction(game, "ghost", domain.ActionDraw, domain.ActionPayload{}); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("err = %v, want ErrUnknownPlayer", err)
	}
}

func TestHandleActionDiscardOpensCallWindow(t *testing.T) {
	svc, game := newTestService(t)

	if _, err := svc.HandleAction(game, "p1", domain.ActionDraw, domain.ActionPayload{}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	tile := game.Players["p1"].Hand.Concealed[0]
	events, err := svc.HandleAction(game, "p1", domain.ActionDiscard, domain.ActionPayload{Tile: &tile})
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventTileDiscarded {
		t.Fatalf("events = %+v, want one tile_discarded", events)
	}
	payload := events[0].Payload.(TileDiscardedPayload)
	if !payload.CallWindowOpen {
		t.Errorf("call window should be open after a discard")
	}
	if payload.NextTurnUserID != "p2" {
		t.Errorf("next turn = %s, want p2", payload.NextTurnUserID)
	}
}

func TestHandleActionWallExhaustionEndsGame(t *testing.T) {
	svc, game := newTestService(t)
	for !game.Wall.IsExhausted() {
		if _, err := game.Wall.Draw(); err != nil {
			t.Fatalf("drain: %v", err)
		}
	}

	events, err := svc.HandleAction(game, "p1", domain.ActionDraw, domain.ActionPayload{})
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want action_rejected + game_ended", len(events))
	}
	if events[1].Kind != EventGameEnded {
		t.Fatalf("second event = %s, want game_ended", events[1].Kind)
	}
	if reason := events[1].Payload.(GameEndedPayload).Reason; reason != "wall_exhausted" {
		t.Errorf("reason = %s, want wall_exhausted", reason)
	}
	if game.TurnState != domain.WallExhausted {
		t.Errorf("turn state = %s, want wall_exhausted terminal", game.TurnState)
	}
}

func TestDeclareWinVerifiesHand(t *testing.T) {
	svc, game := newTestService(t)

	pl := game.Players["p3"]
	winning, err := domain.ParseTiles("N N N N E E E E W W W W S S")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pl.Hand = domain.Hand{Concealed: winning}

	events, err := svc.DeclareWin(game, "p3")
	if err != nil {
		t.Fatalf("DeclareWin: %v", err)
	}
	if game.TurnState != domain.Won || game.Winner != "p3" {
		t.Fatalf("state = %s winner = %s, want won by p3", game.TurnState, game.Winner)
	}
	if len(events) != 1 || events[0].Kind != EventGameEnded {
		t.Fatalf("events = %+v, want one game_ended", events)
	}
	payload := events[0].Payload.(GameEndedPayload)
	if payload.Reason != "win" || payload.Pattern != "winds-and-dragons" {
		t.Errorf("payload = %+v, want a win on winds-and-dragons", payload)
	}
}

func TestDeclareWinRejectsIncompleteHand(t *testing.T) {
	svc, game := newTestService(t)
	if _, err := svc.DeclareWin(game, "p1"); !errors.Is(err, ErrNotAWin) {
		t.Fatalf("err = %v, want ErrNotAWin", err)
	}
}

func TestDeclareWinRejectsMixedLikeNumbers(t *testing.T) {
	defs := []pattern.Definition{{
		ID: "like-numbers",
		Groups: []pattern.Group{
			{Role: pattern.RoleNone, Kind: pattern.GroupPair, Values: "F"},
			{Role: pattern.RoleFirst, Kind: pattern.GroupKong, Values: "0"},
			{Role: pattern.RoleSecond, Kind: pattern.GroupPung, Values: "0"},
			{Role: pattern.RoleThird, Kind: pattern.GroupPung, Values: "0"},
			{Role: pattern.RoleNone, Kind: pattern.GroupPair, Values: "J"},
		},
	}}
	catalog, err := pattern.NewCatalog("test", defs)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	svc := NewService(catalog, rand.New(rand.NewSource(7)))
	game, _, err := svc.StartGame([]string{"p1", "p2", "p3", "p4"})
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	pl := game.Players["p3"]
	mixed, err := domain.ParseTiles("F1 F2 1C 2C 5C 8C 1B 4B 7B 2D 5D 8D J J")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pl.Hand = domain.Hand{Concealed: mixed}

	// A kong and two pungs of neutral rank each want identical tiles; a
	// spread of different ranks per suit is not a win.
	if _, err := svc.DeclareWin(game, "p3"); !errors.Is(err, ErrNotAWin) {
		t.Fatalf("err = %v, want ErrNotAWin", err)
	}
	if game.TurnState == domain.Won {
		t.Fatal("game marked won on a mixed-rank hand")
	}

	winning, err := domain.ParseTiles("F1 F2 3C 3C 3C 3C 7B 7B 7B 2D 2D 2D J J")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pl.Hand = domain.Hand{Concealed: winning}
	if _, err := svc.DeclareWin(game, "p3"); err != nil {
		t.Fatalf("DeclareWin: %v", err)
	}
	if game.Winner != "p3" {
		t.Fatalf("winner = %s, want p3", game.Winner)
	}
}

func TestAnalyzeRanksPatterns(t *testing.T) {
	svc, game := newTestService(t)
	recs, err := svc.Analyze(game, "p1")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("recommendations = %d, want one per catalog pattern", len(recs))
	}
	if recs[0].Pattern.ID != "winds-and-dragons" {
		t.Errorf("pattern = %s", recs[0].Pattern.ID)
	}
}
