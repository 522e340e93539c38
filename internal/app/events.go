package app

import "mjcopilot/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventPlayerJoined   EventKind = "player_joined"
	EventPlayerLeft     EventKind = "player_left"
	EventGameStarted    EventKind = "game_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventTileDrawn      EventKind = "tile_drawn"
	EventTileDiscarded  EventKind = "tile_discarded"
	EventMeldClaimed    EventKind = "meld_claimed"
	EventTurnPassed     EventKind = "turn_passed"
	EventActionRejected EventKind = "action_rejected"
	EventGameEnded      EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string
	Seat   int
	Owner  bool
}

type PlayerLeftPayload struct {
	UserID string
}

type GameStartedPayload struct {
	Phase           domain.Phase
	FirstTurnUserID string
	WallRemaining   int
}

type HandDealtPayload struct {
	UserID string
	Tiles  []string
}

// TileDrawnPayload is split in two: the drawn tile goes only to the actor,
// the broadcast form carries an empty Tile.
type TileDrawnPayload struct {
	UserID        string
	Tile          string
	WallRemaining int
}

type TileDiscardedPayload struct {
	UserID         string
	Tile           string
	NextTurnUserID string
	// CallWindowOpen tells clients the discard may still be claimed.
	CallWindowOpen bool
}

type MeldClaimedPayload struct {
	UserID      string
	Tile        string
	Meld        string
	JokersUsed  int
	ClaimedFrom string
}

type TurnPassedPayload struct {
	UserID         string
	Reason         string
	NextTurnUserID string
}

type ActionRejectedPayload struct {
	UserID       string
	Action       domain.ActionType
	Violations   []domain.Violation
	Alternatives []domain.ActionType
}

type GameEndedPayload struct {
	Reason   string
	WinnerID string
	Pattern  string
}
