package nakama

import "mjcopilot/internal/domain"

const (
	// RpcFindTable is the Nakama RPC id clients call to find or create a table.
	RpcFindTable = "find_table"
	// RpcAnalyzeHand is the stateless hand-analysis RPC id.
	RpcAnalyzeHand = "analyze_hand"

	// MatchNameMahjong is the authoritative match handler name registered with Nakama.
	MatchNameMahjong = "mahjong_table"

	// MatchLabelKey_OpenSeats is the key for the open seats in the match label.
	MatchLabelKey_OpenSeats = "open"
)

// Op codes for client messages and server events. Payloads are JSON.
const (
	// Client -> Server
	OpStartGame  int64 = 1
	OpAction     int64 = 2
	OpDeclareWin int64 = 3
	OpAnalyze    int64 = 4

	// Server -> Client events
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpGameStarted    int64 = 103
	OpHandDealt      int64 = 104 // sent privately
	OpTileDrawn      int64 = 105
	OpTileDiscarded  int64 = 106
	OpMeldClaimed    int64 = 107
	OpTurnPassed     int64 = 108
	OpActionRejected int64 = 109 // sent privately
	OpGameEnded      int64 = 110
	OpAnalysisResult int64 = 111 // sent privately
	OpGameError      int64 = 112 // sent privately
)

// MatchLabel is the JSON label indexed by Nakama's match listing.
type MatchLabel struct {
	Open  int    `json:"open"`
	State string `json:"state"`
	Game  string `json:"game"`
}

// ActionRequest is the client payload for OpAction.
type ActionRequest struct {
	Action string `json:"action"`
	Tile   string `json:"tile,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Payload converts the request's optional fields into a domain action payload.
func (r ActionRequest) Payload() (domain.ActionPayload, error) {
	payload := domain.ActionPayload{Reason: r.Reason}
	if r.Tile != "" {
		tile, err := domain.ParseTile(r.Tile)
		if err != nil {
			return domain.ActionPayload{}, err
		}
		payload.Tile = &tile
	}
	return payload, nil
}

// ErrorEvent is sent privately when a request cannot be processed at all, as
// opposed to an action rejection which carries structured violations.
type ErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MatchStateSnapshot is broadcast whenever seating changes.
type MatchStateSnapshot struct {
	Seats     []string      `json:"seats"`
	OwnerSeat int           `json:"owner_seat"`
	Tick      int64         `json:"tick"`
	Players   []PlayerState `json:"players"`
}

// PlayerState is one occupied seat in a snapshot.
type PlayerState struct {
	UserID         string `json:"user_id"`
	Seat           int    `json:"seat"`
	IsOwner        bool   `json:"is_owner"`
	TilesRemaining int    `json:"tiles_remaining"`
	DisplayName    string `json:"display_name"`
}
