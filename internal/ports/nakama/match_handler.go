package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"mjcopilot/internal/analysis"
	"mjcopilot/internal/app"
	"mjcopilot/internal/config"
	"mjcopilot/internal/domain"
	"mjcopilot/internal/pattern"

	"github.com/heroiclabs/nakama-common/runtime"
)

// callWindowTicks is how many loop ticks a discard stays claimable before the
// server closes the window on the current player's behalf.
const callWindowTicks = 5

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats     [4]string                   `json:"seats"` // user IDs, empty string means seat is empty
	OwnerSeat int                         `json:"owner_seat"`
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"` // UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"`
	Game      *domain.Game                `json:"-"` // nil while in the lobby

	// CallWindowSince is the tick the open call window was created, 0 when
	// no window is open.
	CallWindowSince int64 `json:"call_window_since"`

	// TurnKey identifies the player+state the turn clock is timing;
	// TurnStartedTick is when that key was first seen.
	TurnKey         string `json:"turn_key"`
	TurnStartedTick int64  `json:"turn_started_tick"`

	// EmptyTicks counts consecutive loop ticks with no connected players.
	EmptyTicks int `json:"empty_ticks"`
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

// findFirstOccupiedSeat returns the first occupied seat index or -1 if none.
func findFirstOccupiedSeat(seats []string) int {
	for i, userID := range seats {
		if userID != "" {
			return i
		}
	}
	return -1
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := config.GetGameConfig()
	catalog, err := pattern.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Warn("MatchInit: Could not load pattern catalog: %v", err)
	}

	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(catalog, nil),
		OwnerSeat: -1,
	}

	labelBytes, err := json.Marshal(MatchLabel{
		Open:  state.GetOpenSeatsCount(),
		State: "lobby",
		Game:  MatchNameMahjong,
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	// A user whose seat is still bound may reconnect at any time, including
	// mid-game.
	if seatOf(matchState.Seats[:], presence.GetUserId()) >= 0 {
		return state, true, ""
	}
	if matchState.Game != nil {
		return state, false, "Game in progress"
	}
	if matchState.GetOpenSeatsCount() <= 0 || matchState.GetOccupiedSeatCount() >= config.GetGameConfig().MaxPlayers {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		// A rejoining user keeps the seat MatchLeave held for them.
		if seatOf(matchState.Seats[:], p.GetUserId()) >= 0 {
			continue
		}

		assigned := false
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}
		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", p.GetUserId())
		}
	}

	if matchState.OwnerSeat < 0 || matchState.Seats[matchState.OwnerSeat] == "" {
		matchState.OwnerSeat = findFirstOccupiedSeat(matchState.Seats[:])
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		for i, seatUserID := range matchState.Seats {
			if seatUserID == p.GetUserId() {
				// In-game the seat stays bound to the user so a rejoin can
				// resume; in the lobby it is freed.
				if matchState.Game == nil {
					matchState.Seats[i] = ""
				}
				logger.Debug("MatchLeave: User %s left seat %d.", p.GetUserId(), i)
				break
			}
		}
	}

	// An empty table is not terminated here: MatchLoop counts empty ticks so
	// a quick reconnect can still resume.
	if matchState.OwnerSeat < 0 || matchState.Seats[matchState.OwnerSeat] == "" {
		matchState.OwnerSeat = findFirstOccupiedSeat(matchState.Seats[:])
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	if len(matchState.Presences) == 0 {
		matchState.EmptyTicks++
		if matchState.EmptyTicks >= config.GetGameConfig().EmptyTicksToStop {
			logger.Info("MatchLoop: Terminating match after %d empty ticks.", matchState.EmptyTicks)
			return nil
		}
	} else {
		matchState.EmptyTicks = 0
	}

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpAction:
			mh.handleAction(ctx, matchState, dispatcher, logger, msg)
		case OpDeclareWin:
			mh.handleDeclareWin(ctx, matchState, dispatcher, logger, msg)
		case OpAnalyze:
			mh.handleAnalyze(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.expireCallWindow(ctx, matchState, dispatcher, logger)
	mh.enforceTurnClock(ctx, matchState, dispatcher, logger)
	return matchState
}

// enforceTurnClock auto-plays for a player whose turn has run past the
// configured duration: an unstarted turn is passed over, a held draw is
// discarded. The open-call window has its own shorter clock in
// expireCallWindow. The tick rate is 1/s, so ticks equal seconds.
func (mh *matchHandler) enforceTurnClock(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	g := state.Game
	if g == nil || g.IsTerminal() {
		state.TurnKey = ""
		return
	}

	current := g.CurrentPlayer()
	key := current + "/" + string(g.TurnState)
	if key != state.TurnKey {
		state.TurnKey = key
		state.TurnStartedTick = state.Tick
		return
	}
	if state.Tick-state.TurnStartedTick < int64(config.TurnDuration()) {
		return
	}

	var events []app.Event
	var err error
	switch g.TurnState {
	case domain.AwaitingDraw:
		events, err = state.App.HandleAction(g, current, domain.ActionPass, domain.ActionPayload{Reason: "turn clock expired"})
	case domain.AwaitingDiscard:
		pl := g.Players[current]
		if pl == nil || len(pl.Hand.Concealed) == 0 {
			return
		}
		tile := pl.Hand.Concealed[len(pl.Hand.Concealed)-1]
		events, err = state.App.HandleAction(g, current, domain.ActionDiscard, domain.ActionPayload{Tile: &tile, Reason: "turn clock expired"})
	default:
		return
	}
	if err != nil {
		logger.Error("enforceTurnClock: forced %s for %s failed: %v", g.TurnState, current, err)
		return
	}
	state.TurnKey = ""
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}

// expireCallWindow auto-passes for the current player once an open discard has
// gone unclaimed for callWindowTicks, so one silent client cannot stall the
// table.
func (mh *matchHandler) expireCallWindow(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil || state.Game.TurnState != domain.AwaitingCalls {
		state.CallWindowSince = 0
		return
	}
	if state.CallWindowSince == 0 {
		state.CallWindowSince = state.Tick
		return
	}
	if state.Tick-state.CallWindowSince < callWindowTicks {
		return
	}

	state.CallWindowSince = 0
	current := state.Game.CurrentPlayer()
	events, err := state.App.HandleAction(state.Game, current, domain.ActionPass, domain.ActionPayload{Reason: "call window expired"})
	if err != nil {
		logger.Error("expireCallWindow: auto-pass failed: %v", err)
		return
	}
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := seatOf(state.Seats[:], senderID)

	logger.Info("StartGame: Request from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the table owner may start the game")
		return
	}
	if state.Game != nil {
		mh.sendError(state, dispatcher, logger, senderID, 409, "game already in progress")
		return
	}
	if state.GetOccupiedSeatCount() < config.GetGameConfig().MinPlayers {
		mh.sendError(state, dispatcher, logger, senderID, 400, "not enough players to start")
		return
	}

	game, events, err := state.App.StartGame(state.Seats[:])
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 500, err.Error())
		return
	}

	state.Game = game
	state.CallWindowSince = 0
	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "game not started")
		return
	}

	var request ActionRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleAction: malformed request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed action request")
		return
	}
	payload, err := request.Payload()
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	events, err := state.App.HandleAction(state.Game, senderID, domain.ActionType(request.Action), payload)
	if err != nil {
		logger.Warn("handleAction: User %s action %s failed: %v", senderID, request.Action, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	// Any processed action resets the call window clock; expireCallWindow
	// restarts it if a window is still open.
	state.CallWindowSince = 0
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleDeclareWin(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "game not started")
		return
	}

	events, err := state.App.DeclareWin(state.Game, senderID)
	if err != nil {
		logger.Info("handleDeclareWin: User %s declaration rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}

// RecommendationSummary is the wire form of one ranked pattern suggestion.
type RecommendationSummary struct {
	PatternID      string   `json:"pattern_id"`
	Description    string   `json:"description,omitempty"`
	TilesMatched   int      `json:"tiles_matched"`
	Score          float64  `json:"score"`
	Recommendation string   `json:"recommendation"`
	JokersNeeded   int      `json:"jokers_needed"`
	MissingTiles   []string `json:"missing_tiles,omitempty"`
}

// AnalysisResult is the private payload answering an OpAnalyze request.
type AnalysisResult struct {
	UserID            string                  `json:"user_id"`
	Recommendations   []RecommendationSummary `json:"recommendations"`
	DiscardSuggestion []string                `json:"discard_suggestion,omitempty"`
}

func (mh *matchHandler) handleAnalyze(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "game not started")
		return
	}

	recs, err := state.App.Analyze(state.Game, senderID)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	result := AnalysisResult{UserID: senderID}
	for _, rec := range recs {
		result.Recommendations = append(result.Recommendations, summarize(rec))
	}
	if len(recs) > 0 {
		pl := state.Game.Players[senderID]
		for _, t := range analysis.SuggestDiscards(&pl.Hand, recs[0]) {
			result.DiscardSuggestion = append(result.DiscardSuggestion, t.String())
		}
	}

	mh.sendPrivate(state, dispatcher, logger, senderID, OpAnalysisResult, result)
}

func summarize(rec analysis.Recommendation) RecommendationSummary {
	summary := RecommendationSummary{
		PatternID:      rec.Pattern.ID,
		Description:    rec.Pattern.Description,
		TilesMatched:   rec.Match.TileCount,
		Score:          rec.Completion.Score,
		Recommendation: rec.Completion.Recommendation,
		JokersNeeded:   rec.JokerPlan.JokersNeeded,
	}
	for _, m := range rec.Match.Missing {
		summary.MissingTiles = append(summary.MissingTiles, m.Tile.String())
	}
	return summary
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var playerStates []PlayerState
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}

		displayName := userID
		if p, exists := state.Presences[userID]; exists {
			displayName = p.GetUsername()
		}

		tilesRemaining := 0
		if state.Game != nil {
			if pl, ok := state.Game.Players[userID]; ok {
				tilesRemaining = len(pl.Hand.Concealed)
			}
		}

		playerStates = append(playerStates, PlayerState{
			UserID:         userID,
			Seat:           i,
			IsOwner:        i == state.OwnerSeat,
			TilesRemaining: tilesRemaining,
			DisplayName:    displayName,
		})
	}

	snapshot := MatchStateSnapshot{
		Seats:     state.Seats[:],
		OwnerSeat: state.OwnerSeat,
		Tick:      state.Tick,
		Players:   playerStates,
	}
	bytes, _ := json.Marshal(snapshot)
	dispatcher.BroadcastMessage(OpPlayerJoined, bytes, nil, nil, true)
}

// dispatchEvent converts an app event into a Nakama broadcast, honoring the
// event's recipients list.
func (mh *matchHandler) dispatchEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	switch ev.Kind {
	case app.EventGameStarted:
		opCode = OpGameStarted
	case app.EventHandDealt:
		opCode = OpHandDealt
	case app.EventTileDrawn:
		opCode = OpTileDrawn
	case app.EventTileDiscarded:
		opCode = OpTileDiscarded
	case app.EventMeldClaimed:
		opCode = OpMeldClaimed
	case app.EventTurnPassed:
		opCode = OpTurnPassed
	case app.EventActionRejected:
		opCode = OpActionRejected
	case app.EventGameEnded:
		opCode = OpGameEnded
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	if ev.Kind == app.EventGameEnded {
		// Game over: back to the lobby with the seats kept.
		state.Game = nil
		state.CallWindowSince = 0
		mh.updateLabel(state, dispatcher, logger)
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted events with no connected recipient must not fall back to a
		// broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// sendPrivate marshals and sends a payload to a single connected user.
func (mh *matchHandler) sendPrivate(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, opCode int64, payload any) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal private payload: %v", err)
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send to %s: presence not found", userID)
		return
	}
	dispatcher.BroadcastMessage(opCode, bytes, []runtime.Presence{presence}, nil, true)
}

// sendError sends an ErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	mh.sendPrivate(state, dispatcher, logger, userID, OpGameError, ErrorEvent{Code: code, Message: message})
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	matchState := "lobby"
	if state.Game != nil {
		matchState = "playing"
	}

	labelBytes, err := json.Marshal(MatchLabel{
		Open:  state.GetOpenSeatsCount(),
		State: matchState,
		Game:  MatchNameMahjong,
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func seatOf(seats []string, userID string) int {
	for i, seatUserID := range seats {
		if seatUserID == userID {
			return i
		}
	}
	return -1
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
