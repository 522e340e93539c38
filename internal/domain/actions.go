package domain

import (
	"fmt"
	"time"
)

// ActionType names the player actions the state machine understands.
type ActionType string

const (
	ActionDraw      ActionType = "draw"
	ActionDiscard   ActionType = "discard"
	ActionCallPung  ActionType = "call_pung"
	ActionCallKong  ActionType = "call_kong"
	ActionCallQuint ActionType = "call_quint"
	ActionPass      ActionType = "pass"
)

// ValidActionTypes lists every recognized action, in the order reported to
// clients that send an unknown action.
var ValidActionTypes = []ActionType{
	ActionDraw, ActionDiscard, ActionCallPung, ActionCallKong, ActionCallQuint, ActionPass,
}

// ViolationCode classifies why an action is illegal.
type ViolationCode string

const (
	CodePlayerNotFound    ViolationCode = "player_not_found"
	CodeUnknownAction     ViolationCode = "unknown_action"
	CodeSequenceViolation ViolationCode = "sequence_violation"
	CodeResourceExhausted ViolationCode = "resource_exhausted"
	CodeInvalidCallTarget ViolationCode = "invalid_call_target"
)

// Violation is one structured reason an action failed validation.
type Violation struct {
	Code    ViolationCode
	Message string
}

func (v Violation) Error() string {
	return v.Message
}

// ActionPayload carries the optional parameters of an action: the tile to
// discard, or a free-form reason for a pass.
type ActionPayload struct {
	Tile   *Tile
	Reason string
}

// ValidationResult is the outcome of ValidateAction. It is always populated,
// never an error: clients can self-correct from the alternatives list.
type ValidationResult struct {
	IsValid            bool
	Violations         []Violation
	AlternativeActions []ActionType
}

// ActionResult is the outcome of ExecuteAction.
type ActionResult struct {
	Success        bool
	Action         ActionType
	PlayerID       string
	Data           map[string]any
	WallUpdated    bool
	HandUpdated    bool
	DiscardUpdated bool
	NextPlayer     string
	Err            error
}

// ValidateAction checks an action for legality without mutating anything.
// Checks run in order: the player exists, the action is recognized, the
// action is legal in the current state for this actor. An invalid result
// carries the actions that would currently be legal as alternatives.
func (g *Game) ValidateAction(playerID string, action ActionType, payload ActionPayload) ValidationResult {
	if _, ok := g.Players[playerID]; !ok {
		return ValidationResult{
			IsValid:    false,
			Violations: []Violation{{CodePlayerNotFound, fmt.Sprintf("Player %s is not in this game", playerID)}},
		}
	}

	if !isKnownAction(action) {
		return ValidationResult{
			IsValid:            false,
			Violations:         []Violation{{CodeUnknownAction, fmt.Sprintf("Unknown action %q", action)}},
			AlternativeActions: append([]ActionType{}, ValidActionTypes...),
		}
	}

	violations := g.checkAction(playerID, action, payload)
	if len(violations) == 0 {
		return ValidationResult{IsValid: true}
	}
	return ValidationResult{
		IsValid:            false,
		Violations:         violations,
		AlternativeActions: g.legalActionsFor(playerID),
	}
}

// checkAction performs the state-legality checks for a recognized action and
// an existing player. It is pure and never builds alternatives.
func (g *Game) checkAction(playerID string, action ActionType, payload ActionPayload) []Violation {
	player := g.Players[playerID]

	if action == ActionPass {
		// Pass is always valid.
		return nil
	}

	if g.IsTerminal() || g.Phase != PhasePlaying {
		return []Violation{{CodeSequenceViolation, "Game is not in the playing phase"}}
	}

	switch action {
	case ActionDraw:
		if playerID != g.CurrentPlayer() {
			return []Violation{{CodeSequenceViolation, "Only the current player may draw"}}
		}
		if g.TurnState != AwaitingDraw {
			return []Violation{{CodeSequenceViolation, "Not awaiting a draw"}}
		}
		if g.Wall.IsExhausted() {
			return []Violation{{CodeResourceExhausted, "No tiles available"}}
		}

	case ActionDiscard:
		if playerID != g.CurrentPlayer() {
			return []Violation{{CodeSequenceViolation, "Only the current player may discard"}}
		}
		if !player.HasDrawn {
			return []Violation{{CodeSequenceViolation, "Must draw before discarding"}}
		}
		if payload.Tile == nil {
			return []Violation{{CodeSequenceViolation, "Discard requires a tile"}}
		}
		if player.Hand.Count(*payload.Tile) == 0 {
			return []Violation{{CodeSequenceViolation, fmt.Sprintf("Tile %s is not in the concealed hand", payload.Tile)}}
		}

	case ActionCallPung, ActionCallKong, ActionCallQuint:
		return g.checkCall(player, action)
	}

	return nil
}

func (g *Game) checkCall(player *Player, action ActionType) []Violation {
	last := g.Discards.Last()
	if g.Discards.Len() == 0 || last == nil || last.ClaimedBy != "" {
		return []Violation{{CodeInvalidCallTarget, "No tiles available in discard pile"}}
	}
	if g.TurnState != AwaitingCalls {
		return []Violation{{CodeSequenceViolation, "No discard is open for calls"}}
	}
	if player.ID == last.PlayerID {
		return []Violation{{CodeInvalidCallTarget, "Cannot call your own discard"}}
	}
	if last.Tile.IsJoker() || last.Tile.IsFlower() {
		return []Violation{{CodeInvalidCallTarget, fmt.Sprintf("Tile %s cannot be called", last.Tile)}}
	}

	// The caller must hold the matching tiles to complete the meld; concealed
	// jokers may stand in for missing copies.
	need := MeldSize(meldForCall(action)) - 1
	have := player.Hand.Count(last.Tile)
	jokers := player.Hand.CountJokers()
	if have+jokers < need {
		return []Violation{{CodeInvalidCallTarget,
			fmt.Sprintf("Need %d matching tiles for %s, hand has %d plus %d jokers", need, action, have, jokers)}}
	}
	return nil
}

// ExecuteAction re-validates and then applies the action atomically. On
// failure no state is mutated, except that a draw against an empty wall also
// moves the game to its WallExhausted terminal state.
func (g *Game) ExecuteAction(playerID string, action ActionType, payload ActionPayload) ActionResult {
	res := ActionResult{Action: action, PlayerID: playerID, Data: map[string]any{}}

	validation := g.ValidateAction(playerID, action, payload)
	if !validation.IsValid {
		first := validation.Violations[0]
		res.Err = first
		if first.Code == CodeResourceExhausted {
			g.markWallExhausted()
		}
		return res
	}

	player := g.Players[playerID]

	switch action {
	case ActionDraw:
		tile, err := g.Wall.Draw()
		if err != nil {
			g.markWallExhausted()
			res.Err = err
			return res
		}
		player.Hand.Add(tile)
		player.HasDrawn = true
		g.TurnState = AwaitingDiscard
		res.Data["tile"] = tile.String()
		res.WallUpdated = true
		res.HandUpdated = true

	case ActionDiscard:
		tile := *payload.Tile
		player.Hand.RemoveOne(tile)
		g.Discards.Add(tile, playerID, time.Now())
		player.HasDrawn = false
		g.advance()
		g.TurnState = AwaitingCalls
		res.Data["tile"] = tile.String()
		res.HandUpdated = true
		res.DiscardUpdated = true

	case ActionCallPung, ActionCallKong, ActionCallQuint:
		claimed := g.Discards.Last().Tile
		g.applyCall(player, action)
		res.Data["tile"] = claimed.String()
		res.Data["meld"] = string(meldForCall(action))
		res.HandUpdated = true
		res.DiscardUpdated = true

	case ActionPass:
		if g.TurnState == AwaitingCalls {
			// The turn already advanced on the discard; passing closes the
			// call window for the new current player to draw.
			g.TurnState = AwaitingDraw
		} else if !g.IsTerminal() && g.Phase == PhasePlaying {
			g.advance()
		}
		if payload.Reason != "" {
			res.Data["reason"] = payload.Reason
		}
	}

	res.Success = true
	res.NextPlayer = g.CurrentPlayer()
	return res
}

// applyCall claims the pending discard into an exposed meld and hands the
// caller the turn; they must discard next.
func (g *Game) applyCall(player *Player, action ActionType) {
	last := g.Discards.Last()
	kind := meldForCall(action)
	need := MeldSize(kind) - 1

	used := 0
	for used < need && player.Hand.RemoveOne(last.Tile) {
		used++
	}
	jokers := 0
	for used < need {
		player.Hand.RemoveOne(JokerTile)
		jokers++
		used++
	}

	player.Hand.Melds = append(player.Hand.Melds, Meld{
		Kind:        kind,
		Tile:        last.Tile,
		Jokers:      jokers,
		ClaimedFrom: last.PlayerID,
	})
	last.ClaimedBy = player.ID

	g.setCurrent(player.ID)
	// A call replaces the draw for this turn.
	player.HasDrawn = true
	g.TurnState = AwaitingDiscard
}

// legalActionsFor lists the actions the player could take right now, offered
// as alternatives alongside a failed validation.
func (g *Game) legalActionsFor(playerID string) []ActionType {
	player := g.Players[playerID]
	var out []ActionType
	for _, action := range ValidActionTypes {
		payload := ActionPayload{}
		if action == ActionDiscard {
			if len(player.Hand.Concealed) == 0 {
				continue
			}
			// Use a held tile so the payload check passes.
			payload.Tile = &player.Hand.Concealed[0]
		}
		if len(g.checkAction(playerID, action, payload)) == 0 {
			out = append(out, action)
		}
	}
	return out
}

func isKnownAction(action ActionType) bool {
	for _, a := range ValidActionTypes {
		if a == action {
			return true
		}
	}
	return false
}

func meldForCall(action ActionType) MeldKind {
	switch action {
	case ActionCallKong:
		return MeldKong
	case ActionCallQuint:
		return MeldQuint
	default:
		return MeldPung
	}
}
