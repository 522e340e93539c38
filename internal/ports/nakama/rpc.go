package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"mjcopilot/internal/analysis"
	"mjcopilot/internal/config"
	"mjcopilot/internal/domain"
	"mjcopilot/internal/pattern"

	"github.com/heroiclabs/nakama-common/runtime"
)

// FindTableResponse is the payload returned to clients requesting a table.
type FindTableResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcFindTable, rpcFindTable); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcAnalyzeHand, rpcAnalyzeHand)
}

// rpcFindTable searches for a lobby table with open seats, creating one when
// none exists.
func rpcFindTable(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 1
	authoritative := true
	labelQuery := fmt.Sprintf("+label.%s:>=1 +label.state:lobby +label.game:%s", MatchLabelKey_OpenSeats, MatchNameMahjong)
	minSize := 0
	maxSize := 4

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		logger.Error("rpcFindTable [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}

	if len(matches) > 0 {
		resp, _ := json.Marshal(FindTableResponse{MatchID: matches[0].MatchId})
		logger.Info("rpcFindTable [User:%s]: Found existing match %s", userID, matches[0].MatchId)
		return string(resp), nil
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameMahjong, nil)
	if err != nil {
		logger.Error("rpcFindTable [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}

	resp, _ := json.Marshal(FindTableResponse{MatchID: matchID, IsNew: true})
	logger.Info("rpcFindTable [User:%s]: Created new match %s", userID, matchID)
	return string(resp), nil
}

// AnalyzeHandRequest is the stateless analysis payload: tile ids for the
// requester's hand plus optional table context.
type AnalyzeHandRequest struct {
	Tiles   []string `json:"tiles"`
	Exposed []string `json:"exposed,omitempty"`
	// Discarded lists unclaimed discards visible on the table.
	Discarded []string `json:"discarded,omitempty"`
}

// rpcAnalyzeHand ranks the card against a hand supplied in the request. It
// needs no live match: clients can analyze a physical table mid-game.
func rpcAnalyzeHand(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var request AnalyzeHandRequest
	if err := json.Unmarshal([]byte(payload), &request); err != nil {
		return "", runtime.NewError("malformed analyze request", 3)
	}

	catalog, err := pattern.LoadCatalog(config.GetGameConfig().CatalogPath)
	if err != nil {
		logger.Error("rpcAnalyzeHand: catalog load failed: %v", err)
		return "", runtime.NewError("pattern catalog unavailable", 13)
	}

	concealed, err := parseTileIDs(request.Tiles)
	if err != nil {
		return "", runtime.NewError(err.Error(), 3)
	}
	exposed, err := parseTileIDs(request.Exposed)
	if err != nil {
		return "", runtime.NewError(err.Error(), 3)
	}

	pile := &domain.DiscardPile{}
	discarded, err := parseTileIDs(request.Discarded)
	if err != nil {
		return "", runtime.NewError(err.Error(), 3)
	}
	now := time.Now()
	for _, tile := range discarded {
		pile.Add(tile, "", now)
	}

	hand := &domain.Hand{Concealed: concealed}
	recs := analysis.AnalyzeHand(catalog, hand, exposed, pile)

	result := AnalysisResult{}
	for _, rec := range recs {
		result.Recommendations = append(result.Recommendations, summarize(rec))
	}
	if len(recs) > 0 {
		for _, t := range analysis.SuggestDiscards(hand, recs[0]) {
			result.DiscardSuggestion = append(result.DiscardSuggestion, t.String())
		}
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", runtime.NewError("failed to marshal analysis", 13)
	}
	return string(out), nil
}

func parseTileIDs(ids []string) ([]domain.Tile, error) {
	tiles := make([]domain.Tile, 0, len(ids))
	for _, id := range ids {
		tile, err := domain.ParseTile(id)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, tile)
	}
	return tiles, nil
}
