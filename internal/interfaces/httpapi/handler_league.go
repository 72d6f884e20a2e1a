package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/league-vault/internal/domain/league"
	"github.com/riskibarqy/league-vault/internal/usecase"
)

type placeBidRequest struct {
	Player     string   `json:"player" validate:"required,max=120"`
	Team       string   `json:"team" validate:"required,max=120"`
	Amount     *float64 `json:"amount" validate:"required,gte=0"`
	Position   string   `json:"position" validate:"omitempty,oneof=F D f d"`
	AuctionKey string   `json:"auctionKey" validate:"omitempty,max=120"`
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	state, err := h.leagueService.Get(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get league failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}

// SaveLeague replaces the whole document. The body is coerced the same way a
// stored file is, so loosely typed clients keep working.
func (h *Handler) SaveLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveLeague")
	defer span.End()

	var raw map[string]any
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if raw == nil {
		writeError(ctx, w, fmt.Errorf("%w: league document must be a JSON object", usecase.ErrInvalidInput))
		return
	}

	saved, err := h.leagueService.Save(ctx, league.Normalize(raw))
	if err != nil {
		h.logger.ErrorContext(ctx, "save league failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, saved)
}

func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlaceBid")
	defer span.End()

	var req placeBidRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	bid, err := h.leagueService.PlaceBid(ctx, usecase.PlaceBidInput{
		Player:     req.Player,
		Team:       req.Team,
		Amount:     *req.Amount,
		Position:   req.Position,
		AuctionKey: req.AuctionKey,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "place bid failed", "team", req.Team, "player", req.Player, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, bid)
}
