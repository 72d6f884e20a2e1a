package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/riskibarqy/league-vault/internal/domain/league"
	"github.com/riskibarqy/league-vault/internal/platform/id"
	"github.com/riskibarqy/league-vault/internal/platform/logging"
)

type LeagueService struct {
	store     league.Repository
	publisher Publisher
	idGen     id.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewLeagueService(store league.Repository, publisher Publisher, idGen id.Generator, logger *logging.Logger) *LeagueService {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &LeagueService{
		store:     store,
		publisher: publisher,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *LeagueService) Get(ctx context.Context) (league.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Get")
	defer span.End()

	state, err := s.store.Load(ctx)
	if err != nil {
		return league.State{}, fmt.Errorf("load league: %w", err)
	}
	return state, nil
}

// Save replaces the league document. The scheduler markers always come from
// the stored document; whatever the caller sent for them is ignored.
func (s *LeagueService) Save(ctx context.Context, next league.State) (league.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Save")
	defer span.End()

	saved, err := s.store.Update(ctx, func(current *league.State) (bool, error) {
		*current = next.WithMarkersFrom(*current)
		return true, nil
	})
	if err != nil {
		return league.State{}, fmt.Errorf("save league: %w", err)
	}

	publishLeagueUpdated(ctx, s.publisher, ReasonSaveLeague, nil)
	return saved, nil
}

type PlaceBidInput struct {
	Player     string
	Team       string
	Amount     float64
	Position   string
	AuctionKey string
}

func (s *LeagueService) PlaceBid(ctx context.Context, input PlaceBidInput) (league.Bid, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.PlaceBid")
	defer span.End()

	input.Player = strings.TrimSpace(input.Player)
	input.Team = strings.TrimSpace(input.Team)
	input.AuctionKey = strings.TrimSpace(input.AuctionKey)
	switch {
	case input.Player == "":
		return league.Bid{}, fmt.Errorf("%w: player is required", ErrInvalidInput)
	case input.Team == "":
		return league.Bid{}, fmt.Errorf("%w: team is required", ErrInvalidInput)
	case math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || input.Amount < 0:
		return league.Bid{}, fmt.Errorf("%w: amount must be a non-negative number", ErrInvalidInput)
	}

	bidID, err := s.idGen.NewID()
	if err != nil {
		return league.Bid{}, fmt.Errorf("generate bid id: %w", err)
	}
	bid := league.Bid{
		ID:         bidID,
		Player:     input.Player,
		Team:       input.Team,
		Amount:     input.Amount,
		Position:   league.ParsePosition(input.Position),
		Timestamp:  s.now().UnixMilli(),
		AuctionKey: input.AuctionKey,
	}

	_, err = s.store.Update(ctx, func(state *league.State) (bool, error) {
		if state.Settings.Frozen() {
			return false, fmt.Errorf("%w: league is frozen", ErrConflict)
		}
		if state.FindTeam(bid.Team) < 0 {
			return false, fmt.Errorf("%w: team=%s", ErrNotFound, bid.Team)
		}
		state.FreeAgents = append(state.FreeAgents, bid)
		return true, nil
	})
	if err != nil {
		return league.Bid{}, fmt.Errorf("place bid: %w", err)
	}

	s.logger.InfoContext(ctx, "free agent bid placed",
		"bid_id", bid.ID,
		"team", bid.Team,
		"player", bid.Player,
		"amount", bid.Amount,
	)
	publishLeagueUpdated(ctx, s.publisher, ReasonBidPlaced, map[string]any{"bidId": bid.ID})
	return bid, nil
}
