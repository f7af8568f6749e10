package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Dosada05/fidel-league/league"
	"github.com/Dosada05/fidel-league/models"
	"github.com/Dosada05/fidel-league/repositories"
)

// Clock is the part of github.com/itbasis/go-clock the service needs.
type Clock interface {
	Now() time.Time
}

// StandingsPublisher receives the ordered standings after every change.
type StandingsPublisher interface {
	PublishStandings(teams []models.Team)
}

// ClearResult describes a wiped match history.
type ClearResult struct {
	Removed int    `json:"removed"`
	Backup  string `json:"backup,omitempty"`
}

type LeagueService interface {
	AddTeam(ctx context.Context, name string) (*models.Team, error)
	RecordMatch(ctx context.Context, in league.MatchInput) (*league.RecordResult, error)
	DeleteMatch(ctx context.Context, matchID int) ([]league.Skipped, error)
	Recompute(ctx context.Context) ([]league.Skipped, error)
	ClearMatches(ctx context.Context) (*ClearResult, error)

	ListTeams(ctx context.Context) ([]models.Team, error)
	ListMatches(ctx context.Context) ([]models.MatchRecord, error)
	PreviewMatch(ctx context.Context, winnerID, loserID int) (*league.Preview, error)
}

type leagueService struct {
	repo      repositories.LeagueRepository
	clock     Clock
	publisher StandingsPublisher
	logger    *slog.Logger

	// mu serialises every read-modify-write of the document.
	mu    sync.Mutex
	loads singleflight.Group
	// generation counts saves; readers only share a load within one generation.
	generation atomic.Uint64
}

func NewLeagueService(
	repo repositories.LeagueRepository,
	clock Clock,
	publisher StandingsPublisher,
	logger *slog.Logger,
) LeagueService {
	return &leagueService{
		repo:      repo,
		clock:     clock,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *leagueService) AddTeam(ctx context.Context, name string) (*models.Team, error) {
	var team models.Team
	standings, err := s.mutate(ctx, func(doc *models.LeagueDocument) error {
		var err error
		team, err = league.AddTeam(doc, name, s.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("team added", slog.Int("team_id", team.ID), slog.String("name", team.Name))
	s.publish(standings)
	return &team, nil
}

func (s *leagueService) RecordMatch(ctx context.Context, in league.MatchInput) (*league.RecordResult, error) {
	var res league.RecordResult
	_, err := s.mutate(ctx, func(doc *models.LeagueDocument) error {
		var err error
		res, err = league.RecordMatch(doc, in, s.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match recorded",
		slog.Int("match_id", res.Match.ID),
		slog.Int("winner_id", in.WinnerID),
		slog.Int("loser_id", in.LoserID),
		slog.Float64("delta_winner", res.Delta.Winner),
		slog.Float64("delta_loser", res.Delta.Loser),
	)
	s.publish(res.Standings)
	return &res, nil
}

func (s *leagueService) DeleteMatch(ctx context.Context, matchID int) ([]league.Skipped, error) {
	var skipped []league.Skipped
	standings, err := s.mutate(ctx, func(doc *models.LeagueDocument) error {
		var err error
		skipped, err = league.DeleteMatch(doc, matchID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match deleted", slog.Int("match_id", matchID))
	s.logSkipped("delete", skipped)
	s.publish(standings)
	return skipped, nil
}

func (s *leagueService) Recompute(ctx context.Context) ([]league.Skipped, error) {
	var skipped []league.Skipped
	standings, err := s.mutate(ctx, func(doc *models.LeagueDocument) error {
		skipped = league.Recompute(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("league recomputed", slog.Int("teams", len(standings)), slog.Int("skipped", len(skipped)))
	s.logSkipped("recompute", skipped)
	s.publish(standings)
	return skipped, nil
}

// ClearMatches copies the stored document aside before dropping the match
// history. An empty store has nothing to back up.
func (s *leagueService) ClearMatches(ctx context.Context) (*ClearResult, error) {
	var res ClearResult
	standings, err := s.mutate(ctx, func(doc *models.LeagueDocument) error {
		backup, err := s.repo.Backup(ctx, s.clock.Now())
		switch {
		case errors.Is(err, repositories.ErrLeagueNotFound):
		case err != nil:
			return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
		default:
			res.Backup = backup
		}
		res.Removed = league.ClearMatches(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("matches cleared", slog.Int("removed", res.Removed), slog.String("backup", res.Backup))
	s.publish(standings)
	return &res, nil
}

func (s *leagueService) ListTeams(ctx context.Context) ([]models.Team, error) {
	doc, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return league.ListTeams(doc), nil
}

func (s *leagueService) ListMatches(ctx context.Context) ([]models.MatchRecord, error) {
	doc, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return league.ListMatches(doc), nil
}

func (s *leagueService) PreviewMatch(ctx context.Context, winnerID, loserID int) (*league.Preview, error) {
	doc, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p, err := league.PreviewMatch(doc, winnerID, loserID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// mutate loads the document, applies fn and saves the result, all under the
// write lock. Nothing is saved when fn fails. It returns the standings after
// the change.
func (s *leagueService) mutate(ctx context.Context, fn func(doc *models.LeagueDocument) error) ([]models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load league", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w: %w", ErrPersistenceFailed, ErrLeagueLoadFailed, err)
	}

	if err := fn(doc); err != nil {
		return nil, err
	}

	err = s.repo.Save(ctx, doc)
	s.generation.Add(1)
	if err != nil {
		s.logger.Error("failed to save league", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w: %w", ErrPersistenceFailed, ErrLeagueSaveFailed, err)
	}

	return league.ListTeams(doc), nil
}

// snapshot returns a private copy of the stored document. Concurrent readers
// share one load, but never one started before a save that has since
// completed. The shared load outlives a cancelled caller.
func (s *leagueService) snapshot(ctx context.Context) (*models.LeagueDocument, error) {
	key := strconv.FormatUint(s.generation.Load(), 10)
	ch := s.loads.DoChan(key, func() (interface{}, error) {
		return s.repo.Load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.Error("failed to load league", slog.Any("error", res.Err))
			return nil, fmt.Errorf("%w: %w: %w", ErrPersistenceFailed, ErrLeagueLoadFailed, res.Err)
		}
		return res.Val.(*models.LeagueDocument).Clone(), nil
	}
}

func (s *leagueService) logSkipped(op string, skipped []league.Skipped) {
	for _, sk := range skipped {
		s.logger.Warn("match record skipped during replay",
			slog.String("operation", op),
			slog.Int("match_id", sk.MatchID),
			slog.String("reason", string(sk.Reason)),
		)
	}
}

func (s *leagueService) publish(standings []models.Team) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishStandings(standings)
}
