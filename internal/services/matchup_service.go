/**
 * @description
 * Matchup read paths: the model-context assembler and the aggregate
 * matchup board (games joined with picks and team metadata).
 *
 * @dependencies
 * - backend/internal/models
 *
 * @notes
 * - Both read paths degrade to empty results on persistence errors instead
 *   of failing the caller. An empty context means "nothing to predict" and
 *   an empty board means "no games today".
 */

package services

import (
	"context"
	"time"

	"github.com/sharpline/backend/internal/logger"
	"github.com/sharpline/backend/internal/models"
)

// PickStore is the persistence surface for prediction rows
type PickStore interface {
	InsertPick(ctx context.Context, league models.League, pick models.Pick) error
	AllPicks(ctx context.Context, league models.League) ([]models.Pick, error)
}

// TeamDirectory resolves team metadata by short name
type TeamDirectory interface {
	TeamsByShortName(ctx context.Context, league models.League) (map[string]models.Team, error)
}

// AllMatchups is the combined board across both leagues
type AllMatchups struct {
	NBAGames []models.MatchupBoardEntry `json:"NBA_games"`
	NFLGames []models.MatchupBoardEntry `json:"NFL_games"`
}

type MatchupService struct {
	Games GameStore
	Picks PickStore
	Teams TeamDirectory
	Now   func() time.Time
}

func NewMatchupService(games GameStore, picks PickStore, teams TeamDirectory) *MatchupService {
	return &MatchupService{
		Games: games,
		Picks: picks,
		Teams: teams,
		Now:   time.Now,
	}
}

// GetModelContext returns every persisted game for the league, with no date
// bound: evaluation scores whatever has accumulated, and the scheduled jobs
// manage staleness through their cadence. Read errors degrade to an empty
// context.
func (s *MatchupService) GetModelContext(ctx context.Context, league models.League) []models.Game {
	games, err := s.Games.AllGames(ctx, league)
	if err != nil {
		logger.Error("Postgres error reading %s model context: %v", league.Upper(), err)
		return nil
	}
	return games
}

// GetMatchupBoard returns every game at or after the start of the current
// UTC day, joined with its picks and home/away team metadata. Persistence
// errors yield an empty board, never a failure.
func (s *MatchupService) GetMatchupBoard(ctx context.Context, league models.League) []models.MatchupBoardEntry {
	dayStart := startOfUTCDay(s.Now())

	games, err := s.Games.GamesFrom(ctx, league, dayStart)
	if err != nil {
		logger.Error("Postgres error fetching today's %s games: %v", league.Upper(), err)
		return []models.MatchupBoardEntry{}
	}
	if len(games) == 0 {
		return []models.MatchupBoardEntry{}
	}

	picks, err := s.Picks.AllPicks(ctx, league)
	if err != nil {
		logger.Error("Postgres error fetching %s picks for board: %v", league.Upper(), err)
		picks = nil
	}

	teams, err := s.Teams.TeamsByShortName(ctx, league)
	if err != nil {
		logger.Error("Postgres error fetching %s teams for board: %v", league.Upper(), err)
		teams = nil
	}

	board := make([]models.MatchupBoardEntry, 0, len(games))
	for _, game := range games {
		entry := models.MatchupBoardEntry{
			Game:  game,
			Picks: []models.Pick{},
		}
		for _, pick := range picks {
			if pick.HomeTeam == game.HomeTeam && pick.AwayTeam == game.AwayTeam {
				entry.Picks = append(entry.Picks, pick)
			}
		}
		if home, ok := teams[game.HomeTeam]; ok {
			entry.HomeDetails = &home
		}
		if away, ok := teams[game.AwayTeam]; ok {
			entry.AwayDetails = &away
		}
		board = append(board, entry)
	}
	return board
}

// GetAllMatchups assembles the board for both leagues.
func (s *MatchupService) GetAllMatchups(ctx context.Context) AllMatchups {
	return AllMatchups{
		NBAGames: s.GetMatchupBoard(ctx, models.LeagueNBA),
		NFLGames: s.GetMatchupBoard(ctx, models.LeagueNFL),
	}
}

func startOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
