/**
 * @description
 * Schedule ingestion pipeline.
 * Fetches raw matchups from the odds feed (one call per league fetch date),
 * normalizes them into game rows, and persists them.
 *
 * @dependencies
 * - backend/internal/integrations/oddsfeed
 * - backend/internal/models
 *
 * @notes
 * - Two distinct persistence policies live here on purpose:
 *   RunScheduleJob bulk-inserts all-or-nothing; InsertScheduleLenient
 *   inserts row by row and swallows individual failures.
 * - A fetch failure for any single date fails the whole fetch; the NFL
 *   slate is only useful complete.
 */

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sharpline/backend/internal/integrations/oddsfeed"
	"github.com/sharpline/backend/internal/logger"
	"github.com/sharpline/backend/internal/models"
)

// OddsSource fetches raw matchups for one league and calendar date
type OddsSource interface {
	FetchMatchups(ctx context.Context, league, date string) ([]oddsfeed.RawMatchup, error)
}

// GameStore is the persistence surface the schedule and board flows consume
type GameStore interface {
	InsertGames(ctx context.Context, league models.League, games []models.Game) error
	AllGames(ctx context.Context, league models.League) ([]models.Game, error)
	GamesFrom(ctx context.Context, league models.League, from time.Time) ([]models.Game, error)
}

// ScheduleResult reports how many rows an ingestion run persisted
type ScheduleResult struct {
	Inserted int `json:"inserted"`
}

type ScheduleService struct {
	Feed  OddsSource
	Games GameStore
	Now   func() time.Time
}

func NewScheduleService(feed OddsSource, games GameStore) *ScheduleService {
	return &ScheduleService{
		Feed:  feed,
		Games: games,
		Now:   time.Now,
	}
}

// NormalizeMatchup maps one raw matchup to a game row.
// Selects the first odds quote; the system does not reconcile multiple
// sportsbook quotes. Pure.
func NormalizeMatchup(raw oddsfeed.RawMatchup) (models.Game, error) {
	if len(raw.Odds) == 0 {
		return models.Game{}, fmt.Errorf("matchup %s @ %s has no odds quotes", raw.AwayTeam.ShortName, raw.HomeTeam.ShortName)
	}
	if raw.HomeTeam.ShortName == "" || raw.AwayTeam.ShortName == "" {
		return models.Game{}, fmt.Errorf("matchup is missing a team short name")
	}

	eventDate, err := time.Parse(time.RFC3339, raw.ScheduledTime)
	if err != nil {
		return models.Game{}, fmt.Errorf("matchup %s @ %s has invalid scheduled time %q: %w",
			raw.AwayTeam.ShortName, raw.HomeTeam.ShortName, raw.ScheduledTime, err)
	}

	quote := raw.Odds[0]
	return models.Game{
		HomeTeam:       raw.HomeTeam.ShortName,
		AwayTeam:       raw.AwayTeam.ShortName,
		EventDate:      eventDate,
		HomeOddsML:     quote.MoneyLine.CurrentHomeOdds,
		AwayOddsML:     quote.MoneyLine.CurrentAwayOdds,
		HomeHandicap:   quote.PointSpread.CurrentHomeHandicap,
		AwayHandicap:   quote.PointSpread.CurrentAwayHandicap,
		HomeOddsSpread: quote.PointSpread.CurrentHomeOdds,
		AwayOddsSpread: quote.PointSpread.CurrentAwayOdds,
		OverUnderTotal: quote.OverUnder.CurrentTotal,
		OverOdd:        quote.OverUnder.CurrentOverOdd,
		UnderOdd:       quote.OverUnder.CurrentUnderOdd,
	}, nil
}

// FetchSchedule pulls the league's upcoming slate from the odds feed, one
// call per fetch date, concatenated in date order.
func (s *ScheduleService) FetchSchedule(ctx context.Context, league models.League) ([]oddsfeed.RawMatchup, error) {
	dates := league.FetchDates(s.Now())

	var all []oddsfeed.RawMatchup
	for _, date := range dates {
		matchups, err := s.Feed.FetchMatchups(ctx, league.Upper(), date)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s matchups for %s: %w", league.Upper(), date, err)
		}
		all = append(all, matchups...)
	}
	return all, nil
}

// RunScheduleJob fetches, normalizes and bulk-persists the league's slate.
// All-or-nothing: a bulk insert failure is logged and returned, with no
// partial count. Not idempotent; overlapping windows duplicate rows.
func (s *ScheduleService) RunScheduleJob(ctx context.Context, league models.League) (*ScheduleResult, error) {
	matchups, err := s.FetchSchedule(ctx, league)
	if err != nil {
		return nil, err
	}

	rows := make([]models.Game, 0, len(matchups))
	for _, matchup := range matchups {
		game, err := NormalizeMatchup(matchup)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize %s matchup: %w", league.Upper(), err)
		}
		rows = append(rows, game)
	}

	if err := s.Games.InsertGames(ctx, league, rows); err != nil {
		logger.Error("Postgres error inserting %s games: %v", league.Upper(), err)
		return nil, err
	}

	return &ScheduleResult{Inserted: len(rows)}, nil
}

// InsertScheduleLenient persists an already-fetched slate row by row,
// logging and skipping individual failures. Used by the schedule endpoint,
// which returns the raw feed payload regardless of persistence outcome.
func (s *ScheduleService) InsertScheduleLenient(ctx context.Context, league models.League, matchups []oddsfeed.RawMatchup) int {
	inserted := 0
	for _, matchup := range matchups {
		game, err := NormalizeMatchup(matchup)
		if err != nil {
			logger.Error("Skipping unnormalizable %s matchup: %v", league.Upper(), err)
			continue
		}
		if err := s.Games.InsertGames(ctx, league, []models.Game{game}); err != nil {
			logger.Error("Postgres error inserting %s game %s @ %s: %v", league.Upper(), game.AwayTeam, game.HomeTeam, err)
			continue
		}
		inserted++
	}
	return inserted
}
