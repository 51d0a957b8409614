/**
 * @description
 * GORM repository for the per-league games tables.
 * Ingestion writes whole slates in one bulk insert; reads back the
 * accumulated schedule for the model context and the matchup board.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/jackc/pgconn: Postgres error-code classification
 *
 * @notes
 * - Bulk inserts retry on deadlock/serialization failures (40P01/40001),
 *   mirroring concurrent ingestion against managed Postgres.
 * - No uniqueness constraint exists on games; overlapping ingestion windows
 *   produce duplicate rows.
 */

package store

import (
	"context"
	"math/rand"
	"time"

	"github.com/jackc/pgconn"
	"github.com/sharpline/backend/internal/models"
	"gorm.io/gorm"
)

const insertBatchSize = 100

type GameStore struct {
	DB *gorm.DB
}

func NewGameStore(db *gorm.DB) *GameStore {
	return &GameStore{DB: db}
}

// InsertGames bulk-inserts a league's slate in a single call.
// All-or-nothing: any failure leaves the caller without a partial count.
func (s *GameStore) InsertGames(ctx context.Context, league models.League, games []models.Game) error {
	if len(games) == 0 {
		return nil
	}

	const maxRetries = 3
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = s.DB.WithContext(ctx).Table(league.GamesTable()).CreateInBatches(games, insertBatchSize).Error
		if err == nil {
			return nil
		}
		if pgErr, ok := err.(*pgconn.PgError); ok && (pgErr.Code == "40P01" || pgErr.Code == "40001") {
			backoff := time.Duration(attempt*100+rand.Intn(100)) * time.Millisecond
			time.Sleep(backoff)
			continue
		}
		return err
	}
	return err
}

// AllGames returns every persisted game for a league, no date filter.
func (s *GameStore) AllGames(ctx context.Context, league models.League) ([]models.Game, error) {
	var games []models.Game
	err := s.DB.WithContext(ctx).Table(league.GamesTable()).Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

// GamesFrom returns games whose event timestamp is at or after the threshold.
func (s *GameStore) GamesFrom(ctx context.Context, league models.League, from time.Time) ([]models.Game, error) {
	var games []models.Game
	err := s.DB.WithContext(ctx).
		Table(league.GamesTable()).
		Where("event_date >= ?", from).
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}
