/**
 * @description
 * GORM repository for the per-league picks tables.
 * Picks are appended one row at a time by the evaluation loop and read back
 * in bulk for the matchup board join.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package store

import (
	"context"

	"github.com/sharpline/backend/internal/models"
	"gorm.io/gorm"
)

type PickStore struct {
	DB *gorm.DB
}

func NewPickStore(db *gorm.DB) *PickStore {
	return &PickStore{DB: db}
}

// InsertPick appends a single prediction row.
func (s *PickStore) InsertPick(ctx context.Context, league models.League, pick models.Pick) error {
	return s.DB.WithContext(ctx).Table(league.PicksTable()).Create(&pick).Error
}

// AllPicks returns every persisted pick for a league.
func (s *PickStore) AllPicks(ctx context.Context, league models.League) ([]models.Pick, error) {
	var picks []models.Pick
	err := s.DB.WithContext(ctx).Table(league.PicksTable()).Find(&picks).Error
	if err != nil {
		return nil, err
	}
	return picks, nil
}
