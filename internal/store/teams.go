/**
 * @description
 * GORM repository for the per-league team metadata tables.
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

type TeamStore struct {
	DB *gorm.DB
}

func NewTeamStore(db *gorm.DB) *TeamStore {
	return &TeamStore{DB: db}
}

// TeamsByShortName returns the league's team rows keyed by short name,
// the lookup shape the matchup board join needs.
func (s *TeamStore) TeamsByShortName(ctx context.Context, league models.League) (map[string]models.Team, error) {
	var teams []models.Team
	err := s.DB.WithContext(ctx).Table(league.TeamsTable()).Find(&teams).Error
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.Team, len(teams))
	for _, team := range teams {
		byName[team.ShortName] = team
	}
	return byName, nil
}
