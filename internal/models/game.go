/**
 * @description
 * Game database model.
 * One row per scheduled matchup with the Consensus sportsbook quote attached.
 * Maps to the per-league '{league}_games' tables in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 *
 * @notes
 * - Rows are insert-only. There is no uniqueness constraint, so re-running
 *   ingestion for overlapping date windows duplicates rows.
 * - The table name is league-scoped, so queries go through db.Table(...)
 *   rather than a static TableName override.
 */

package models

import "time"

// Game represents one scheduled matchup with its betting-market quote
type Game struct {
	ID             uint      `gorm:"primaryKey;column:id" json:"id"`
	HomeTeam       string    `gorm:"column:home_team" json:"home_team"`
	AwayTeam       string    `gorm:"column:away_team" json:"away_team"`
	EventDate      time.Time `gorm:"column:event_date" json:"event_date"`
	HomeOddsML     int       `gorm:"column:home_odds_ml" json:"home_odds_ml"`
	AwayOddsML     int       `gorm:"column:away_odds_ml" json:"away_odds_ml"`
	HomeHandicap   float64   `gorm:"column:home_handicap" json:"home_handicap"`
	AwayHandicap   float64   `gorm:"column:away_handicap" json:"away_handicap"`
	HomeOddsSpread int       `gorm:"column:home_odds_spread" json:"home_odds_spread"`
	AwayOddsSpread int       `gorm:"column:away_odds_spread" json:"away_odds_spread"`
	OverUnderTotal float64   `gorm:"column:over_under_total" json:"over_under_total"`
	OverOdd        int       `gorm:"column:over_odd" json:"over_odd"`
	UnderOdd       int       `gorm:"column:under_odd" json:"under_odd"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
