/**
 * @description
 * Pick database model.
 * One row per matchup per evaluation run, holding the model's three picks
 * and their rationales. Maps to the per-league '{league}_picks' tables.
 *
 * @dependencies
 * - gorm.io/gorm
 *
 * @notes
 * - Append-only: re-running an evaluation adds new rows rather than
 *   replacing earlier ones.
 * - home_team/away_team mirror the game row's team abbreviations; the link
 *   to a game is by (home_team, away_team), not by foreign key.
 */

package models

import "time"

// Pick side values for moneyline and spread picks
const (
	PickHome = "home"
	PickAway = "away"
)

// Pick represents one model prediction for a matchup
type Pick struct {
	ID                 uint      `gorm:"primaryKey;column:id" json:"id"`
	HomeTeam           string    `gorm:"column:home_team" json:"home_team"`
	AwayTeam           string    `gorm:"column:away_team" json:"away_team"`
	MoneylinePick      string    `gorm:"column:moneyline_pick" json:"moneyline_pick"`
	MoneylineRationale string    `gorm:"column:moneyline_rationale" json:"moneyline_rationale"`
	SpreadPick         string    `gorm:"column:spread_pick" json:"spread_pick"`
	SpreadRationale    string    `gorm:"column:spread_rationale" json:"spread_rationale"`
	TotalPick          bool      `gorm:"column:total_pick" json:"total_pick"`
	TotalRationale     string    `gorm:"column:total_rationale" json:"total_rationale"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
