/**
 * @description
 * Team metadata model.
 * Maps to the per-league '{league}_teams' tables, keyed by the short name
 * used as the team identifier throughout the pipeline.
 */

package models

// Team holds display metadata for a team, keyed by its short name
type Team struct {
	ShortName string `gorm:"primaryKey;column:short_name" json:"short_name"`
	Name      string `gorm:"column:name" json:"name"`
	City      string `gorm:"column:city" json:"city"`
	LogoURL   string `gorm:"column:logo_url" json:"logo_url"`
}

// MatchupBoardEntry is the per-request join of a game with its picks and
// team metadata. Never persisted.
type MatchupBoardEntry struct {
	Game
	Picks       []Pick `json:"picks"`
	HomeDetails *Team  `json:"home_details"`
	AwayDetails *Team  `json:"away_details"`
}
