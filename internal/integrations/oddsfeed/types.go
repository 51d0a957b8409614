/**
 * @description
 * Wire types for the sportsbook odds scraper.
 * One RawMatchup per scheduled game, carrying the per-sportsbook quotes as
 * the scraper emits them.
 */

package oddsfeed

// RunInput is the actor invocation payload
type RunInput struct {
	League     string `json:"league"`
	Date       string `json:"date"` // ISO calendar date, e.g. "2026-01-30"
	Sportsbook string `json:"sportsbook"`
}

// RawMatchup is one scraped matchup with its odds quotes
type RawMatchup struct {
	HomeTeam      TeamRef     `json:"homeTeam"`
	AwayTeam      TeamRef     `json:"awayTeam"`
	ScheduledTime string      `json:"scheduledTime"`
	Odds          []OddsQuote `json:"odds"`
}

// TeamRef identifies one side of a matchup
type TeamRef struct {
	ShortName string `json:"shortName"`
	FullName  string `json:"fullName"`
}

// OddsQuote is a single sportsbook's quote across the three markets
type OddsQuote struct {
	Sportsbook  string    `json:"sportsbook"`
	MoneyLine   MoneyLine `json:"moneyLine"`
	PointSpread Spread    `json:"pointSpread"`
	OverUnder   Total     `json:"overUnder"`
}

// MoneyLine carries the straight-up win prices
type MoneyLine struct {
	CurrentHomeOdds int `json:"currentHomeOdds"`
	CurrentAwayOdds int `json:"currentAwayOdds"`
}

// Spread carries the handicap and the price on each side
type Spread struct {
	CurrentHomeHandicap float64 `json:"currentHomeHandicap"`
	CurrentAwayHandicap float64 `json:"currentAwayHandicap"`
	CurrentHomeOdds     int     `json:"currentHomeOdds"`
	CurrentAwayOdds     int     `json:"currentAwayOdds"`
}

// Total carries the over/under line and prices
type Total struct {
	CurrentTotal    float64 `json:"currentTotal"`
	CurrentOverOdd  int     `json:"currentOverOdd"`
	CurrentUnderOdd int     `json:"currentUnderOdd"`
}
