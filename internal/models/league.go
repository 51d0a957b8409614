/**
 * @description
 * League enum and the per-league schedule windows.
 * Each league carries its own table names and the calendar dates the odds
 * feed should be polled for.
 *
 * @notes
 * - NBA games are fetched for tomorrow only (daily cadence).
 * - NFL games follow the fixed weekly slate: Thursday (D+2), Friday (D+3),
 *   Sunday (D+5) and Monday (D+7) relative to the Tuesday trigger.
 */

package models

import (
	"fmt"
	"strings"
	"time"
)

// League identifies one of the supported competitions
type League string

const (
	LeagueNBA League = "nba"
	LeagueNFL League = "nfl"
)

// Leagues lists every supported league
var Leagues = []League{LeagueNBA, LeagueNFL}

// ParseLeague validates a league path/query parameter
func ParseLeague(s string) (League, error) {
	switch League(strings.ToLower(strings.TrimSpace(s))) {
	case LeagueNBA:
		return LeagueNBA, nil
	case LeagueNFL:
		return LeagueNFL, nil
	default:
		return "", fmt.Errorf("unknown league %q", s)
	}
}

// Upper returns the provider-facing league code ("NBA", "NFL")
func (l League) Upper() string {
	return strings.ToUpper(string(l))
}

// GamesTable returns the per-league games table name
func (l League) GamesTable() string {
	return string(l) + "_games"
}

// PicksTable returns the per-league picks table name
func (l League) PicksTable() string {
	return string(l) + "_picks"
}

// TeamsTable returns the per-league team metadata table name
func (l League) TeamsTable() string {
	return string(l) + "_teams"
}

// FetchDates derives the calendar dates (UTC, YYYY-MM-DD) the odds feed
// should be queried for, relative to now. Order matters: ingestion keeps
// the results in fetch order.
func (l League) FetchDates(now time.Time) []string {
	day := now.UTC()
	switch l {
	case LeagueNFL:
		offsets := []int{2, 3, 5, 7} // Thu, Fri, Sun, Mon
		dates := make([]string, 0, len(offsets))
		for _, offset := range offsets {
			dates = append(dates, day.AddDate(0, 0, offset).Format("2006-01-02"))
		}
		return dates
	default:
		return []string{day.AddDate(0, 0, 1).Format("2006-01-02")}
	}
}
