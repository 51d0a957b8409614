package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sharpline/backend/internal/integrations/openai"
	"github.com/sharpline/backend/internal/integrations/tavily"
	"github.com/sharpline/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContextSource struct {
	games []models.Game
}

func (f *fakeContextSource) GetModelContext(_ context.Context, _ models.League) []models.Game {
	return f.games
}

type fakeGenerator struct {
	response  string
	err       error
	called    bool
	gotPrompt string
	gotOpts   openai.GenerateOptions
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, opts openai.GenerateOptions) (string, error) {
	f.called = true
	f.gotPrompt = prompt
	f.gotOpts = opts
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeNews struct {
	results []tavily.SearchResult
	err     error
	queries []string
	domains [][]string
}

func (f *fakeNews) Search(_ context.Context, params tavily.SearchParams) ([]tavily.SearchResult, error) {
	f.queries = append(f.queries, params.Query)
	f.domains = append(f.domains, params.IncludeDomains)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakePickStore struct {
	picks      []models.Pick
	insertErrs []error
	allErr     error
}

func (s *fakePickStore) nextInsertErr() error {
	if len(s.insertErrs) == 0 {
		return nil
	}
	err := s.insertErrs[0]
	s.insertErrs = s.insertErrs[1:]
	return err
}

func (s *fakePickStore) InsertPick(_ context.Context, _ models.League, pick models.Pick) error {
	if err := s.nextInsertErr(); err != nil {
		return err
	}
	s.picks = append(s.picks, pick)
	return nil
}

func (s *fakePickStore) AllPicks(_ context.Context, _ models.League) ([]models.Pick, error) {
	if s.allErr != nil {
		return nil, s.allErr
	}
	return s.picks, nil
}

func contextGames() []models.Game {
	return []models.Game{
		{
			HomeTeam: "BOS", AwayTeam: "LAL",
			EventDate:  time.Date(2026, 1, 14, 0, 30, 0, 0, time.UTC),
			HomeOddsML: -150, AwayOddsML: 130,
		},
		{
			HomeTeam: "DEN", AwayTeam: "GSW",
			EventDate:  time.Date(2026, 1, 14, 2, 0, 0, 0, time.UTC),
			HomeOddsML: -200, AwayOddsML: 170,
		},
	}
}

func validPickJSON(home, away string) string {
	return fmt.Sprintf(`{
		"home_team": %q,
		"away_team": %q,
		"moneyline_pick": "home",
		"moneyline_rationale": "The home side has won eight straight at home and holds a top-five net rating. The visitors are on the second night of a back-to-back. Search results confirm no new injuries for the hosts.",
		"spread_pick": "away",
		"spread_rationale": "The visitors have covered in six of their last eight as road underdogs. The line overstates the gap given their defensive improvement. Recent ATS data from the search backs the away side.",
		"total_pick": true,
		"total_rationale": "Both teams rank in the top ten for pace this season. Neither defense has held opponents under 110 in their last five. The total has gone over in seven of ten recent meetings."
	}`, home, away)
}

func fencedArray(elements ...string) string {
	body := ""
	for i, el := range elements {
		if i > 0 {
			body += ","
		}
		body += el
	}
	return "```json\n[" + body + "]\n```"
}

func newPicksFixture(games []models.Game, gen *fakeGenerator) (*PicksService, *fakePickStore) {
	store := &fakePickStore{}
	svc := NewPicksService(&fakeContextSource{games: games}, gen, nil, store)
	return svc, store
}

func TestBuildPicksPromptEmbedsContract(t *testing.T) {
	prompt, err := BuildPicksPrompt(models.LeagueNFL, contextGames(), "")
	require.NoError(t, err)

	assert.Contains(t, prompt, "NFL betting markets")
	assert.Contains(t, prompt, "site:espn.com OR site:pff.com OR site:pro-football-reference.com")
	assert.Contains(t, prompt, `"BOS"`) // serialized context
	assert.Contains(t, prompt, `"moneyline_pick": "[STRING: home or away]"`)
	assert.Contains(t, prompt, "```json")
	assert.NotContains(t, prompt, "RECENT INTEL")
}

func TestBuildPicksPromptIncludesIntel(t *testing.T) {
	prompt, err := BuildPicksPrompt(models.LeagueNBA, contextGames(), "[LAL @ BOS] Star guard questionable\n")
	require.NoError(t, err)

	assert.Contains(t, prompt, "RECENT INTEL")
	assert.Contains(t, prompt, "Star guard questionable")
	assert.Contains(t, prompt, "site:espn.com OR site:nba.com OR site:basketball-reference.com")
}

func TestEvaluatePicksPersistsValidPicks(t *testing.T) {
	gen := &fakeGenerator{response: fencedArray(validPickJSON("BOS", "LAL"), validPickJSON("DEN", "GSW"))}
	svc, store := newPicksFixture(contextGames(), gen)

	result, err := svc.EvaluatePicks(context.Background(), models.LeagueNBA)
	require.NoError(t, err)

	assert.True(t, gen.gotOpts.EnableWebSearch)
	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, 0, result.Rejected)
	assert.Equal(t, 2, result.Inserted)
	require.Len(t, store.picks, 2)
	assert.Equal(t, "BOS", store.picks[0].HomeTeam)
	assert.Equal(t, "home", store.picks[0].MoneylinePick)
	assert.True(t, store.picks[0].TotalPick)
}

func TestEvaluatePicksUnparsableOutputFailsHard(t *testing.T) {
	gen := &fakeGenerator{response: "not json"}
	svc, store := newPicksFixture(contextGames(), gen)

	_, err := svc.EvaluatePicks(context.Background(), models.LeagueNBA)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelOutput)
	assert.Empty(t, store.picks)
}

func TestEvaluatePicksTopLevelObjectFailsHard(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n{\"oops\": true}\n```"}
	svc, store := newPicksFixture(contextGames(), gen)

	_, err := svc.EvaluatePicks(context.Background(), models.LeagueNBA)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelOutput)
	assert.Empty(t, store.picks)
}

func TestEvaluatePicksRejectsInvalidElements(t *testing.T) {
	badEnum := `{
		"home_team": "BOS", "away_team": "LAL",
		"moneyline_pick": "BOS",
		"moneyline_rationale": "x", "spread_pick": "home", "spread_rationale": "x",
		"total_pick": false, "total_rationale": "x"
	}`
	badType := `{
		"home_team": "DEN", "away_team": "GSW",
		"moneyline_pick": "home",
		"moneyline_rationale": "x", "spread_pick": "away", "spread_rationale": "x",
		"total_pick": "over", "total_rationale": "x"
	}`
	gen := &fakeGenerator{response: fencedArray(badEnum, badType, validPickJSON("BOS", "LAL"))}
	svc, store := newPicksFixture(contextGames(), gen)

	result, err := svc.EvaluatePicks(context.Background(), models.LeagueNBA)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 2, result.Rejected)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, store.picks, 1)
	assert.Equal(t, "BOS", store.picks[0].HomeTeam)
}

func TestEvaluatePicksInsertFailureDoesNotAbortLoop(t *testing.T) {
	gen := &fakeGenerator{response: fencedArray(validPickJSON("BOS", "LAL"), validPickJSON("DEN", "GSW"))}
	store := &fakePickStore{insertErrs: []error{errors.New("connection reset"), nil}}
	svc := NewPicksService(&fakeContextSource{games: contextGames()}, gen, nil, store)

	result, err := svc.EvaluatePicks(context.Background(), models.LeagueNBA)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, store.picks, 1)
	assert.Equal(t, "DEN", store.picks[0].HomeTeam)
}

func TestEvaluatePicksEmptyContextSkipsModelCall(t *testing.T) {
	gen := &fakeGenerator{}
	svc, store := newPicksFixture(nil, gen)

	result, err := svc.EvaluatePicks(context.Background(), models.LeagueNBA)
	require.NoError(t, err)

	assert.False(t, gen.called)
	assert.Empty(t, result.Picks)
	assert.Empty(t, store.picks)
}

func TestEvaluatePicksScoutingFeedsPromptAndFailuresAreNonFatal(t *testing.T) {
	news := &fakeNews{results: []tavily.SearchResult{
		{Title: "Injury report", Content: "Star guard questionable for tonight"},
	}}
	gen := &fakeGenerator{response: fencedArray(validPickJSON("BOS", "LAL"))}
	svc := NewPicksService(&fakeContextSource{games: contextGames()}, gen, news, &fakePickStore{})

	_, err := svc.EvaluatePicks(context.Background(), models.LeagueNBA)
	require.NoError(t, err)

	assert.Contains(t, gen.gotPrompt, "RECENT INTEL")
	assert.Contains(t, gen.gotPrompt, "Star guard questionable")
	require.NotEmpty(t, news.domains)
	assert.Equal(t, []string{"espn.com", "nba.com", "basketball-reference.com"}, news.domains[0])

	// A search outage must not block evaluation
	news.err = errors.New("tavily down")
	gen2 := &fakeGenerator{response: fencedArray(validPickJSON("BOS", "LAL"))}
	svc2 := NewPicksService(&fakeContextSource{games: contextGames()}, gen2, news, &fakePickStore{})
	_, err = svc2.EvaluatePicks(context.Background(), models.LeagueNBA)
	require.NoError(t, err)
	assert.NotContains(t, gen2.gotPrompt, "RECENT INTEL")
}

func TestEvaluatePicksGenerationErrorPropagates(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model timeout")}
	svc, store := newPicksFixture(contextGames(), gen)

	_, err := svc.EvaluatePicks(context.Background(), models.LeagueNBA)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrModelOutput)
	assert.Empty(t, store.picks)
}
