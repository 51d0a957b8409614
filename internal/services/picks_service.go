/**
 * @description
 * Picks Service — the prediction engine.
 * Implements the evaluation pipeline:
 * 1. Assemble model context (persisted games)
 * 2. Scout recent news per matchup (Tavily, allow-listed domains)
 * 3. Generate picks (search-augmented LLM call)
 * 4. Parse and validate the structured output
 * 5. Persist one pick row per matchup
 *
 * @dependencies
 * - backend/internal/integrations/openai
 * - backend/internal/integrations/tavily
 * - backend/internal/models
 *
 * @notes
 * - The model's output is the sole input to a strict parser. A top-level
 *   contract violation (not a JSON array) fails the whole evaluation with
 *   ErrModelOutput and persists nothing. Individual elements that break the
 *   pick schema are skipped and counted, and the loop continues.
 * - Pick inserts are per-record lenient: an insert failure is logged and
 *   the remaining rows still attempt insertion. This deliberately differs
 *   from the ingestion job's all-or-nothing bulk insert.
 */

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sharpline/backend/internal/integrations/openai"
	"github.com/sharpline/backend/internal/integrations/tavily"
	"github.com/sharpline/backend/internal/logger"
	"github.com/sharpline/backend/internal/models"
)

// ErrModelOutput marks a generation whose top-level payload violates the
// output contract (missing/unparsable JSON array).
var ErrModelOutput = errors.New("model output violates the picks contract")

const (
	maxScoutedMatchups = 12
	maxIntelSnippet    = 300
)

// analyticsDomains is the per-league allow-list the model and the scouting
// search are both restricted to.
var analyticsDomains = map[models.League][]string{
	models.LeagueNBA: {"espn.com", "nba.com", "basketball-reference.com"},
	models.LeagueNFL: {"espn.com", "pff.com", "pro-football-reference.com"},
}

// Generator produces text from an instruction payload
type Generator interface {
	Generate(ctx context.Context, prompt string, opts openai.GenerateOptions) (string, error)
}

// NewsSearcher pulls recent articles for the scouting step
type NewsSearcher interface {
	Search(ctx context.Context, params tavily.SearchParams) ([]tavily.SearchResult, error)
}

// ModelContextSource supplies the persisted games an evaluation scores
type ModelContextSource interface {
	GetModelContext(ctx context.Context, league models.League) []models.Game
}

// EvalResult reports one evaluation run
type EvalResult struct {
	League   string        `json:"league"`
	Picks    []models.Pick `json:"picks"`
	Accepted int           `json:"accepted"`
	Rejected int           `json:"rejected"`
	Inserted int           `json:"inserted"`
}

type PicksService struct {
	Context ModelContextSource
	Model   Generator
	News    NewsSearcher
	Store   PickStore
}

func NewPicksService(contextSource ModelContextSource, model Generator, news NewsSearcher, store PickStore) *PicksService {
	return &PicksService{
		Context: contextSource,
		Model:   model,
		News:    news,
		Store:   store,
	}
}

// pickPayload mirrors the output JSON schema the prompt dictates.
// TotalPick is a pointer so a missing or non-boolean value is detectable.
type pickPayload struct {
	HomeTeam           string `json:"home_team"`
	AwayTeam           string `json:"away_team"`
	MoneylinePick      string `json:"moneyline_pick"`
	MoneylineRationale string `json:"moneyline_rationale"`
	SpreadPick         string `json:"spread_pick"`
	SpreadRationale    string `json:"spread_rationale"`
	TotalPick          *bool  `json:"total_pick"`
	TotalRationale     string `json:"total_rationale"`
}

// EvaluatePicks runs the full prediction pipeline for one league.
func (s *PicksService) EvaluatePicks(ctx context.Context, league models.League) (*EvalResult, error) {
	result := &EvalResult{League: league.Upper(), Picks: []models.Pick{}}

	games := s.Context.GetModelContext(ctx, league)
	if len(games) == 0 {
		logger.Info("No %s games in context; nothing to predict", league.Upper())
		return result, nil
	}

	intel := s.scoutMatchups(ctx, league, games)
	prompt, err := BuildPicksPrompt(league, games, intel)
	if err != nil {
		return nil, err
	}

	raw, err := s.Model.Generate(ctx, prompt, openai.GenerateOptions{EnableWebSearch: true})
	if err != nil {
		return nil, fmt.Errorf("picks generation failed: %w", err)
	}

	elements, err := parsePicksArray(raw)
	if err != nil {
		logger.Error("Unparsable %s picks output: %v | raw: %s", league.Upper(), err, truncateText(raw, 500))
		return nil, err
	}

	for i, element := range elements {
		payload, err := decodePickElement(element)
		if err != nil {
			logger.Error("Rejecting %s pick %d: %v", league.Upper(), i, err)
			result.Rejected++
			continue
		}

		flagUnderdogRationale(league, games, payload)

		pick := models.Pick{
			HomeTeam:           payload.HomeTeam,
			AwayTeam:           payload.AwayTeam,
			MoneylinePick:      payload.MoneylinePick,
			MoneylineRationale: payload.MoneylineRationale,
			SpreadPick:         payload.SpreadPick,
			SpreadRationale:    payload.SpreadRationale,
			TotalPick:          *payload.TotalPick,
			TotalRationale:     payload.TotalRationale,
		}
		result.Accepted++
		result.Picks = append(result.Picks, pick)

		if err := s.Store.InsertPick(ctx, league, pick); err != nil {
			logger.Error("Postgres error inserting %s pick %s @ %s: %v", league.Upper(), pick.AwayTeam, pick.HomeTeam, err)
			continue
		}
		result.Inserted++
	}

	logger.Info("%s evaluation complete: %d accepted, %d rejected, %d inserted",
		league.Upper(), result.Accepted, result.Rejected, result.Inserted)
	return result, nil
}

// scoutMatchups collects recent headlines per matchup from the allow-listed
// analytics domains. Failures are logged and skipped; scouting is an
// enrichment, never a gate.
func (s *PicksService) scoutMatchups(ctx context.Context, league models.League, games []models.Game) string {
	if s.News == nil {
		return ""
	}

	var builder strings.Builder
	for i, game := range games {
		if i >= maxScoutedMatchups {
			break
		}
		results, err := s.News.Search(ctx, tavily.SearchParams{
			Query:          fmt.Sprintf("%s vs %s injury report news", game.AwayTeam, game.HomeTeam),
			MaxResults:     2,
			IncludeDomains: analyticsDomains[league],
		})
		if err != nil {
			logger.Error("Scouting search failed for %s @ %s: %v", game.AwayTeam, game.HomeTeam, err)
			continue
		}
		for _, res := range results {
			snippet := truncateText(strings.TrimSpace(res.Content), maxIntelSnippet)
			builder.WriteString(fmt.Sprintf("[%s @ %s] %s: %s\n", game.AwayTeam, game.HomeTeam, res.Title, snippet))
		}
	}
	return builder.String()
}

// BuildPicksPrompt constructs the full instruction payload for one league's
// evaluation. Pure function of its inputs.
func BuildPicksPrompt(league models.League, games []models.Game, intel string) (string, error) {
	contextJSON, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize model context: %w", err)
	}

	name := league.Upper()
	domains := analyticsDomains[league]
	siteOperators := make([]string, 0, len(domains))
	for _, d := range domains {
		siteOperators = append(siteOperators, "site:"+d)
	}
	sitePattern := strings.Join(siteOperators, " OR ")

	var builder strings.Builder
	fmt.Fprintf(&builder, `You are an **Expert Sports Analyst and Predictive Model** specializing in %s betting markets. Your task is to analyze the provided array of %s game data and generate a comprehensive prediction for the Moneyline, Point Spread, and Total Score for *every single game* listed.

**INSTRUCTIONS:**
1.  **Enable Tool Use:** You must use the integrated web search tool to find the most current and relevant %s statistics, injury reports, team news, and advanced metrics (e.g., DVOA, EPA/play) for the teams involved in the provided matchups.
2.  **Domain Restriction (Strict):** When performing a search for data, you **MUST** limit your results to reputable %s analytics domains. You must accomplish this by always including the `+"`site:`"+` operator in your search query. For example, a search for an injury report must be formatted like this:
    `+"`%s \"<away team> vs <home team> injury report\"`"+`
3.  **Strictly Adhere to JSON Output:** Your entire response **MUST** be a single JSON array that conforms exactly to the provided **Output JSON Schema**. Do not include any text, conversation, or explanation outside of the JSON block.
4.  **Team ID Requirement (STRICT):** The values for **"home_team"** and **"away_team"** in your output **MUST** be the **EXACT** team abbreviations/IDs found in the corresponding input object. DO NOT substitute them with full team names or other abbreviations.
5.  **Prediction Format (Simplified for Parsing):**
    * **moneyline_pick:** Must be one of two strings: **"home"** (for the home team to win) or **"away"** (for the away team to win).
    * **spread_pick:** Must be one of two strings: **"home"** (for the home team to cover the spread) or **"away"** (for the away team to cover the spread).
    * **total_pick:** Must be a **boolean** value: **`+"`true`"+`** for OVER the total line, and **`+"`false`"+`** for UNDER the total line.
6.  **Situational Analysis and Value:** You are not just predicting the most likely winner, but identifying the pick with the best betting value. You **MUST** give significant weight to **volatile, situational factors**—such as injuries, back-to-back games (fatigue), poor recent defensive form, or specific matchup advantages—when they favor the underdog. If a volatile factor significantly degrades the favorite's probability of covering/winning, the pick should favor the underdog.
7.  **Rationale Constraint:** For each of the three picks, the associated "_rationale" field **MUST** be a concise paragraph between **3 and 5 sentences** long. The rationale must cite specific data points found *through your search* to justify the pick. **For any underdog moneyline or spread pick, the rationale MUST explicitly reference the situational or volatile factor (e.g., injury, rest, poor recent ATS record) that overcomes the consensus favorite status.**
`, name, name, name, name, sitePattern)

	if strings.TrimSpace(intel) != "" {
		fmt.Fprintf(&builder, `
**RECENT INTEL (pre-fetched from allow-listed sources):**
%s`, intel)
	}

	fmt.Fprintf(&builder, `
**INPUT DATA (Array of JSON Objects):**
%s

**OUTPUT JSON SCHEMA (Adhere Strictly):**
`+"```json"+`
[
{
    "home_team": "[STRING: EXACT team ID/abbreviation from input]",
    "away_team": "[STRING: EXACT team ID/abbreviation from input]",

    "moneyline_pick": "[STRING: home or away]",
    "moneyline_rationale": "[STRING: 3-5 sentence rationale]",

    "spread_pick": "[STRING: home or away]",
    "spread_rationale": "[STRING: 3-5 sentence rationale]",

    "total_pick": "[BOOLEAN: true for OVER, false for UNDER]",
    "total_rationale": "[STRING: 3-5 sentence rationale]"
}
]
`+"```"+`
`, string(contextJSON))

	return builder.String(), nil
}

// parsePicksArray strips the code fence and parses the payload into raw
// elements. Anything other than a JSON array is an ErrModelOutput.
func parsePicksArray(raw string) ([]json.RawMessage, error) {
	clean := cleanJSONFence(raw)
	clean = extractJSONArray(clean)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty response", ErrModelOutput)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(clean), &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelOutput, err)
	}
	return elements, nil
}

// decodePickElement unmarshals and validates one array element against the
// pick-value domains.
func decodePickElement(element json.RawMessage) (*pickPayload, error) {
	var payload pickPayload
	if err := json.Unmarshal(element, &payload); err != nil {
		return nil, fmt.Errorf("element does not match the pick schema: %w", err)
	}

	if strings.TrimSpace(payload.HomeTeam) == "" || strings.TrimSpace(payload.AwayTeam) == "" {
		return nil, fmt.Errorf("element is missing a team identifier")
	}
	if payload.MoneylinePick != models.PickHome && payload.MoneylinePick != models.PickAway {
		return nil, fmt.Errorf("moneyline_pick %q is not \"home\" or \"away\"", payload.MoneylinePick)
	}
	if payload.SpreadPick != models.PickHome && payload.SpreadPick != models.PickAway {
		return nil, fmt.Errorf("spread_pick %q is not \"home\" or \"away\"", payload.SpreadPick)
	}
	if payload.TotalPick == nil {
		return nil, fmt.Errorf("total_pick is missing or not a boolean")
	}
	if strings.TrimSpace(payload.MoneylineRationale) == "" ||
		strings.TrimSpace(payload.SpreadRationale) == "" ||
		strings.TrimSpace(payload.TotalRationale) == "" {
		return nil, fmt.Errorf("element is missing a rationale")
	}
	return &payload, nil
}

// flagUnderdogRationale spot-checks the value-seeking contract: an underdog
// moneyline pick whose rationale is suspiciously thin gets logged. Picks are
// not rejected for this; the rationale contract is editorial, not structural.
func flagUnderdogRationale(league models.League, games []models.Game, payload *pickPayload) {
	const minRationale = 80

	for _, game := range games {
		if game.HomeTeam != payload.HomeTeam || game.AwayTeam != payload.AwayTeam {
			continue
		}
		pickedOdds := game.HomeOddsML
		if payload.MoneylinePick == models.PickAway {
			pickedOdds = game.AwayOddsML
		}
		// Positive American odds mean the picked side is the underdog
		if pickedOdds > 0 && len(strings.TrimSpace(payload.MoneylineRationale)) < minRationale {
			logger.Info("Flag: %s underdog pick %s @ %s (+%d) has a thin rationale",
				league.Upper(), payload.AwayTeam, payload.HomeTeam, pickedOdds)
		}
		return
	}
	logger.Info("Flag: %s pick %s @ %s has no matching game in context",
		league.Upper(), payload.AwayTeam, payload.HomeTeam)
}

func cleanJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractJSONArray tries to pull the first top-level JSON array from a string.
func extractJSONArray(s string) string {
	start := strings.IndexByte(s, '[')
	if start == -1 {
		return s
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return s
}

func truncateText(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
