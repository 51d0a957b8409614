/**
 * @description
 * HTTP Client for the sportsbook odds scraper (Apify-style actor API).
 * Runs the actor synchronously for one league/date and returns the scraped
 * matchups from the run's dataset.
 *
 * @dependencies
 * - net/http
 * - encoding/json
 * - backend/internal/config
 *
 * @notes
 * - Scraper runs are slow (the actor drives a headless browser), hence the
 *   generous timeout.
 * - 429s and 5xx responses get one bounded retry; 4xx responses do not.
 */

package oddsfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sharpline/backend/internal/config"
	"github.com/sharpline/backend/internal/logger"
)

const (
	// ConsensusSportsbook is the aggregated odds source requested from the
	// scraper instead of any single bookmaker.
	ConsensusSportsbook = "Consensus"

	requestTimeout = 180 * time.Second
	maxFetchTries  = 2
	retryBaseDelay = 2 * time.Second
)

var errFeedRetryable = errors.New("odds feed retryable error")

type Client struct {
	baseURL    string
	token      string
	actor      string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.OddsFeed.BaseURL,
		token:   cfg.OddsFeed.Token,
		actor:   cfg.OddsFeed.Actor,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// FetchMatchups runs the scraper for one league and calendar date and
// returns the matchups in dataset order.
func (c *Client) FetchMatchups(ctx context.Context, league, date string) ([]RawMatchup, error) {
	if c.token == "" {
		return nil, fmt.Errorf("odds feed token is not configured")
	}

	input := RunInput{
		League:     league,
		Date:       date,
		Sportsbook: ConsensusSportsbook,
	}
	bodyBytes, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxFetchTries; attempt++ {
		matchups, err := c.fetchOnce(ctx, bodyBytes)
		if err == nil {
			return matchups, nil
		}
		lastErr = err
		if attempt >= maxFetchTries || !isRetryableFeedError(err) {
			return nil, err
		}
		logger.Info("Retrying odds feed fetch for %s %s after error (attempt %d/%d): %v", league, date, attempt, maxFetchTries, err)
		time.Sleep(retryBaseDelay * time.Duration(attempt))
	}

	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, bodyBytes []byte) ([]RawMatchup, error) {
	u, err := url.Parse(fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items", c.baseURL, c.actor))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewBuffer(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odds feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		logger.Error("Odds feed error: %d - %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %d", errFeedRetryable, resp.StatusCode)
		}
		return nil, fmt.Errorf("odds feed returned status %d", resp.StatusCode)
	}

	var matchups []RawMatchup
	if err := json.NewDecoder(resp.Body).Decode(&matchups); err != nil {
		return nil, fmt.Errorf("failed to decode odds feed response: %w", err)
	}

	return matchups, nil
}

func isRetryableFeedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errFeedRetryable) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
