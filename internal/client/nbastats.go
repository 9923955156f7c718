package client

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

const (
	// DefaultNBAStatsBaseURL is the stats.nba.com API root
	DefaultNBAStatsBaseURL = "https://stats.nba.com/stats"
	// DefaultNBAThrottle is the minimum spacing between NBA stats requests
	DefaultNBAThrottle = 800 * time.Millisecond

	nbaStatsProvider = "nba_stats"
	nbaLeagueID      = "00"
)

var seasonPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ResultSet is one table of an NBA stats response
type ResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rowSet"`
}

type statsResponse struct {
	Resource   string      `json:"resource"`
	ResultSets []ResultSet `json:"resultSets"`
}

// Column returns the index of a header, or -1
func (rs *ResultSet) Column(name string) int {
	for i, h := range rs.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Records returns each row keyed by header name
func (rs *ResultSet) Records() []map[string]any {
	records := make([]map[string]any, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		rec := make(map[string]any, len(rs.Headers))
		for i, h := range rs.Headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = nil
			}
		}
		records = append(records, rec)
	}
	return records
}

// NBAStatsClient reads from the NBA stats API. Requests are throttled to
// stay under the provider's rate limit.
type NBAStatsClient struct {
	ep *endpoint
}

// NewNBAStatsClient creates an NBA stats client with the default throttle.
// An empty baseURL uses stats.nba.com.
func NewNBAStatsClient(baseURL string, timeout time.Duration, opts ...Option) *NBAStatsClient {
	if baseURL == "" {
		baseURL = DefaultNBAStatsBaseURL
	}
	ep := newEndpoint(nbaStatsProvider, baseURL, timeout)
	ep.limiter = newLimiter(DefaultNBAThrottle)

	// stats.nba.com rejects requests that do not look like they come from nba.com
	ep.header.Set("Referer", "https://www.nba.com/")
	ep.header.Set("Origin", "https://www.nba.com")
	ep.header.Set("x-nba-stats-origin", "stats")
	ep.header.Set("x-nba-stats-token", "true")

	for _, opt := range opts {
		opt(ep)
	}
	return &NBAStatsClient{ep: ep}
}

// WithAPIKey sends key as the Authorization header. Empty keys are ignored.
func WithAPIKey(key string) Option {
	return func(e *endpoint) {
		if key != "" {
			e.header.Set("Authorization", key)
		}
	}
}

// ValidateSeason checks an NBA season label such as "2024-25"
func ValidateSeason(season string) error {
	m := seasonPattern.FindStringSubmatch(season)
	if m == nil {
		return fmt.Errorf("invalid NBA season %q: want YYYY-YY", season)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if (start+1)%100 != end {
		return fmt.Errorf("invalid NBA season %q: %02d does not follow %d", season, end, start)
	}
	return nil
}

// ListGames returns the league game finder results for a season, one row
// per team per game
func (c *NBAStatsClient) ListGames(ctx context.Context, season string) (*ResultSet, error) {
	if err := ValidateSeason(season); err != nil {
		return nil, err
	}

	params := url.Values{
		"LeagueID":     {nbaLeagueID},
		"Season":       {season},
		"PlayerOrTeam": {"T"},
		"SeasonType":   {"Regular Season"},
	}

	var resp statsResponse
	if err := c.ep.getJSON(ctx, "/leaguegamefinder", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.ResultSets) == 0 {
		return nil, fmt.Errorf("nba stats leaguegamefinder for %s returned no result sets", season)
	}

	rs := resp.ResultSets[0]
	return &rs, nil
}
