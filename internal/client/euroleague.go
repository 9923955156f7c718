package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultEuroLeagueBaseURL is the public EuroLeague live API
	DefaultEuroLeagueBaseURL = "https://api-live.euroleague.net"

	euroLeagueProvider = "euroleague"
)

// EuroLeagueClient reads season data from the EuroLeague live API
type EuroLeagueClient struct {
	ep *endpoint
}

// NewEuroLeagueClient creates a EuroLeague client. An empty baseURL uses the public API.
func NewEuroLeagueClient(baseURL string, timeout time.Duration, opts ...Option) *EuroLeagueClient {
	if baseURL == "" {
		baseURL = DefaultEuroLeagueBaseURL
	}
	ep := newEndpoint(euroLeagueProvider, baseURL, timeout)
	for _, opt := range opts {
		opt(ep)
	}
	return &EuroLeagueClient{ep: ep}
}

// Games fetches every game of a season, e.g. seasonCode "E2024"
func (c *EuroLeagueClient) Games(ctx context.Context, seasonCode string) (any, error) {
	return c.season(ctx, "games", seasonCode)
}

// Players fetches the players registered for a season
func (c *EuroLeagueClient) Players(ctx context.Context, seasonCode string) (any, error) {
	return c.season(ctx, "players", seasonCode)
}

// Standings fetches the standings table for a season
func (c *EuroLeagueClient) Standings(ctx context.Context, seasonCode string) (any, error) {
	return c.season(ctx, "standings", seasonCode)
}

func (c *EuroLeagueClient) season(ctx context.Context, resource, seasonCode string) (any, error) {
	seasonCode = strings.TrimSpace(seasonCode)
	if seasonCode == "" {
		return nil, fmt.Errorf("euroleague %s: season code is required", resource)
	}

	var payload any
	params := url.Values{"seasonCode": {seasonCode}}
	if err := c.ep.getJSON(ctx, "/v1/"+resource, params, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
