// Package extract snapshots raw upstream responses to disk. It annotates rows
// with canonical identifiers but computes nothing.
package extract

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"hoopslab/etl/internal/client"
	"hoopslab/etl/internal/ids"
)

// RawDir is the snapshot root below the output directory
const RawDir = "raw"

// EuroLeagueSource is the subset of the EuroLeague client the extractor uses
type EuroLeagueSource interface {
	Games(ctx context.Context, seasonCode string) (any, error)
	Players(ctx context.Context, seasonCode string) (any, error)
	Standings(ctx context.Context, seasonCode string) (any, error)
}

// NBASource is the subset of the NBA stats client the extractor uses
type NBASource interface {
	ListGames(ctx context.Context, season string) (*client.ResultSet, error)
}

// Snapshot describes one written file
type Snapshot struct {
	League   string
	Season   string
	Resource string
	Path     string
	Records  int
}

type envelope struct {
	League    string `json:"league"`
	Season    string `json:"season"`
	Resource  string `json:"resource"`
	FetchedAt string `json:"fetched_at"`
	Records   int    `json:"records"`
	Data      any    `json:"data"`
}

// Extractor writes snapshots under <outDir>/raw/<league>/<season>/
type Extractor struct {
	outDir string
	euro   EuroLeagueSource
	nba    NBASource
	now    func() time.Time
}

// New creates an extractor. Either source may be nil if that league is not extracted.
func New(outDir string, euro EuroLeagueSource, nba NBASource) *Extractor {
	return &Extractor{
		outDir: outDir,
		euro:   euro,
		nba:    nba,
		now:    time.Now,
	}
}

// Run extracts one league's season
func (e *Extractor) Run(ctx context.Context, league, season string) ([]Snapshot, error) {
	switch strings.ToUpper(league) {
	case ids.LeagueNBA:
		return e.NBA(ctx, season)
	case ids.LeagueEuroLeague, "EUROLEAGUE":
		return e.EuroLeague(ctx, season)
	default:
		return nil, fmt.Errorf("unknown league %q: want %s or %s", league, ids.LeagueNBA, ids.LeagueEuroLeague)
	}
}

// EuroLeague snapshots games, players and standings for a season code such as "E2024"
func (e *Extractor) EuroLeague(ctx context.Context, seasonCode string) ([]Snapshot, error) {
	if e.euro == nil {
		return nil, fmt.Errorf("euroleague source is not configured")
	}
	if err := checkSeasonDir(seasonCode); err != nil {
		return nil, err
	}

	resources := []struct {
		name  string
		fetch func(context.Context, string) (any, error)
	}{
		{"games", e.euro.Games},
		{"players", e.euro.Players},
		{"standings", e.euro.Standings},
	}

	snaps := make([]Snapshot, 0, len(resources))
	for _, r := range resources {
		payload, err := r.fetch(ctx, seasonCode)
		if err != nil {
			return snaps, fmt.Errorf("failed to fetch euroleague %s: %w", r.name, err)
		}

		snap, err := e.write(ids.LeagueEuroLeague, seasonCode, r.name, payload, countRecords(payload))
		if err != nil {
			return snaps, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// NBA snapshots the league game finder for a season such as "2024-25".
// Each row gains canonical_game_id and canonical_team_id.
func (e *Extractor) NBA(ctx context.Context, season string) ([]Snapshot, error) {
	if e.nba == nil {
		return nil, fmt.Errorf("nba stats source is not configured")
	}
	if err := client.ValidateSeason(season); err != nil {
		return nil, err
	}

	rs, err := e.nba.ListGames(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nba games: %w", err)
	}

	records := rs.Records()
	for _, rec := range records {
		if id, ok := rec["GAME_ID"]; ok && id != nil {
			rec["canonical_game_id"] = ids.Game(ids.LeagueNBA, idValue(id))
		}
		if id, ok := rec["TEAM_ID"]; ok && id != nil {
			rec["canonical_team_id"] = ids.Team(ids.LeagueNBA, idValue(id))
		}
	}

	snap, err := e.write(ids.LeagueNBA, season, "games", records, len(records))
	if err != nil {
		return nil, err
	}
	return []Snapshot{snap}, nil
}

func (e *Extractor) write(league, season, resource string, data any, records int) (Snapshot, error) {
	dir := filepath.Join(e.outDir, RawDir, league, season)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Snapshot{}, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	body, err := sonic.ConfigStd.MarshalIndent(envelope{
		League:    league,
		Season:    season,
		Resource:  resource,
		FetchedAt: e.now().UTC().Format(time.RFC3339),
		Records:   records,
		Data:      data,
	}, "", "  ")
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode %s %s snapshot: %w", league, resource, err)
	}

	path := filepath.Join(dir, resource+".json")
	if err := os.WriteFile(path, append(body, '\n'), 0o644); err != nil {
		return Snapshot{}, fmt.Errorf("failed to write snapshot: %w", err)
	}

	log.Info().
		Str("league", league).
		Str("season", season).
		Str("resource", resource).
		Int("records", records).
		Str("path", path).
		Msg("Snapshot written")

	return Snapshot{League: league, Season: season, Resource: resource, Path: path, Records: records}, nil
}

func checkSeasonDir(season string) error {
	if season == "" || season != filepath.Base(season) || season == "." || season == ".." {
		return fmt.Errorf("invalid season code %q", season)
	}
	return nil
}

// idValue turns integral JSON numbers back into integers so they
// canonicalize without an exponent
func idValue(v any) any {
	if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return v
}

// countRecords reports the row count of a list payload or a {"data": [...]} wrapper
func countRecords(payload any) int {
	switch v := payload.(type) {
	case []any:
		return len(v)
	case map[string]any:
		for _, key := range []string{"data", "Data"} {
			if rows, ok := v[key].([]any); ok {
				return len(rows)
			}
		}
		return 1
	case nil:
		return 0
	default:
		return 1
	}
}
