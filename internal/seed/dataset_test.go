package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableSizes(t *testing.T, ds *Dataset) map[string]int {
	t.Helper()
	tables, err := ds.Tables()
	require.NoError(t, err)
	sizes := make(map[string]int, len(tables))
	for _, tbl := range tables {
		sizes[tbl.Name] = len(tbl.Rows)
	}
	return sizes
}

func TestDefault(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"leagues":                    2,
		"seasons":                    2,
		"teams":                      4,
		"players":                    4,
		"games":                      2,
		"boxscore_lines":             4,
		"player_season_features":     4,
		"nba_gravity":                2,
		"team_gravity_effect":        2,
		"team_fatigue_effect":        4,
		"game_fatigue_flags":         2,
		"player_shot_profiles":       0,
		"team_shot_profiles":         0,
		"game_momentum":              0,
		"player_translation_metrics": 0,
		"team_play_style_metrics":    0,
		"lineup_impact_snapshots":    0,
	}, tableSizes(t, ds))
	assert.Equal(t, 32, ds.RowCount())

	lakers := ds.Teams[0]
	assert.Equal(t, "NBA_1610612747", lakers.TeamID)
	require.NotNil(t, lakers.HomeLon)
	assert.Equal(t, -118.2437, *lakers.HomeLon)

	game := ds.Games[0]
	assert.Nil(t, game.Attendance)
	require.NotNil(t, game.HomeScore)
	require.NotNil(t, game.AwayScore)
	assert.Equal(t, 112, *game.HomeScore)
	assert.Equal(t, 108, *game.AwayScore)
	assert.Equal(t, "[0.30,0.59,0.32,0.10,0.06]", ds.PlayerSeasonFeatures[2].ArchetypeVectorJSON)
}

func TestTables_Order(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)

	tables, err := ds.Tables()
	require.NoError(t, err)

	var names []string
	for _, tbl := range tables {
		names = append(names, tbl.Name)
		assert.Equal(t, tbl.Derived, contains(DerivedTables, tbl.Name), tbl.Name)
	}
	assert.Equal(t, append(append([]string{}, ReferenceTables...), DerivedTables...), names)

	assert.Equal(t, []string{"league_id", "name"}, tables[0].Columns)
	assert.Equal(t, []string{
		"team_id", "league_id", "season_id", "name", "abbrev",
		"city", "country", "home_lat", "home_lon",
	}, tables[2].Columns)
	assert.Equal(t, []string{
		"game_id", "league_id", "season_id", "game_date", "home_team_id",
		"away_team_id", "home_score", "away_score", "venue", "attendance",
	}, tables[4].Columns)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestLoad_FullFixture(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "full.yaml"))
	require.NoError(t, err)

	sizes := tableSizes(t, ds)
	for _, name := range []string{
		"player_shot_profiles", "team_shot_profiles", "game_momentum",
		"player_translation_metrics", "team_play_style_metrics", "lineup_impact_snapshots",
	} {
		assert.Equal(t, 1, sizes[name], name)
	}
	assert.Nil(t, ds.Games[1].HomeScore)
	assert.Nil(t, ds.Games[1].AwayScore)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	ds, err := Load("")
	require.NoError(t, err)
	assert.Len(t, ds.Leagues, 2)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty document",
			yaml: "",
			want: "empty",
		},
		{
			name: "unknown table",
			yaml: "leagues: []\nrosters: []\n",
			want: "rosters",
		},
		{
			name: "unknown column",
			yaml: "leagues:\n  - {league_id: NBA, name: NBA, founded: 1946}\n",
			want: "founded",
		},
		{
			name: "missing required field",
			yaml: "leagues:\n  - {league_id: NBA}\n",
			want: "Name",
		},
		{
			name: "bad game date",
			yaml: `
leagues: [{league_id: NBA, name: NBA}]
seasons: [{season_id: NBA_2025, league_id: NBA, year_start: 2024, year_end: 2025}]
teams:
  - {team_id: NBA_1, league_id: NBA, season_id: NBA_2025, name: A}
  - {team_id: NBA_2, league_id: NBA, season_id: NBA_2025, name: B}
games:
  - {game_id: NBA_0001, league_id: NBA, season_id: NBA_2025, game_date: 20/11/2025, home_team_id: NBA_1, away_team_id: NBA_2}
`,
			want: "GameDate",
		},
		{
			name: "season ends before it starts",
			yaml: "leagues: [{league_id: NBA, name: NBA}]\nseasons: [{season_id: NBA_2025, league_id: NBA, year_start: 2025, year_end: 2024}]\n",
			want: "YearEnd",
		},
		{
			name: "invalid archetype json",
			yaml: `
leagues: [{league_id: NBA, name: NBA}]
seasons: [{season_id: NBA_2025, league_id: NBA, year_start: 2024, year_end: 2025}]
teams: [{team_id: NBA_1, league_id: NBA, season_id: NBA_2025, name: A}]
players: [{player_id: NBA_2544, league_id: NBA, name: LeBron James}]
player_season_features:
  - {season_id: NBA_2025, player_id: NBA_2544, team_id: NBA_1, gp: 1, minutes: 36, archetype_vector_json: "[0.3,"}
`,
			want: "ArchetypeVectorJSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_Keys(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)

	ds.Leagues = append(ds.Leagues, ds.Leagues[0])
	ds.BoxscoreLines[0].PlayerID = "NBA_999"
	ds.Games[1].HomeTeamID = "NBA_1610612738"
	ds.NBAGravity[0].SeasonID = "NBA_2026"

	err = ds.Validate()
	var keyErr *KeyError
	require.True(t, errors.As(err, &keyErr))

	joined := strings.Join(keyErr.Problems, "\n")
	assert.Contains(t, joined, "leagues: duplicate key NBA")
	assert.Contains(t, joined, "boxscore_lines.player_id: NBA_999 not found in players")
	assert.Contains(t, joined, "game EL_0001: home team NBA_1610612738 belongs to league NBA, not EL")
	assert.Contains(t, joined, "nba_gravity.season_id: NBA_2026 not found in seasons")
	assert.Len(t, keyErr.Problems, 4)
}

func TestStamp(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "full.yaml"))
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 6, 30, 0, 0, time.FixedZone("EST", -5*3600))
	ds.Stamp(now)

	want := now.UTC()
	assert.Equal(t, want, ds.NBAGravity[0].UpdatedAt)
	assert.Equal(t, want, ds.PlayerShotProfiles[0].ComputedAt)
	assert.Equal(t, want, ds.TeamShotProfiles[0].ComputedAt)
	assert.Equal(t, want, ds.GameMomentum[0].ComputedAt)
	assert.Equal(t, want, ds.PlayerTranslationMetrics[0].ComputedAt)
	assert.Equal(t, want, ds.TeamPlayStyleMetrics[0].ComputedAt)
	assert.Equal(t, want, ds.LineupImpactSnapshots[0].ComputedAt)

	tables, err := ds.Tables()
	require.NoError(t, err)
	for _, tbl := range tables {
		if tbl.Name == "nba_gravity" {
			assert.Equal(t, want, tbl.Rows[0]["updated_at"])
		}
	}
}

func TestLoad_WrittenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("leagues: [{league_id: EL, name: EuroLeague}]\n"), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.RowCount())
}
