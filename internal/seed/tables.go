package seed

import (
	"github.com/cockroachdb/errors"

	"hoopslab/etl/internal/models"
	"hoopslab/etl/internal/sqlwriter"
)

// Reference tables in foreign-key order. Rows are inserted with
// ignore-on-conflict and never deleted by the job.
var ReferenceTables = []string{
	"leagues",
	"seasons",
	"teams",
	"players",
	"games",
}

// Derived tables in write order. The job clears each one before
// re-inserting the dataset rows.
var DerivedTables = []string{
	"boxscore_lines",
	"player_season_features",
	"nba_gravity",
	"team_gravity_effect",
	"team_fatigue_effect",
	"game_fatigue_flags",
	"player_shot_profiles",
	"team_shot_profiles",
	"game_momentum",
	"player_translation_metrics",
	"team_play_style_metrics",
	"lineup_impact_snapshots",
}

// RunsTable receives one audit row per job run
const RunsTable = "etl_runs"

// Table is one table's rows with the column list to write, in declaration order
type Table struct {
	Name    string
	Derived bool
	Columns []string
	Rows    []sqlwriter.Row
}

// Tables returns every reference table followed by every derived table in
// write order. Empty tables are included so callers can still clear them.
func (d *Dataset) Tables() ([]Table, error) {
	builders := []func() (Table, error){
		func() (Table, error) { return table("leagues", false, d.Leagues) },
		func() (Table, error) { return table("seasons", false, d.Seasons) },
		func() (Table, error) { return table("teams", false, d.Teams) },
		func() (Table, error) { return table("players", false, d.Players) },
		func() (Table, error) { return table("games", false, d.Games) },
		func() (Table, error) { return table("boxscore_lines", true, d.BoxscoreLines) },
		func() (Table, error) { return table("player_season_features", true, d.PlayerSeasonFeatures) },
		func() (Table, error) { return table("nba_gravity", true, d.NBAGravity) },
		func() (Table, error) { return table("team_gravity_effect", true, d.TeamGravityEffect) },
		func() (Table, error) { return table("team_fatigue_effect", true, d.TeamFatigueEffect) },
		func() (Table, error) { return table("game_fatigue_flags", true, d.GameFatigueFlags) },
		func() (Table, error) { return table("player_shot_profiles", true, d.PlayerShotProfiles) },
		func() (Table, error) { return table("team_shot_profiles", true, d.TeamShotProfiles) },
		func() (Table, error) { return table("game_momentum", true, d.GameMomentum) },
		func() (Table, error) { return table("player_translation_metrics", true, d.PlayerTranslationMetrics) },
		func() (Table, error) { return table("team_play_style_metrics", true, d.TeamPlayStyleMetrics) },
		func() (Table, error) { return table("lineup_impact_snapshots", true, d.LineupImpactSnapshots) },
	}

	tables := make([]Table, 0, len(builders))
	for _, build := range builders {
		t, err := build()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// RunRow renders the etl_runs audit row
func RunRow(run models.ETLRun) (Table, error) {
	return table(RunsTable, false, []models.ETLRun{run})
}

func table[T any](name string, derived bool, rows []T) (Table, error) {
	converted, columns, err := sqlwriter.RowsFromModels(rows)
	if err != nil {
		return Table{}, errors.Wrapf(err, "table %s", name)
	}
	return Table{Name: name, Derived: derived, Columns: columns, Rows: converted}, nil
}
