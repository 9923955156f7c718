package seed

import (
	"fmt"
	"strings"

	"hoopslab/etl/internal/models"
)

// KeyError lists every primary or foreign key problem found in a dataset
type KeyError struct {
	Problems []string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("seed dataset has %d key problem(s): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

type keyChecker struct {
	problems []string
}

func (c *keyChecker) addf(format string, args ...any) {
	c.problems = append(c.problems, fmt.Sprintf(format, args...))
}

// index records the primary keys of a table, flagging duplicates. The
// returned map holds the league of each key where one is known.
func index[T any](c *keyChecker, table string, rows []T, key func(T) string, league func(T) string) map[string]string {
	seen := make(map[string]string, len(rows))
	for _, row := range rows {
		k := key(row)
		if _, dup := seen[k]; dup {
			c.addf("%s: duplicate key %s", table, k)
			continue
		}
		seen[k] = league(row)
	}
	return seen
}

func (c *keyChecker) ref(table, column, value string, target map[string]string, targetTable string) {
	if _, ok := target[value]; !ok {
		c.addf("%s.%s: %s not found in %s", table, column, value, targetTable)
	}
}

func (c *keyChecker) sameLeague(table, key, league, column, value string, target map[string]string) {
	if other, ok := target[value]; ok && other != "" && other != league {
		c.addf("%s %s: %s %s belongs to league %s, not %s", table, key, column, value, other, league)
	}
}

func noLeague[T any](T) string { return "" }

func (d *Dataset) checkKeys() error {
	c := &keyChecker{}

	leagues := index(c, "leagues", d.Leagues,
		func(l models.League) string { return l.LeagueID },
		func(l models.League) string { return l.LeagueID })
	seasons := index(c, "seasons", d.Seasons,
		func(s models.Season) string { return s.SeasonID },
		func(s models.Season) string { return s.LeagueID })
	teams := index(c, "teams", d.Teams,
		func(t models.Team) string { return t.TeamID },
		func(t models.Team) string { return t.LeagueID })
	players := index(c, "players", d.Players,
		func(p models.Player) string { return p.PlayerID },
		func(p models.Player) string { return p.LeagueID })
	games := index(c, "games", d.Games,
		func(g models.Game) string { return g.GameID },
		func(g models.Game) string { return g.LeagueID })

	for _, s := range d.Seasons {
		c.ref("seasons", "league_id", s.LeagueID, leagues, "leagues")
	}
	for _, t := range d.Teams {
		c.ref("teams", "league_id", t.LeagueID, leagues, "leagues")
		c.ref("teams", "season_id", t.SeasonID, seasons, "seasons")
		c.sameLeague("team", t.TeamID, t.LeagueID, "season", t.SeasonID, seasons)
	}
	for _, p := range d.Players {
		c.ref("players", "league_id", p.LeagueID, leagues, "leagues")
	}
	for _, g := range d.Games {
		c.ref("games", "league_id", g.LeagueID, leagues, "leagues")
		c.ref("games", "season_id", g.SeasonID, seasons, "seasons")
		c.ref("games", "home_team_id", g.HomeTeamID, teams, "teams")
		c.ref("games", "away_team_id", g.AwayTeamID, teams, "teams")
		c.sameLeague("game", g.GameID, g.LeagueID, "season", g.SeasonID, seasons)
		c.sameLeague("game", g.GameID, g.LeagueID, "home team", g.HomeTeamID, teams)
		c.sameLeague("game", g.GameID, g.LeagueID, "away team", g.AwayTeamID, teams)
	}

	index(c, "boxscore_lines", d.BoxscoreLines,
		func(b models.BoxscoreLine) string { return b.GameID + "/" + b.PlayerID }, noLeague[models.BoxscoreLine])
	for _, b := range d.BoxscoreLines {
		c.ref("boxscore_lines", "game_id", b.GameID, games, "games")
		c.ref("boxscore_lines", "player_id", b.PlayerID, players, "players")
		c.ref("boxscore_lines", "team_id", b.TeamID, teams, "teams")
	}

	index(c, "player_season_features", d.PlayerSeasonFeatures,
		func(f models.PlayerSeasonFeatures) string { return f.SeasonID + "/" + f.PlayerID + "/" + f.TeamID },
		noLeague[models.PlayerSeasonFeatures])
	for _, f := range d.PlayerSeasonFeatures {
		c.ref("player_season_features", "season_id", f.SeasonID, seasons, "seasons")
		c.ref("player_season_features", "player_id", f.PlayerID, players, "players")
		c.ref("player_season_features", "team_id", f.TeamID, teams, "teams")
	}

	index(c, "nba_gravity", d.NBAGravity,
		func(g models.NBAGravity) string { return g.SeasonID + "/" + g.PlayerID }, noLeague[models.NBAGravity])
	for _, g := range d.NBAGravity {
		c.ref("nba_gravity", "season_id", g.SeasonID, seasons, "seasons")
		c.ref("nba_gravity", "player_id", g.PlayerID, players, "players")
	}

	index(c, "team_gravity_effect", d.TeamGravityEffect,
		func(e models.TeamGravityEffect) string { return e.SeasonID + "/" + e.TeamID }, noLeague[models.TeamGravityEffect])
	for _, e := range d.TeamGravityEffect {
		c.ref("team_gravity_effect", "season_id", e.SeasonID, seasons, "seasons")
		c.ref("team_gravity_effect", "team_id", e.TeamID, teams, "teams")
	}

	index(c, "team_fatigue_effect", d.TeamFatigueEffect,
		func(e models.TeamFatigueEffect) string { return e.SeasonID + "/" + e.TeamID }, noLeague[models.TeamFatigueEffect])
	for _, e := range d.TeamFatigueEffect {
		c.ref("team_fatigue_effect", "season_id", e.SeasonID, seasons, "seasons")
		c.ref("team_fatigue_effect", "team_id", e.TeamID, teams, "teams")
	}

	index(c, "game_fatigue_flags", d.GameFatigueFlags,
		func(f models.GameFatigueFlags) string { return f.GameID }, noLeague[models.GameFatigueFlags])
	for _, f := range d.GameFatigueFlags {
		c.ref("game_fatigue_flags", "game_id", f.GameID, games, "games")
	}

	index(c, "player_shot_profiles", d.PlayerShotProfiles,
		func(p models.PlayerShotProfile) string { return p.SeasonID + "/" + p.PlayerID }, noLeague[models.PlayerShotProfile])
	for _, p := range d.PlayerShotProfiles {
		c.ref("player_shot_profiles", "season_id", p.SeasonID, seasons, "seasons")
		c.ref("player_shot_profiles", "player_id", p.PlayerID, players, "players")
	}

	index(c, "team_shot_profiles", d.TeamShotProfiles,
		func(p models.TeamShotProfile) string { return p.SeasonID + "/" + p.TeamID }, noLeague[models.TeamShotProfile])
	for _, p := range d.TeamShotProfiles {
		c.ref("team_shot_profiles", "season_id", p.SeasonID, seasons, "seasons")
		c.ref("team_shot_profiles", "team_id", p.TeamID, teams, "teams")
	}

	index(c, "game_momentum", d.GameMomentum,
		func(m models.GameMomentum) string { return m.GameID }, noLeague[models.GameMomentum])
	for _, m := range d.GameMomentum {
		c.ref("game_momentum", "game_id", m.GameID, games, "games")
		if m.BestRunTeamID != nil {
			c.ref("game_momentum", "best_run_team_id", *m.BestRunTeamID, teams, "teams")
		}
	}

	index(c, "player_translation_metrics", d.PlayerTranslationMetrics,
		func(m models.PlayerTranslationMetrics) string { return m.SeasonID + "/" + m.PlayerID },
		noLeague[models.PlayerTranslationMetrics])
	for _, m := range d.PlayerTranslationMetrics {
		c.ref("player_translation_metrics", "season_id", m.SeasonID, seasons, "seasons")
		c.ref("player_translation_metrics", "player_id", m.PlayerID, players, "players")
	}

	index(c, "team_play_style_metrics", d.TeamPlayStyleMetrics,
		func(m models.TeamPlayStyleMetrics) string { return m.SeasonID + "/" + m.TeamID },
		noLeague[models.TeamPlayStyleMetrics])
	for _, m := range d.TeamPlayStyleMetrics {
		c.ref("team_play_style_metrics", "season_id", m.SeasonID, seasons, "seasons")
		c.ref("team_play_style_metrics", "team_id", m.TeamID, teams, "teams")
	}

	index(c, "lineup_impact_snapshots", d.LineupImpactSnapshots,
		func(s models.LineupImpactSnapshot) string { return s.SeasonID + "/" + s.TeamID + "/" + s.LineupKey },
		noLeague[models.LineupImpactSnapshot])
	for _, s := range d.LineupImpactSnapshots {
		c.ref("lineup_impact_snapshots", "season_id", s.SeasonID, seasons, "seasons")
		c.ref("lineup_impact_snapshots", "team_id", s.TeamID, teams, "teams")
	}

	if len(c.problems) > 0 {
		return &KeyError{Problems: c.problems}
	}
	return nil
}
