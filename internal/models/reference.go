package models

// League is a competition the warehouse tracks
type League struct {
	LeagueID string `db:"league_id" yaml:"league_id" validate:"required"`
	Name     string `db:"name" yaml:"name" validate:"required"`
}

// Season is one league season. SeasonID is canonical, e.g. "NBA_2025".
type Season struct {
	SeasonID  string `db:"season_id" yaml:"season_id" validate:"required"`
	LeagueID  string `db:"league_id" yaml:"league_id" validate:"required"`
	YearStart int    `db:"year_start" yaml:"year_start" validate:"required,gte=1900"`
	YearEnd   int    `db:"year_end" yaml:"year_end" validate:"required,gtefield=YearStart"`
}

// Team is a club in a given season
type Team struct {
	TeamID   string   `db:"team_id" yaml:"team_id" validate:"required"`
	LeagueID string   `db:"league_id" yaml:"league_id" validate:"required"`
	SeasonID string   `db:"season_id" yaml:"season_id" validate:"required"`
	Name     string   `db:"name" yaml:"name" validate:"required"`
	Abbrev   *string  `db:"abbrev" yaml:"abbrev,omitempty" validate:"omitempty,max=8"`
	City     *string  `db:"city" yaml:"city,omitempty"`
	Country  *string  `db:"country" yaml:"country,omitempty"`
	HomeLat  *float64 `db:"home_lat" yaml:"home_lat,omitempty" validate:"omitempty,latitude"`
	HomeLon  *float64 `db:"home_lon" yaml:"home_lon,omitempty" validate:"omitempty,longitude"`
}

// Player is a rostered player. PlayerID is canonical, e.g. "NBA_2544".
type Player struct {
	PlayerID    string  `db:"player_id" yaml:"player_id" validate:"required"`
	LeagueID    string  `db:"league_id" yaml:"league_id" validate:"required"`
	Name        string  `db:"name" yaml:"name" validate:"required"`
	Position    *string `db:"position" yaml:"position,omitempty"`
	Nationality *string `db:"nationality" yaml:"nationality,omitempty"`
}

// Game is a single fixture. Scores stay NULL until the game is final.
type Game struct {
	GameID     string  `db:"game_id" yaml:"game_id" validate:"required"`
	LeagueID   string  `db:"league_id" yaml:"league_id" validate:"required"`
	SeasonID   string  `db:"season_id" yaml:"season_id" validate:"required"`
	GameDate   string  `db:"game_date" yaml:"game_date" validate:"required,datetime=2006-01-02"`
	HomeTeamID string  `db:"home_team_id" yaml:"home_team_id" validate:"required"`
	AwayTeamID string  `db:"away_team_id" yaml:"away_team_id" validate:"required,nefield=HomeTeamID"`
	HomeScore  *int    `db:"home_score" yaml:"home_score,omitempty" validate:"omitempty,gte=0"`
	AwayScore  *int    `db:"away_score" yaml:"away_score,omitempty" validate:"omitempty,gte=0"`
	Venue      *string `db:"venue" yaml:"venue,omitempty"`
	Attendance *int    `db:"attendance" yaml:"attendance,omitempty" validate:"omitempty,gte=0"`
}
