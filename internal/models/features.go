package models

import "time"

// PlayerSeasonFeatures holds per-season proxy rates for a player on a team
type PlayerSeasonFeatures struct {
	SeasonID            string  `db:"season_id" yaml:"season_id" validate:"required"`
	PlayerID            string  `db:"player_id" yaml:"player_id" validate:"required"`
	TeamID              string  `db:"team_id" yaml:"team_id" validate:"required"`
	GP                  int     `db:"gp" yaml:"gp" validate:"gte=0"`
	Minutes             float64 `db:"minutes" yaml:"minutes" validate:"gte=0"`
	UsageProxy          float64 `db:"usage_proxy" yaml:"usage_proxy"`
	TSProxy             float64 `db:"ts_proxy" yaml:"ts_proxy"`
	AstRateProxy        float64 `db:"ast_rate_proxy" yaml:"ast_rate_proxy"`
	TovRateProxy        float64 `db:"tov_rate_proxy" yaml:"tov_rate_proxy"`
	RebShareProxy       float64 `db:"reb_share_proxy" yaml:"reb_share_proxy"`
	ClutchImpact        float64 `db:"clutch_impact" yaml:"clutch_impact"`
	ArchetypeVectorJSON string  `db:"archetype_vector_json" yaml:"archetype_vector_json" validate:"required,json"`
}

// NBAGravity is the gravity score set for an NBA player
type NBAGravity struct {
	SeasonID       string    `db:"season_id" yaml:"season_id" validate:"required"`
	PlayerID       string    `db:"player_id" yaml:"player_id" validate:"required"`
	GravityOverall float64   `db:"gravity_overall" yaml:"gravity_overall" validate:"gte=0,lte=100"`
	GravityOnBall  float64   `db:"gravity_on_ball" yaml:"gravity_on_ball" validate:"gte=0,lte=100"`
	GravityOffBall float64   `db:"gravity_off_ball" yaml:"gravity_off_ball" validate:"gte=0,lte=100"`
	UpdatedAt      time.Time `db:"updated_at" yaml:"-"`
}

// TeamGravityEffect aggregates player gravity at team level
type TeamGravityEffect struct {
	SeasonID               string    `db:"season_id" yaml:"season_id" validate:"required"`
	TeamID                 string    `db:"team_id" yaml:"team_id" validate:"required"`
	TeamGravityLoad        float64   `db:"team_gravity_load" yaml:"team_gravity_load"`
	GravityAdjustedOffense float64   `db:"gravity_adjusted_offense" yaml:"gravity_adjusted_offense"`
	GravitySpillover       float64   `db:"gravity_spillover" yaml:"gravity_spillover"`
	ModelVersion           string    `db:"model_version" yaml:"model_version" validate:"required"`
	ComputedAt             time.Time `db:"computed_at" yaml:"-"`
}

// TeamFatigueEffect is the schedule fatigue summary for a team
type TeamFatigueEffect struct {
	SeasonID              string    `db:"season_id" yaml:"season_id" validate:"required"`
	TeamID                string    `db:"team_id" yaml:"team_id" validate:"required"`
	FatigueScore          float64   `db:"fatigue_score" yaml:"fatigue_score" validate:"gte=0,lte=1"`
	RestDisadvantageGames int       `db:"rest_disadvantage_games" yaml:"rest_disadvantage_games" validate:"gte=0"`
	TravelKM              float64   `db:"travel_km" yaml:"travel_km" validate:"gte=0"`
	ModelVersion          string    `db:"model_version" yaml:"model_version" validate:"required"`
	ComputedAt            time.Time `db:"computed_at" yaml:"-"`
}

// GameFatigueFlags marks fatigue imbalance for one game
type GameFatigueFlags struct {
	GameID                 string  `db:"game_id" yaml:"game_id" validate:"required"`
	HomeFatigueScore       float64 `db:"home_fatigue_score" yaml:"home_fatigue_score" validate:"gte=0,lte=1"`
	AwayFatigueScore       float64 `db:"away_fatigue_score" yaml:"away_fatigue_score" validate:"gte=0,lte=1"`
	RestDisadvantageFlag   int     `db:"rest_disadvantage_flag" yaml:"rest_disadvantage_flag" validate:"oneof=0 1"`
	TravelDisadvantageFlag int     `db:"travel_disadvantage_flag" yaml:"travel_disadvantage_flag" validate:"oneof=0 1"`
}
