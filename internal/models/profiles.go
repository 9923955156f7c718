package models

import "time"

// PlayerShotProfile is a player's season shot zone distribution and accuracy
type PlayerShotProfile struct {
	SeasonID    string    `db:"season_id" yaml:"season_id" validate:"required"`
	PlayerID    string    `db:"player_id" yaml:"player_id" validate:"required"`
	RimRate     float64   `db:"rim_rate" yaml:"rim_rate" validate:"gte=0,lte=1"`
	MidRate     float64   `db:"mid_rate" yaml:"mid_rate" validate:"gte=0,lte=1"`
	Corner3Rate float64   `db:"corner3_rate" yaml:"corner3_rate" validate:"gte=0,lte=1"`
	Abv3Rate    float64   `db:"abv3_rate" yaml:"abv3_rate" validate:"gte=0,lte=1"`
	RimFGPct    float64   `db:"rim_fg_pct" yaml:"rim_fg_pct" validate:"gte=0,lte=1"`
	MidFGPct    float64   `db:"mid_fg_pct" yaml:"mid_fg_pct" validate:"gte=0,lte=1"`
	ThreeFGPct  float64   `db:"three_fg_pct" yaml:"three_fg_pct" validate:"gte=0,lte=1"`
	ComputedAt  time.Time `db:"computed_at" yaml:"-"`
}

// TeamShotProfile is a team's season shot zone distribution and accuracy
type TeamShotProfile struct {
	SeasonID    string    `db:"season_id" yaml:"season_id" validate:"required"`
	TeamID      string    `db:"team_id" yaml:"team_id" validate:"required"`
	RimRate     float64   `db:"rim_rate" yaml:"rim_rate" validate:"gte=0,lte=1"`
	MidRate     float64   `db:"mid_rate" yaml:"mid_rate" validate:"gte=0,lte=1"`
	Corner3Rate float64   `db:"corner3_rate" yaml:"corner3_rate" validate:"gte=0,lte=1"`
	Abv3Rate    float64   `db:"abv3_rate" yaml:"abv3_rate" validate:"gte=0,lte=1"`
	RimFGPct    float64   `db:"rim_fg_pct" yaml:"rim_fg_pct" validate:"gte=0,lte=1"`
	MidFGPct    float64   `db:"mid_fg_pct" yaml:"mid_fg_pct" validate:"gte=0,lte=1"`
	ThreeFGPct  float64   `db:"three_fg_pct" yaml:"three_fg_pct" validate:"gte=0,lte=1"`
	ComputedAt  time.Time `db:"computed_at" yaml:"-"`
}

// GameMomentum summarizes scoring runs and clutch play in one game
type GameMomentum struct {
	GameID              string    `db:"game_id" yaml:"game_id" validate:"required"`
	BestRunTeamID       *string   `db:"best_run_team_id" yaml:"best_run_team_id,omitempty"`
	BestRunPoints       int       `db:"best_run_points" yaml:"best_run_points" validate:"gte=0"`
	SwingIndex          float64   `db:"swing_index" yaml:"swing_index"`
	ClutchPossessions   int       `db:"clutch_possessions" yaml:"clutch_possessions" validate:"gte=0"`
	ClutchNetRatingHome float64   `db:"clutch_net_rating_home" yaml:"clutch_net_rating_home"`
	ClutchNetRatingAway float64   `db:"clutch_net_rating_away" yaml:"clutch_net_rating_away"`
	ComputedAt          time.Time `db:"computed_at" yaml:"-"`
}

// PlayerTranslationMetrics projects a player's production onto an NBA scale
type PlayerTranslationMetrics struct {
	SeasonID             string    `db:"season_id" yaml:"season_id" validate:"required"`
	PlayerID             string    `db:"player_id" yaml:"player_id" validate:"required"`
	StandardizedUsage    float64   `db:"standardized_usage" yaml:"standardized_usage"`
	StandardizedTS       float64   `db:"standardized_ts" yaml:"standardized_ts"`
	StandardizedCreation float64   `db:"standardized_creation" yaml:"standardized_creation"`
	TranslationScore     float64   `db:"translation_score" yaml:"translation_score"`
	NBAEquivalentRating  float64   `db:"nba_equivalent_rating" yaml:"nba_equivalent_rating"`
	ModelVersion         string    `db:"model_version" yaml:"model_version" validate:"required"`
	ComputedAt           time.Time `db:"computed_at" yaml:"-"`
}

// TeamPlayStyleMetrics splits a team's offense into transition and set play
type TeamPlayStyleMetrics struct {
	SeasonID            string    `db:"season_id" yaml:"season_id" validate:"required"`
	TeamID              string    `db:"team_id" yaml:"team_id" validate:"required"`
	TransitionPossRate  float64   `db:"transition_poss_rate" yaml:"transition_poss_rate" validate:"gte=0,lte=1"`
	SetPlayPossRate     float64   `db:"set_play_poss_rate" yaml:"set_play_poss_rate" validate:"gte=0,lte=1"`
	TransitionOffRating float64   `db:"transition_off_rating" yaml:"transition_off_rating"`
	SetPlayOffRating    float64   `db:"set_play_off_rating" yaml:"set_play_off_rating"`
	PaceProxy           float64   `db:"pace_proxy" yaml:"pace_proxy" validate:"gte=0"`
	EarlyOffenseRate    float64   `db:"early_offense_rate" yaml:"early_offense_rate" validate:"gte=0,lte=1"`
	ComputedAt          time.Time `db:"computed_at" yaml:"-"`
}

// LineupImpactSnapshot is the projected impact of a five-man lineup
type LineupImpactSnapshot struct {
	SeasonID           string    `db:"season_id" yaml:"season_id" validate:"required"`
	TeamID             string    `db:"team_id" yaml:"team_id" validate:"required"`
	LineupKey          string    `db:"lineup_key" yaml:"lineup_key" validate:"required"`
	PlayerIDsJSON      string    `db:"player_ids_json" yaml:"player_ids_json" validate:"required,json"`
	AvgGravity         float64   `db:"avg_gravity" yaml:"avg_gravity"`
	OffenseProjection  float64   `db:"offense_projection" yaml:"offense_projection"`
	SpacingIndex       float64   `db:"spacing_index" yaml:"spacing_index"`
	TransitionFit      float64   `db:"transition_fit" yaml:"transition_fit"`
	SetPlayFit         float64   `db:"set_play_fit" yaml:"set_play_fit"`
	GravityDeltaVsTeam float64   `db:"gravity_delta_vs_team" yaml:"gravity_delta_vs_team"`
	ComputedAt         time.Time `db:"computed_at" yaml:"-"`
}
