package models

// BoxscoreLine is one player's line in one game
type BoxscoreLine struct {
	GameID   string `db:"game_id" yaml:"game_id" validate:"required"`
	PlayerID string `db:"player_id" yaml:"player_id" validate:"required"`
	TeamID   string `db:"team_id" yaml:"team_id" validate:"required"`
	Minutes  int    `db:"minutes" yaml:"minutes" validate:"gte=0,lte=70"`
	Pts      int    `db:"pts" yaml:"pts" validate:"gte=0"`
	Ast      int    `db:"ast" yaml:"ast" validate:"gte=0"`
	Reb      int    `db:"reb" yaml:"reb" validate:"gte=0"`
}
