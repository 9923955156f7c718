// Package seed holds the caller-supplied rows the nightly job writes.
package seed

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"hoopslab/etl/internal/models"
)

//go:embed nightly.yaml
var defaultSeed []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

// Dataset is one nightly snapshot of the warehouse, table by table
type Dataset struct {
	Leagues []models.League `yaml:"leagues" validate:"dive"`
	Seasons []models.Season `yaml:"seasons" validate:"dive"`
	Teams   []models.Team   `yaml:"teams" validate:"dive"`
	Players []models.Player `yaml:"players" validate:"dive"`
	Games   []models.Game   `yaml:"games" validate:"dive"`

	BoxscoreLines        []models.BoxscoreLine         `yaml:"boxscore_lines" validate:"dive"`
	PlayerSeasonFeatures []models.PlayerSeasonFeatures `yaml:"player_season_features" validate:"dive"`
	NBAGravity           []models.NBAGravity           `yaml:"nba_gravity" validate:"dive"`
	TeamGravityEffect    []models.TeamGravityEffect    `yaml:"team_gravity_effect" validate:"dive"`
	TeamFatigueEffect    []models.TeamFatigueEffect    `yaml:"team_fatigue_effect" validate:"dive"`
	GameFatigueFlags     []models.GameFatigueFlags     `yaml:"game_fatigue_flags" validate:"dive"`

	PlayerShotProfiles       []models.PlayerShotProfile        `yaml:"player_shot_profiles,omitempty" validate:"dive"`
	TeamShotProfiles         []models.TeamShotProfile          `yaml:"team_shot_profiles,omitempty" validate:"dive"`
	GameMomentum             []models.GameMomentum             `yaml:"game_momentum,omitempty" validate:"dive"`
	PlayerTranslationMetrics []models.PlayerTranslationMetrics `yaml:"player_translation_metrics,omitempty" validate:"dive"`
	TeamPlayStyleMetrics     []models.TeamPlayStyleMetrics     `yaml:"team_play_style_metrics,omitempty" validate:"dive"`
	LineupImpactSnapshots    []models.LineupImpactSnapshot     `yaml:"lineup_impact_snapshots,omitempty" validate:"dive"`
}

// Default returns the embedded nightly dataset
func Default() (*Dataset, error) {
	ds, err := Decode(bytes.NewReader(defaultSeed))
	if err != nil {
		return nil, errors.Wrap(err, "decode embedded seed")
	}
	return ds, nil
}

// Load reads a dataset from a YAML file. An empty path loads the embedded default.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open seed file %s", path)
	}
	defer f.Close()

	ds, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "seed file %s", path)
	}

	log.Info().
		Str("path", path).
		Int("rows", ds.RowCount()).
		Msg("Seed dataset loaded")
	return ds, nil
}

// Decode parses and validates a YAML dataset. Unknown keys are rejected.
func Decode(r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("seed dataset is empty")
		}
		return nil, errors.Wrap(err, "parse seed yaml")
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks field rules, primary key uniqueness, and that every
// reference points at a row written earlier in the same run
func (d *Dataset) Validate() error {
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(err, "invalid seed dataset")
	}
	return d.checkKeys()
}

// Stamp sets the refresh timestamp on every derived row that carries one
func (d *Dataset) Stamp(now time.Time) {
	now = now.UTC()
	for i := range d.NBAGravity {
		d.NBAGravity[i].UpdatedAt = now
	}
	for i := range d.TeamGravityEffect {
		d.TeamGravityEffect[i].ComputedAt = now
	}
	for i := range d.TeamFatigueEffect {
		d.TeamFatigueEffect[i].ComputedAt = now
	}
	for i := range d.PlayerShotProfiles {
		d.PlayerShotProfiles[i].ComputedAt = now
	}
	for i := range d.TeamShotProfiles {
		d.TeamShotProfiles[i].ComputedAt = now
	}
	for i := range d.GameMomentum {
		d.GameMomentum[i].ComputedAt = now
	}
	for i := range d.PlayerTranslationMetrics {
		d.PlayerTranslationMetrics[i].ComputedAt = now
	}
	for i := range d.TeamPlayStyleMetrics {
		d.TeamPlayStyleMetrics[i].ComputedAt = now
	}
	for i := range d.LineupImpactSnapshots {
		d.LineupImpactSnapshots[i].ComputedAt = now
	}
}

// RowCount returns the total number of rows across all tables
func (d *Dataset) RowCount() int {
	tables, err := d.Tables()
	if err != nil {
		return 0
	}
	n := 0
	for _, t := range tables {
		n += len(t.Rows)
	}
	return n
}
