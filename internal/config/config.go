package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrStatsNeedLearnMode is returned when word stats are requested without learn mode.
var ErrStatsNeedLearnMode = errors.New("outputting word stats requires learn mode to be enabled")

// Config holds all rubybook configuration.
// Values come from Default(), then an optional TOML file, then CLI flags.
type Config struct {
	Learn    LearnConfig    `toml:"learn"`
	Annotate AnnotateConfig `toml:"annotate"`
	Output   OutputConfig   `toml:"output"`
}

// LearnConfig controls the learn-mode decay policy.
type LearnConfig struct {
	Enabled bool `toml:"enabled"`
	// A word is considered learned once it has been seen more than
	// LearnedAfter times...
	LearnedAfter int `toml:"learned_after"`
	// ...and the gap since its previous sighting is below ForgetDistance
	// word positions.
	ForgetDistance int `toml:"forget_distance"`
}

type AnnotateConfig struct {
	LexiconPath    string `toml:"lexicon"`
	KnownWordsPath string `toml:"known_words"`
	ExcludeTopN    int    `toml:"exclude_top_n"`
	PitchAccent    bool   `toml:"pitch_accent"`
	AccentMarker   string `toml:"accent_marker"`
	FlatMarker     string `toml:"flat_marker"`
}

type OutputConfig struct {
	WordStats bool   `toml:"word_stats"`
	StatsDB   string `toml:"stats_db"`
	Verify    bool   `toml:"verify"`
	Prefetch  int    `toml:"prefetch"` // entries decompressed ahead of the writer
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Learn: LearnConfig{
			LearnedAfter:   2,
			ForgetDistance: 2000,
		},
		Annotate: AnnotateConfig{
			AccentMarker: "＊",
			FlatMarker:   "口",
		},
		Output: OutputConfig{
			Prefetch: 8,
		},
	}
}

// Load reads a TOML file on top of Default(). Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks option combinations that cannot be honored.
func (c *Config) Validate() error {
	if (c.Output.WordStats || c.Output.StatsDB != "") && !c.Learn.Enabled {
		return ErrStatsNeedLearnMode
	}
	if c.Learn.LearnedAfter < 1 {
		return fmt.Errorf("learned_after must be at least 1, got %d", c.Learn.LearnedAfter)
	}
	if c.Learn.ForgetDistance < 1 {
		return fmt.Errorf("forget_distance must be at least 1, got %d", c.Learn.ForgetDistance)
	}
	if c.Annotate.ExcludeTopN < 0 {
		return fmt.Errorf("exclude_top_n must not be negative, got %d", c.Annotate.ExcludeTopN)
	}
	if c.Annotate.LexiconPath == "" {
		return fmt.Errorf("no lexicon configured")
	}
	return nil
}

// Markers returns the pitch accent markers, or empty strings when pitch
// accent output is disabled.
func (c *Config) Markers() (accented, flat string) {
	if !c.Annotate.PitchAccent {
		return "", ""
	}
	return c.Annotate.AccentMarker, c.Annotate.FlatMarker
}

// WordStatsPath returns the side file path for the word stats report.
func WordStatsPath(outputPath string) string {
	return outputPath + ".word_stats.txt"
}
