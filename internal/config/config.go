package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tally-dev/tally/internal/model"
)

// FileName is the default config file name.
const FileName = "tally.yaml"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Import     ImportConfig     `yaml:"import"`
	Log        LogConfig        `yaml:"log"`
	Categories []CategoryConfig `yaml:"categories"`
}

// StoreConfig locates the remembered-categories database.
type StoreConfig struct {
	Path string `yaml:"path" env:"TALLY_DB"`
}

// ImportConfig controls statement import and the categorisation session.
type ImportConfig struct {
	DefaultSource string `yaml:"default_source" env:"TALLY_SOURCE"`
	LookAhead     int    `yaml:"look_ahead" env:"TALLY_LOOK_AHEAD"` // records shown after the current one
	OutDir        string `yaml:"out_dir" env:"TALLY_OUT_DIR"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level string `yaml:"level" env:"TALLY_LOG_LEVEL"`
}

// CategoryConfig binds a key to a label.
type CategoryConfig struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path if it exists, otherwise returns defaults.
// Environment variables (and a .env file in the working directory) override either.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Choices converts the configured categories into keystroke bindings.
func (c *Config) Choices() ([]model.CategoryChoice, error) {
	choices := make([]model.CategoryChoice, 0, len(c.Categories))
	for _, cc := range c.Categories {
		if utf8.RuneCountInString(cc.Key) != 1 {
			return nil, fmt.Errorf("category %q: key must be a single character, got %q", cc.Label, cc.Key)
		}
		r, _ := utf8.DecodeRuneInString(cc.Key)
		choices = append(choices, model.CategoryChoice{Key: r, Label: model.Category(cc.Label)})
	}
	return choices, nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "transactions_db.sqlite3",
		},
		Import: ImportConfig{
			DefaultSource: string(model.InstitutionAmex),
			LookAhead:     14,
			OutDir:        ".",
		},
		Log: LogConfig{
			Level: "info",
		},
		Categories: defaultCategories(),
	}
}
