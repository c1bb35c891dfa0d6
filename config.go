package birch

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig configures the window and engine for Run.
type RunConfig struct {
	Title        string  `yaml:"title" json:"title"`
	Width        int     `yaml:"width" json:"width"`
	Height       int     `yaml:"height" json:"height"`
	TPS          int     `yaml:"tps" json:"tps"`
	Debug        bool    `yaml:"debug" json:"debug"`
	LogLevel     string  `yaml:"logLevel" json:"logLevel"`
	ClearColor   Color   `yaml:"clearColor" json:"clearColor"`
	DragDeadZone float64 `yaml:"dragDeadZone" json:"dragDeadZone"`
	SampleRate   int     `yaml:"sampleRate" json:"sampleRate"`
	ShowFPS      bool    `yaml:"showFPS" json:"showFPS"`
}

// Config validation errors.
var (
	ErrInvalidSize     = errors.New("window size must be positive")
	ErrInvalidTPS      = errors.New("tps must be positive")
	ErrInvalidDeadZone = errors.New("drag dead zone must not be negative")
)

// DefaultRunConfig returns the configuration used for zero fields.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Title:        "birch",
		Width:        640,
		Height:       480,
		TPS:          60,
		LogLevel:     "warn",
		ClearColor:   Color{0, 0, 0, 1},
		DragDeadZone: defaultDragDeadZone,
		SampleRate:   44100,
	}
}

// LoadRunConfig parses YAML (or JSON) into a RunConfig. Fields absent from
// data keep their defaults. The result is validated.
func LoadRunConfig(data []byte) (RunConfig, error) {
	cfg := DefaultRunConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("parse run config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// LoadRunConfigFile reads and parses a config file.
func LoadRunConfigFile(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read run config: %w", err)
	}
	return LoadRunConfig(data)
}

// Validate reports the first invalid field.
func (c RunConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("run config: %w: %dx%d", ErrInvalidSize, c.Width, c.Height)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("run config: %w: %d", ErrInvalidTPS, c.TPS)
	}
	if c.DragDeadZone < 0 {
		return fmt.Errorf("run config: %w: %g", ErrInvalidDeadZone, c.DragDeadZone)
	}
	if c.LogLevel != "" {
		if _, err := parseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("run config: %w", err)
		}
	}
	return nil
}
