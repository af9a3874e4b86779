// Package config loads run parameters from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Start is the starting cell of the agent.
type Start struct {
	Row int `mapstructure:"row" yaml:"row"`
	Col int `mapstructure:"col" yaml:"col"`
}

// Config holds everything a run needs besides the grid itself.
type Config struct {
	StepBudget         int           `mapstructure:"steps" yaml:"steps"`
	Deadline           time.Duration `mapstructure:"deadline" yaml:"deadline"`
	TrailLength        int           `mapstructure:"trail" yaml:"trail"`
	TickPause          time.Duration `mapstructure:"tick_pause" yaml:"tick_pause"`
	ExploreProbability float64       `mapstructure:"explore_probability" yaml:"explore_probability"`
	Seed               int64         `mapstructure:"seed" yaml:"seed"`
	Start              Start         `mapstructure:"start" yaml:"start"`
	GridFile           string        `mapstructure:"grid_file" yaml:"grid_file"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level"`
	MetricsAddr        string        `mapstructure:"metrics_addr" yaml:"metrics_addr"`
}

// Default returns the parameters used when nothing else is configured.
func Default() Config {
	return Config{
		StepBudget:         7,
		Deadline:           5 * time.Second,
		TrailLength:        3,
		ExploreProbability: 0.1,
		Start:              Start{Row: 1, Col: 2},
		LogLevel:           "info",
	}
}

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
}

// Load reads path on top of Default. Keys missing from the file keep their
// default value. Durations accept Go duration strings such as "250ms".
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg := Default()
	if err := Decode(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode copies raw onto cfg. Unknown keys are rejected. Durations are
// either Go duration strings or plain numbers of milliseconds.
func Decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			millisecondsToDurationHook,
		),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

var durationType = reflect.TypeOf(time.Duration(0))

func millisecondsToDurationHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case uint64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	}
	return data, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.StepBudget < 0 {
		errs = append(errs, &ValidationError{Key: "steps", Reason: "must not be negative"})
	}
	if c.Deadline <= 0 {
		errs = append(errs, &ValidationError{Key: "deadline", Reason: "must be positive"})
	}
	if c.TrailLength < 0 {
		errs = append(errs, &ValidationError{Key: "trail", Reason: "must not be negative"})
	}
	if c.TickPause < 0 {
		errs = append(errs, &ValidationError{Key: "tick_pause", Reason: "must not be negative"})
	}
	if c.ExploreProbability < 0 || c.ExploreProbability > 1 {
		errs = append(errs, &ValidationError{Key: "explore_probability", Reason: "must be within [0, 1]"})
	}
	if c.Start.Row < 0 || c.Start.Col < 0 {
		errs = append(errs, &ValidationError{Key: "start", Reason: "coordinates must not be negative"})
	}
	return errors.Join(errs...)
}
