// Package config loads chordboard's settings.
//
// Settings come from three layers, lowest first: built-in defaults, the
// TOML file and CHORDBOARD_* environment variables. The merged result is
// decoded into a Config and validated.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/config/loader"
)

// MaxSlotsPerProfile bounds hotkeys.slots_per_profile.
const MaxSlotsPerProfile = 99

// Config is the full configuration.
type Config struct {
	Hotkeys HotkeysConfig `toml:"hotkeys"`
	Storage StorageConfig `toml:"storage"`
	Profile ProfileConfig `toml:"profile"`
	Log     LogConfig     `toml:"log"`
	Actions ActionsConfig `toml:"actions"`
}

// HotkeysConfig controls global registration.
type HotkeysConfig struct {
	// Active registers chords system-wide. Turning it off keeps every
	// chord configured but releases the registrations.
	Active bool `toml:"active"`

	// SlotsPerProfile is the number of slots a new profile is created with.
	SlotsPerProfile int `toml:"slots_per_profile"`
}

// StorageConfig locates the profile database.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ProfileConfig selects the profile loaded at startup.
type ProfileConfig struct {
	Default int64 `toml:"default"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is a logrus level name.
	Level string `toml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format"`
}

// ActionsConfig points at the Lua script run when a hotkey fires.
type ActionsConfig struct {
	// Script is the path of the action script. Empty disables it.
	Script string `toml:"script"`

	// TimeoutMS bounds a single call into the script.
	TimeoutMS int `toml:"timeout_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Hotkeys: HotkeysConfig{
			Active:          true,
			SlotsPerProfile: 36,
		},
		Storage: StorageConfig{
			Path: filepath.Join(DefaultDataDir(), "chordboard.db"),
		},
		Profile: ProfileConfig{
			Default: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Actions: ActionsConfig{
			TimeoutMS: 2000,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "chordboard", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "chordboard", "config.toml")
}

// DefaultDataDir returns the directory the database lives in by default.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "chordboard")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "chordboard")
}

// Load reads path, applies environment overrides and validates the
// result. A missing file at the default location yields the defaults; a
// missing file the caller asked for explicitly is ErrFileNotFound.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if explicit {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
	}
	return LoadFrom(loader.NewTOMLLoader(path), loader.NewEnvLoader(loader.DefaultPrefix))
}

// LoadFrom merges the given sources over the defaults, in order.
func LoadFrom(sources ...loader.Loader) (Config, error) {
	merged, err := toMap(Default())
	if err != nil {
		return Config{}, err
	}
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return Config{}, err
	}
	cfg.Storage.Path = ExpandHome(cfg.Storage.Path)
	cfg.Actions.Script = ExpandHome(cfg.Actions.Script)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting and joins the failures.
func (c Config) Validate() error {
	var errs []error
	if c.Hotkeys.SlotsPerProfile < 1 || c.Hotkeys.SlotsPerProfile > MaxSlotsPerProfile {
		errs = append(errs, &ValidationError{
			Path:    "hotkeys.slots_per_profile",
			Message: fmt.Sprintf("must be between 1 and %d", MaxSlotsPerProfile),
			Value:   c.Hotkeys.SlotsPerProfile,
		})
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, &ValidationError{Path: "storage.path", Message: "must not be empty", Value: c.Storage.Path})
	}
	if c.Profile.Default < 1 {
		errs = append(errs, &ValidationError{Path: "profile.default", Message: "must be a profile id", Value: c.Profile.Default})
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, &ValidationError{Path: "log.level", Message: "unknown level", Value: c.Log.Level})
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, &ValidationError{Path: "log.format", Message: `must be "text" or "json"`, Value: c.Log.Format})
	}
	if c.Actions.TimeoutMS < 1 {
		errs = append(errs, &ValidationError{Path: "actions.timeout_ms", Message: "must be positive", Value: c.Actions.TimeoutMS})
	}
	return errors.Join(errs...)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Marshal renders the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func toMap(c Config) (map[string]any, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// fromMap decodes a merged map, rejecting keys Config doesn't know.
func fromMap(m map[string]any) (Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, &ValidationError{Path: "config", Message: "unknown setting", Value: strict.String()}
		}
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
