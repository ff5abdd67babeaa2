package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultPrefix is the prefix of chordboard environment variables.
const DefaultPrefix = "CHORDBOARD_"

// EnvLoader loads configuration from environment variables. Only mapped
// variables are read so a stray variable cannot inject unknown keys.
type EnvLoader struct {
	prefix  string
	mapping map[string]string // env var suffix -> config path
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates an environment loader with the default mapping.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(),
		lookup:  os.LookupEnv,
	}
}

// NewEnvLoaderWithLookup creates an environment loader reading variables
// through lookup instead of the process environment.
func NewEnvLoaderWithLookup(prefix string, lookup func(string) (string, bool)) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.lookup = lookup
	return l
}

func defaultEnvMapping() map[string]string {
	return map[string]string{
		"HOTKEYS_ACTIVE":            "hotkeys.active",
		"HOTKEYS_SLOTS_PER_PROFILE": "hotkeys.slots_per_profile",
		"STORAGE_PATH":              "storage.path",
		"PROFILE_DEFAULT":           "profile.default",
		"LOG_LEVEL":                 "log.level",
		"LOG_FORMAT":                "log.format",
		"ACTIONS_SCRIPT":            "actions.script",
		"ACTIONS_TIMEOUT_MS":        "actions.timeout_ms",
	}
}

// Load reads the mapped environment variables into a nested map.
// Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for suffix, path := range l.mapping {
		if val, ok := l.lookup(l.prefix + suffix); ok {
			setByPath(config, path, parseValue(val))
		}
	}
	return config, nil
}

// AddMapping maps an additional variable suffix to a config path.
func (l *EnvLoader) AddMapping(suffix, configPath string) {
	l.mapping[suffix] = configPath
}

// Variables returns the full names of the variables the loader reads.
func (l *EnvLoader) Variables() []string {
	names := make([]string, 0, len(l.mapping))
	for suffix := range l.mapping {
		names = append(names, l.prefix+suffix)
	}
	return names
}

// parseValue converts booleans and integers so they decode into typed
// fields; anything else stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
