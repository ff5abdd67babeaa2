package loader

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return []byte(s), nil
}

func (m memFS) Stat(path string) (fs.FileInfo, error) {
	return nil, errors.New("not implemented")
}

func TestTOMLLoad(t *testing.T) {
	l := NewTOMLLoaderWithFS(memFS{"/c.toml": "[log]\nlevel = \"warn\"\n"}, "/c.toml")
	m, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"log": map[string]any{"level": "warn"}}, m)
	assert.Equal(t, "/c.toml", l.Path())
}

func TestTOMLMissingFile(t *testing.T) {
	m, err := NewTOMLLoaderWithFS(memFS{}, "/none.toml").Load()
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestTOMLParseError(t *testing.T) {
	_, err := NewTOMLLoaderWithFS(memFS{"/c.toml": "a = \n"}, "/c.toml").Load()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "/c.toml", perr.Path)
	assert.Contains(t, perr.Error(), "/c.toml")
	assert.NotNil(t, errors.Unwrap(perr))
}

func TestTOMLLoadFromReader(t *testing.T) {
	m, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[hotkeys]\nactive = false\n"))
	require.NoError(t, err)
	assert.Equal(t, false, m["hotkeys"].(map[string]any)["active"])
}

func TestParseErrorFormat(t *testing.T) {
	tests := []struct {
		err  ParseError
		want string
	}{
		{ParseError{Path: "f", Message: "bad"}, "parse error in f: bad"},
		{ParseError{Path: "f", Line: 2, Message: "bad"}, "parse error in f at line 2: bad"},
		{ParseError{Path: "f", Line: 2, Column: 5, Message: "bad"}, "parse error in f at line 2, column 5: bad"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestEnvLoad(t *testing.T) {
	vars := map[string]string{
		"CHORDBOARD_HOTKEYS_ACTIVE":            "off",
		"CHORDBOARD_HOTKEYS_SLOTS_PER_PROFILE": "12",
		"CHORDBOARD_LOG_LEVEL":                 "debug",
		"CHORDBOARD_UNMAPPED":                  "x",
		"OTHER_LOG_LEVEL":                      "error",
	}
	l := NewEnvLoaderWithLookup(DefaultPrefix, func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
	m, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"hotkeys": map[string]any{"active": false, "slots_per_profile": int64(12)},
		"log":     map[string]any{"level": "debug"},
	}, m)
}

func TestEnvAddMapping(t *testing.T) {
	l := NewEnvLoaderWithLookup("T_", func(k string) (string, bool) {
		return "yes", k == "T_EXTRA"
	})
	l.AddMapping("EXTRA", "a.b.c")
	assert.Contains(t, l.Variables(), "T_EXTRA")

	m, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, true, m["a"].(map[string]any)["b"].(map[string]any)["c"])
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("TRUE"))
	assert.Equal(t, false, parseValue("no"))
	assert.Equal(t, int64(-4), parseValue("-4"))
	assert.Equal(t, "~/db", parseValue("~/db"))
	assert.Equal(t, "", parseValue(""))
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"log":     map[string]any{"level": "info", "format": "text"},
		"hotkeys": map[string]any{"active": true},
	}
	src := map[string]any{
		"log":     map[string]any{"level": "debug"},
		"hotkeys": "scalar",
	}
	got := DeepMerge(dst, src)
	assert.Equal(t, map[string]any{"level": "debug", "format": "text"}, got["log"])
	assert.Equal(t, "scalar", got["hotkeys"])

	assert.Equal(t, map[string]any{"a": 1}, DeepMerge(nil, map[string]any{"a": 1}))
	assert.Equal(t, map[string]any{"a": 1}, DeepMerge(map[string]any{"a": 1}, nil))
}
