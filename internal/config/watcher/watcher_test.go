package watcher

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.String())
	}
}

func TestWatchWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("a = 1\n"), 0o644))

	w, err := New(path, WithDebounce(20*time.Millisecond), WithLogger(quiet()))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("a = 2\n"), 0o644))
	ev := waitEvent(t, w)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, OpWrite, ev.Op)
}

func TestWatchCreateAndIgnoreSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	w, err := New(path, WithDebounce(0), WithLogger(quiet()))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("a = 1\n"), 0o644))

	ev := waitEvent(t, w)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, OpCreate, ev.Op)
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "no", "config.toml"))
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "config.toml"), WithLogger(quiet()))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
}

func TestCoalesce(t *testing.T) {
	now := time.Now()
	ev := func(op Operation) Event { return Event{Path: "p", Op: op, Time: now} }

	tests := []struct {
		name string
		ops  []Operation
		want Operation
	}{
		{"single write", []Operation{OpWrite}, OpWrite},
		{"create then write", []Operation{OpCreate, OpWrite}, OpCreate},
		{"write then remove", []Operation{OpWrite, OpRemove}, OpRemove},
		{"rename then write", []Operation{OpRename, OpWrite}, OpCreate},
		{"remove then create", []Operation{OpRemove, OpCreate}, OpCreate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pending *Event
			for _, op := range tt.ops {
				pending = coalesce(pending, ev(op))
			}
			assert.Equal(t, tt.want, pending.Op)
		})
	}
}

func TestConvertOp(t *testing.T) {
	op, ok := convertOp(fsnotify.Write)
	assert.True(t, ok)
	assert.Equal(t, OpWrite, op)

	op, ok = convertOp(fsnotify.Create | fsnotify.Write)
	assert.True(t, ok)
	assert.Equal(t, OpCreate, op)

	_, ok = convertOp(fsnotify.Chmod)
	assert.False(t, ok)
}
