package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherTriggersOnSourceChange(t *testing.T) {
	dir := t.TempDir()

	rescans := make(chan struct{}, 8)
	w, err := New(dir, func(context.Context) {
		rescans <- struct{}{}
	}, Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	assert.True(t, w.IsWatching())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.rs"), []byte("fn main() {}"), 0644))

	select {
	case <-rescans:
	case <-time.After(5 * time.Second):
		t.Fatal("no rescan triggered after source change")
	}

	stats := w.GetStats()
	assert.GreaterOrEqual(t, stats.EventsSeen, 1)
	assert.GreaterOrEqual(t, stats.Rescans, 1)
	assert.Contains(t, stats.LastEventPath, "main.rs")
}

func TestWatcherIgnoresUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()

	rescans := make(chan struct{}, 8)
	w, err := New(dir, func(context.Context) {
		rescans <- struct{}{}
	}, Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("notes"), 0644))

	select {
	case <-rescans:
		t.Fatal("rescan triggered for unsupported file")
	case <-time.After(500 * time.Millisecond):
	}

	assert.Equal(t, 0, w.GetStats().EventsSeen)
}

func TestWatcherIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.Mkdir(target, 0755))

	rescans := make(chan struct{}, 8)
	w, err := New(dir, func(context.Context) {
		rescans <- struct{}{}
	}, Options{Debounce: 50 * time.Millisecond, IgnorePatterns: []string{"target"}})
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(target, "gen.rs"), []byte("fn gen() {}"), 0644))

	select {
	case <-rescans:
		t.Fatal("rescan triggered for ignored path")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, func(context.Context) {}, Options{})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
	assert.False(t, w.IsWatching())
}

func TestWatcherStopAfterStartFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	w, err := New(missing, func(context.Context) {}, Options{})
	require.NoError(t, err)
	require.Error(t, w.Start(context.Background()))
	assert.False(t, w.IsWatching())

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked after failed Start")
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w, err := New(t.TempDir(), func(context.Context) {}, Options{})
	require.NoError(t, err)

	w.Stop()
	assert.False(t, w.IsWatching())
}

func TestWatcherStartTwice(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, func(context.Context) {}, Options{})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
}
