package watchdir

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_SettledFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	w, err := New(dir, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close() //nolint:errcheck

	path := filepath.Join(dir, "user.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"key":"user:1"}`), 0o644))

	select {
	case ev := <-w.Events():
		assert.Equal(t, path, ev.Path)
		assert.False(t, ev.At.IsZero())
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestWatcher_DebouncesRepeatedWrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	w, err := New(dir, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close() //nolint:errcheck

	path := filepath.Join(dir, "counter.json")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case ev := <-w.Events():
		assert.Equal(t, path, ev.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	// The burst should have collapsed into a single event.
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected second event for %s", ev.Path)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresNonJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	w, err := New(dir, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close() //nolint:errcheck

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.json.tmp"), []byte("{"), 0o644))

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for %s", ev.Path)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_CloseEndsStream(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	w, err := New(dir, 20*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, w.Close())

	_, open := <-w.Events()
	assert.False(t, open, "events channel should be closed after Close")
}
