package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpservice/internal/config"
	"lpservice/internal/logger"
)

func newStore(t *testing.T) (*TempStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	cfg := &config.Config{
		UploadDirectory:   dir,
		TempFileTTL:       time.Minute,
		TempSweepInterval: 10 * time.Millisecond,
	}
	return NewTempStore(cfg, logger.Discard()), dir
}

func TestTempStore_SaveAndRemove(t *testing.T) {
	store, dir := newStore(t)

	path, err := store.Save([]byte("jpeg bytes"), ".JPG")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".jpg", filepath.Ext(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	store.Remove(path)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing twice is harmless
	store.Remove(path)
}

func TestTempStore_SaveUsesUniqueNames(t *testing.T) {
	store, _ := newStore(t)

	a, err := store.Save([]byte("a"), "png")
	require.NoError(t, err)
	b, err := store.Save([]byte("b"), "png")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTempStore_SweepRemovesOnlyExpiredTempFiles(t *testing.T) {
	store, dir := newStore(t)

	old, err := store.Save([]byte("old"), "jpg")
	require.NoError(t, err)
	fresh, err := store.Save([]byte("fresh"), "jpg")
	require.NoError(t, err)
	other := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(other, past, past))

	removed := store.Sweep(time.Now())

	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
}

func TestTempStore_SweepMissingDirectory(t *testing.T) {
	store, _ := newStore(t)

	assert.Zero(t, store.Sweep(time.Now()))
}

func TestTempStore_RunStopsWithContext(t *testing.T) {
	store, _ := newStore(t)
	path, err := store.Save([]byte("old"), "jpg")
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestTempStore_RunWithoutIntervalReturns(t *testing.T) {
	cfg := &config.Config{UploadDirectory: t.TempDir(), TempFileTTL: time.Minute}
	store := NewTempStore(cfg, logger.Discard())

	done := make(chan struct{})
	go func() {
		store.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run kept going with a zero interval")
	}
}
