package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	old := filepath.Join(dir, "payment_1_a.jpg")
	pending := filepath.Join(dir, "payment_2_b.jpg")
	fresh := filepath.Join(dir, "payment_3_c.jpg")
	writeFile(t, old, now.Add(-48*time.Hour))
	writeFile(t, pending, now.Add(-48*time.Hour))
	writeFile(t, fresh, now.Add(-time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))

	c := NewTempCleaner(dir, 24*time.Hour, "@every 1h", func(context.Context) (map[string]bool, error) {
		return map[string]bool{pending: true}, nil
	})
	c.now = func() time.Time { return now }

	n, err := c.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, old)
	assert.FileExists(t, pending)
	assert.FileExists(t, fresh)
	assert.DirExists(t, filepath.Join(dir, "sub"))
}

func TestSweepMissingDir(t *testing.T) {
	c := NewTempCleaner(filepath.Join(t.TempDir(), "nope"), time.Hour, "@every 1h", nil)
	n, err := c.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweepKeepError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jpg"), time.Now().Add(-48*time.Hour))
	c := NewTempCleaner(dir, time.Hour, "@every 1h", func(context.Context) (map[string]bool, error) {
		return nil, errors.New("redis down")
	})
	_, err := c.Sweep(context.Background())
	assert.Error(t, err)
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
}

func TestStartRejectsBadSchedule(t *testing.T) {
	c := NewTempCleaner(t.TempDir(), time.Hour, "not a schedule", nil)
	assert.Error(t, c.Start())

	ok := NewTempCleaner(t.TempDir(), time.Hour, "@every 1h", nil)
	require.NoError(t, ok.Start())
	ok.Stop()
}
