package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Run("Starts Empty if File Missing", func(t *testing.T) {
		c := newCache(t.TempDir(), ".gazelib")
		require.NoError(t, c.Load())
		assert.Equal(t, 0, c.Len())
	})

	t.Run("Self Heals Corrupt File", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ".gazelib"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".gazelib", "index.json"), []byte("{not json"), 0644))

		c := newCache(dir, ".gazelib")
		require.NoError(t, c.Load())
		assert.Equal(t, 0, c.Len())
	})

	t.Run("Persists Entries", func(t *testing.T) {
		dir := t.TempDir()
		mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		c := newCache(dir, ".gazelib")
		c.Set("p1/a.json", &indexEntry{Summary: Summary{ID: "p1/a.json", Valid: true, Samples: 7}, LastModified: mtime})
		require.NoError(t, c.Save())

		reloaded := newCache(dir, ".gazelib")
		require.NoError(t, reloaded.Load())
		entry, hit := reloaded.Get("p1/a.json", mtime)
		require.True(t, hit)
		assert.Equal(t, 7, entry.Summary.Samples)

		_, hit = reloaded.Get("p1/a.json", mtime.Add(time.Second))
		assert.False(t, hit, "stale mtime must miss")
	})

	t.Run("Prune", func(t *testing.T) {
		c := newCache(t.TempDir(), ".gazelib")
		c.Set("keep.json", &indexEntry{})
		c.Set("drop.json", &indexEntry{})
		c.Prune(func(id string) bool { return id == "keep.json" })
		assert.Equal(t, 1, c.Len())
	})
}
