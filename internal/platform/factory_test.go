package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazelib/gazelib/internal/platform"
	"github.com/gazelib/gazelib/pkg/adapters/fs"
)

type participant struct {
	HeadID string `json:"gazelib/gaze/head_id"`
}

func TestOpenStore(t *testing.T) {
	t.Run("Missing directory fails by default", func(t *testing.T) {
		_, err := platform.OpenStore(filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("MustExist=false creates the directory", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "dataset")
		store, err := platform.OpenStore(root, platform.WithMustExist(false))
		require.NoError(t, err)
		assert.Equal(t, root, store.Root)

		info, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("File root is rejected", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.json")
		require.NoError(t, os.WriteFile(file, []byte("{}"), 0644))
		_, err := platform.OpenStore(file)
		assert.ErrorIs(t, err, platform.ErrNotDirectory)
	})
}

func TestOpenRepository(t *testing.T) {
	root := t.TempDir()
	repo, err := platform.OpenRepository(root, platform.WithPattern("**/*.yaml"))
	require.NoError(t, err)
	_, ok := repo.(*fs.Store)
	assert.True(t, ok)

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "a/rec.yaml", newRecording(t)))
	require.NoError(t, repo.Save(ctx, "b/rec.json", newRecording(t)))

	ids, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/rec.yaml"}, ids)

	injected, err := platform.OpenRepository("ignored", platform.WithRepository(repo))
	require.NoError(t, err)
	assert.Same(t, repo, injected)
}

func TestOpenTyped(t *testing.T) {
	root := t.TempDir()
	repo, err := platform.OpenTyped[participant](root)
	require.NoError(t, err)

	store, err := platform.OpenStore(root)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "p01.json", newRecording(t)))

	rec, err := repo.Get(context.Background(), "p01.json")
	require.NoError(t, err)
	assert.Equal(t, "p01", rec.Env.HeadID)
}
