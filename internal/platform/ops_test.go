package platform_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazelib/gazelib/internal/platform"
	"github.com/gazelib/gazelib/pkg/core"
)

func newRecording(t *testing.T) *core.Container {
	t.Helper()
	c := core.NewAt(1443604120000000)
	require.NoError(t, c.AddTimeline("eyetracker", []int64{0, 10, 20}))
	require.NoError(t, c.AddStream("gazelib/gaze/left_eye_x_relative", "eyetracker", []any{0.1, 0.2, 0.3}))
	require.NoError(t, c.AddEvent([]string{"trial"}, 0, 20))
	c.AddEnvironment("gazelib/gaze/head_id", "p01")
	c.AddEnvironment("gazelib/general/source_files", []any{"p01.gazedata"})
	c.AddEnvironment("gazelib/gaze/eyetracker/model", "TX300")
	return c
}

func TestLoadSave(t *testing.T) {
	c := newRecording(t)

	for _, name := range []string{"rec.json", "rec.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, platform.Save(path, c, platform.WithHumanReadable(true)))

			back, err := platform.Load(path)
			require.NoError(t, err)
			assert.True(t, c.Equal(back))
		})
	}

	_, err := platform.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestAnonymize(t *testing.T) {
	c := newRecording(t)

	anon, err := platform.Anonymize(c, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(0), anon.TimeReference())
	assert.False(t, anon.HasEnvironments([]string{"gazelib/gaze/head_id"}))
	assert.False(t, anon.HasEnvironments([]string{"gazelib/general/source_files"}))
	assert.True(t, anon.HasEnvironments([]string{"gazelib/gaze/eyetracker/model"}))

	// Relative timing survives and the source is untouched.
	tl, err := anon.Timeline("eyetracker")
	require.NoError(t, err)
	assert.Equal(t, core.Timeline{0, 10, 20}, tl)
	assert.Equal(t, int64(1443604120000000), c.TimeReference())
	assert.True(t, c.HasEnvironments([]string{"gazelib/gaze/head_id"}))

	t.Run("Custom list", func(t *testing.T) {
		anon, err := platform.Anonymize(c, []string{"gazelib/gaze/eyetracker/model"})
		require.NoError(t, err)
		assert.True(t, anon.HasEnvironments([]string{"gazelib/gaze/head_id"}))
		assert.False(t, anon.HasEnvironments([]string{"gazelib/gaze/eyetracker/model"}))
	})
}
