package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".gazelib.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("File overrides defaults", func(t *testing.T) {
		path := writeConfig(t, "delimiter: comma\nhuman_readable: true\nworkers: 8\nlog_file: gazelib.log\n")
		cfg, err := loadConfig(path)
		require.NoError(t, err)

		assert.True(t, cfg.HumanReadable)
		assert.Equal(t, 8, cfg.Workers)
		assert.Equal(t, "gazelib.log", cfg.LogFile)
		assert.Equal(t, "gazelib", cfg.TimeNamespace)
		assert.Equal(t, "**/*.json", cfg.Pattern)

		d, err := cfg.delimiter()
		require.NoError(t, err)
		assert.Equal(t, ',', d)
	})

	t.Run("Invalid delimiter", func(t *testing.T) {
		_, err := loadConfig(writeConfig(t, "delimiter: ';;'\n"))
		assert.Error(t, err)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := loadConfig(writeConfig(t, "workers: [\n"))
		assert.Error(t, err)
	})

	t.Run("Missing explicit file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{in: "\t", want: '\t'},
		{in: "tab", want: '\t'},
		{in: ",", want: ','},
		{in: ";", want: ';'},
		{in: "", wantErr: true},
		{in: "ab", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := cliConfig{Delimiter: tt.in}.delimiter()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
