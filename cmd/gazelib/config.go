package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/gazelib/gazelib"
	"github.com/gazelib/gazelib/pkg/adapters/fs"
)

// cliConfig mirrors the optional .gazelib.yaml file. Flags override it.
type cliConfig struct {
	Delimiter     string `yaml:"delimiter"`
	HumanReadable bool   `yaml:"human_readable"`
	TimeNamespace string `yaml:"time_namespace"`
	TimeUnit      string `yaml:"time_unit"`
	Workers       int    `yaml:"workers"`
	Pattern       string `yaml:"pattern"`
	LogFile       string `yaml:"log_file"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	Verbose       bool   `yaml:"verbose"`
}

func defaultConfig() cliConfig {
	return cliConfig{
		Delimiter:     "\t",
		TimeNamespace: "gazelib",
		TimeUnit:      "microseconds",
		Workers:       4,
		Pattern:       fs.DefaultPattern,
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
	}
}

// loadConfig reads path over the defaults. An empty path looks for
// .gazelib.yaml at the dataset root above the working directory and falls
// back to the defaults when there is none.
func loadConfig(path string) (cliConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return cfg, err
		}
		root, err := gazelib.FindRoot(wd)
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(root, ".gazelib.yaml")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if _, err := cfg.delimiter(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// delimiter returns the single rune configured as CSV delimiter.
// The names "tab" and "comma" are accepted as well.
func (c cliConfig) delimiter() (rune, error) {
	switch c.Delimiter {
	case "tab":
		return '\t', nil
	case "comma":
		return ',', nil
	}
	r, size := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError || size != len(c.Delimiter) {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	return r, nil
}
