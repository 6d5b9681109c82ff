package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gazelib/gazelib"
)

var (
	verbose       bool
	configPath    string
	humanReadable bool
	delimiterFlag string
	workersFlag   int
)

var (
	cfg    = defaultConfig()
	logger = slog.New(slog.DiscardHandler)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gazelib",
	Short: "Validate, slice, convert and analyse gaze recordings",
	Long: `gazelib works with eye tracking recordings stored as gazelib/common/v1
containers: timelines, value streams, tagged events and environment metadata.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		flags := cmd.Root().PersistentFlags()
		if verbose {
			cfg.Verbose = true
		}
		if flags.Changed("human-readable") {
			cfg.HumanReadable = humanReadable
		}
		if flags.Changed("delimiter") {
			cfg.Delimiter = delimiterFlag
			if _, err := cfg.delimiter(); err != nil {
				return err
			}
		}
		if flags.Changed("workers") {
			cfg.Workers = workersFlag
		}

		level := slog.LevelInfo
		if cfg.Verbose {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{Level: level}

		if cfg.LogFile != "" {
			var w io.Writer = &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    cfg.LogMaxSizeMB,
				MaxBackups: cfg.LogMaxBackups,
			}
			logger = slog.New(slog.NewJSONHandler(w, opts))
		} else {
			logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		}
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: .gazelib.yaml at the dataset root)")
	rootCmd.PersistentFlags().BoolVar(&humanReadable, "human-readable", false, "Write indented JSON with sorted keys")
	rootCmd.PersistentFlags().StringVar(&delimiterFlag, "delimiter", "", `CSV delimiter: a single character, "tab" or "comma"`)
	rootCmd.PersistentFlags().IntVar(&workersFlag, "workers", 0, "Files loaded concurrently when scanning a dataset")
}

// libOptions maps the CLI configuration onto library options.
func libOptions() []gazelib.Option {
	return []gazelib.Option{
		gazelib.WithLogger(logger),
		gazelib.WithHumanReadable(cfg.HumanReadable),
		gazelib.WithWorkers(cfg.Workers),
		gazelib.WithPattern(cfg.Pattern),
	}
}

// output opens path for writing, or returns stdout for "" and "-".
func output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
