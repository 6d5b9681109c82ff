package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gazelib/gazelib"
	lifecycleadapter "github.com/gazelib/gazelib/pkg/adapters/lifecycle"
	"github.com/gazelib/gazelib/pkg/core"
)

var watchOnly []string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Report containers that are added, changed, removed or become invalid",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		opts := append(libOptions(), gazelib.WithWatcherErrorHandler(func(err error) {
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}))
		store, err := gazelib.OpenStore(root, opts...)
		if err != nil {
			fatal("Error opening dataset", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		changes, err := store.Watch(ctx, cfg.Pattern)
		if err != nil {
			fatal("Error starting watcher", err)
		}
		logger.Info("watching", "root", store.Root, "pattern", cfg.Pattern)

		var types []core.ChangeType
		for _, t := range watchOnly {
			types = append(types, core.ChangeType(strings.ToUpper(t)))
		}
		src := lifecycleadapter.NewSource(changes, lifecycleadapter.WithTypes(types...))
		if err := src.Start(ctx); err != nil {
			fatal("Error starting watcher", err)
		}
		for e := range src.Events() {
			change, ok := e.(core.Change)
			if !ok {
				continue
			}
			ts := time.Unix(change.Timestamp, 0).Format(time.RFC3339)
			if change.Type == core.ChangeInvalid {
				fmt.Printf("%s %s: %v\n", ts, change, change.Err)
				continue
			}
			fmt.Printf("%s %s\n", ts, change)
		}
	},
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchOnly, "only", nil, "Change types to report: create, modify, delete, invalid (default all)")
	rootCmd.AddCommand(watchCmd)
}
