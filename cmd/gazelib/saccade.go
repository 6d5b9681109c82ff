package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/gazelib/gazelib"
	"github.com/gazelib/gazelib/pkg/core"
	"github.com/gazelib/gazelib/pkg/models/saccade"
)

var (
	saccadeTag   string
	saccadeLimit int
)

type saccadeRow struct {
	Index int `json:"index"`
	saccade.Result
	Error string `json:"error,omitempty"`
}

var saccadeCmd = &cobra.Command{
	Use:   "saccade <file>",
	Short: "Find the saccade in a recording, or in every event with --tag",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := gazelib.Open(args[0], libOptions()...)
		if err != nil {
			fatal("Error loading container", err)
		}
		enc := json.NewEncoder(os.Stdout)

		if saccadeTag == "" {
			res, err := saccade.Fit(c, saccade.WithLogger(logger))
			if err != nil {
				fatal("Error fitting saccade", err)
			}
			if err := enc.Encode(res); err != nil {
				fatal("Error encoding result", err)
			}
			return
		}

		i := 0
		for part, err := range c.IterByTag(saccadeTag, saccadeLimit) {
			row := saccadeRow{Index: i}
			i++
			if err == nil {
				row.Result, err = saccade.Fit(part, saccade.WithLogger(logger))
			}
			if err != nil {
				if !errors.Is(err, core.ErrInsufficientData) && !errors.Is(err, core.ErrInvalidRange) {
					fatal("Error fitting saccade", err)
				}
				logger.Warn("no saccade", "tag", saccadeTag, "index", row.Index, "error", err)
				row.Error = err.Error()
			}
			if err := enc.Encode(row); err != nil {
				fatal("Error encoding result", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(saccadeCmd)
	saccadeCmd.Flags().StringVar(&saccadeTag, "tag", "", "Fit once per event with this tag, e.g. icl/experiment/reaction/trial")
	saccadeCmd.Flags().IntVar(&saccadeLimit, "limit", 0, "Stop after this many events (0 for all)")
}
