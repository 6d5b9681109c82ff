package main

import (
	"github.com/spf13/cobra"

	"github.com/gazelib/gazelib"
	"github.com/gazelib/gazelib/pkg/adapters/fs"
)

var (
	exportOutput string
	exportTags   []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export parts of a recording as delimited text",
}

var exportTimelineCmd = &cobra.Command{
	Use:   "timeline <file> <timeline>",
	Short: "Write a timeline and its streams, one row per sample",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := gazelib.Open(args[0], libOptions()...)
		if err != nil {
			fatal("Error loading container", err)
		}
		delim, err := cfg.delimiter()
		if err != nil {
			fatal("Error in configuration", err)
		}

		w, err := output(exportOutput)
		if err != nil {
			fatal("Error opening output", err)
		}
		defer w.Close()

		err = fs.WriteTimelineCSV(w, c, args[1], fs.TimelineCSVOptions{
			Delimiter: delim,
			Namespace: cfg.TimeNamespace,
			Unit:      cfg.TimeUnit,
		})
		if err != nil {
			fatal("Error exporting timeline", err)
		}
	},
}

var exportEventsCmd = &cobra.Command{
	Use:   "events <file>",
	Short: "Write the events carrying any of the given tags",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := gazelib.Open(args[0], libOptions()...)
		if err != nil {
			fatal("Error loading container", err)
		}
		delim, err := cfg.delimiter()
		if err != nil {
			fatal("Error in configuration", err)
		}
		tags := exportTags
		if len(tags) == 0 {
			tags = c.Tags()
		}

		w, err := output(exportOutput)
		if err != nil {
			fatal("Error opening output", err)
		}
		defer w.Close()

		if err := fs.WriteEventsCSV(w, c, tags, delim); err != nil {
			fatal("Error exporting events", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportTimelineCmd, exportEventsCmd)
	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportEventsCmd.Flags().StringSliceVar(&exportTags, "tag", nil, "Tags to export (default all)")
}
