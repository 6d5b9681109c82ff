package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gazelib/gazelib"
)

var (
	scanPattern string
	scanJSON    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Summarize every container in a dataset directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		store, err := gazelib.OpenStore(root, libOptions()...)
		if err != nil {
			fatal("Error opening dataset", err)
		}
		pattern := cfg.Pattern
		if scanPattern != "" {
			pattern = scanPattern
		}

		summaries, err := store.Summaries(context.Background(), pattern)
		if err != nil {
			fatal("Error scanning dataset", err)
		}

		if scanJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summaries); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tVALID\tSTREAMS\tEVENTS\tDURATION")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%t\t%d\t%d\t%d\n", s.ID, s.Valid, len(s.Streams), s.Events, s.Duration)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanPattern, "pattern", "", "Glob selecting files (default from config, **/*.json)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output in JSON format")
}
