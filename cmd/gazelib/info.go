package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gazelib/gazelib"
)

var infoState bool

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Describe the contents of a container file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := gazelib.Open(args[0], libOptions()...)
		if err != nil {
			fatal("Error loading container", err)
		}

		if infoState {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(c.State()); err != nil {
				fatal("Error encoding state", err)
			}
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "schema\t%s\n", c.Schema())
		fmt.Fprintf(w, "time reference\t%d\n", c.TimeReference())
		if d, err := c.Duration(); err == nil {
			fmt.Fprintf(w, "duration\t%d µs\n", d)
		}
		for _, name := range c.TimelineNames() {
			tl, _ := c.Timeline(name)
			fmt.Fprintf(w, "timeline\t%s\t%d points\n", name, len(tl))
		}
		for _, name := range c.StreamNames() {
			tl, _ := c.StreamTimelineName(name)
			fmt.Fprintf(w, "stream\t%s\t%s\n", name, tl)
		}
		for _, tag := range c.Tags() {
			fmt.Fprintf(w, "tag\t%s\t%d events\n", tag, c.CountEventsByTag(tag))
		}
		fmt.Fprintf(w, "events\t%d\n", c.CountEvents())
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoState, "state", false, "Print the introspection state as JSON")
}
