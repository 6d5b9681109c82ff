package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/gazelib/gazelib"
)

var (
	sliceStart      int64
	sliceEnd        int64
	sliceUnix       bool
	sliceTag        string
	sliceIndex      int
	sliceTimeline   string
	sliceStartIndex int
	sliceEndIndex   int
)

var sliceCmd = &cobra.Command{
	Use:   "slice <in> <out>",
	Short: "Write the part of a recording within a time range, event or index range",
	Long: `Slice a recording by relative time (--start, --end), Unix time (--unix),
the range of a tagged event (--tag, --index) or timeline indices
(--timeline, --start-index, --end-index). A missing --end slices to the end.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := gazelib.Open(args[0], libOptions()...)
		if err != nil {
			fatal("Error loading container", err)
		}

		flags := cmd.Flags()
		hasEnd := flags.Changed("end")
		var out *gazelib.Container

		switch {
		case sliceTag != "":
			out, err = c.SliceByTag(sliceTag, sliceIndex)
		case sliceTimeline != "" && flags.Changed("end-index"):
			out, err = c.SliceByTimeline(sliceTimeline, sliceStartIndex, sliceEndIndex)
		case sliceTimeline != "":
			out, err = c.SliceTimelineFrom(sliceTimeline, sliceStartIndex)
		case !flags.Changed("start"):
			err = errors.New("one of --start, --tag or --timeline is required")
		case sliceUnix && hasEnd:
			out, err = c.SliceByUnixTime(sliceStart, sliceEnd)
		case sliceUnix:
			out = c.SliceFromUnixTime(sliceStart)
		case hasEnd:
			out, err = c.SliceByRelativeTime(sliceStart, sliceEnd)
		default:
			out = c.SliceFromRelativeTime(sliceStart)
		}
		if err != nil {
			fatal("Error slicing", err)
		}

		logger.Debug("sliced container", "in", args[0], "events", out.CountEvents())
		if err := gazelib.Save(args[1], out, libOptions()...); err != nil {
			fatal("Error saving slice", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(sliceCmd)
	f := sliceCmd.Flags()
	f.Int64Var(&sliceStart, "start", 0, "Start time in microseconds (inclusive)")
	f.Int64Var(&sliceEnd, "end", 0, "End time in microseconds (exclusive)")
	f.BoolVar(&sliceUnix, "unix", false, "Interpret --start and --end as Unix times")
	f.StringVar(&sliceTag, "tag", "", "Slice to the range of an event with this tag")
	f.IntVar(&sliceIndex, "index", 0, "Which event with --tag to use")
	f.StringVar(&sliceTimeline, "timeline", "", "Slice by indices of this timeline")
	f.IntVar(&sliceStartIndex, "start-index", 0, "First timeline index")
	f.IntVar(&sliceEndIndex, "end-index", 0, "Timeline index to stop before")
}
