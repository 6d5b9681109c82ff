package main

import (
	"github.com/spf13/cobra"

	"github.com/gazelib/gazelib"
	"github.com/gazelib/gazelib/pkg/convert/tobii"
)

var (
	convertTrial      string
	convertHeadID     string
	convertCalibrated bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert eye tracker exports into containers",
}

var convertTobiiCmd = &cobra.Command{
	Use:   "tobii <gazedata> <experiment-config> <out>",
	Short: "Convert a Tobii .gazedata file",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := tobii.ConvertFiles(args[0], args[1], convertTrial,
			tobii.WithHeadID(convertHeadID),
			tobii.WithCalibrated(convertCalibrated),
			tobii.WithLogger(logger),
		)
		if err != nil {
			fatal("Error converting", err)
		}
		if err := gazelib.Save(args[2], c, libOptions()...); err != nil {
			fatal("Error saving container", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.AddCommand(convertTobiiCmd)
	f := convertTobiiCmd.Flags()
	f.StringVar(&convertTrial, "trial", "", "Trial configuration id in the experiment config, e.g. shift")
	f.StringVar(&convertHeadID, "head-id", "unknown", "Participant identifier")
	f.BoolVar(&convertCalibrated, "calibrated", true, "Whether the tracker calibration succeeded")
	_ = convertTobiiCmd.MarkFlagRequired("trial")
}
