package main

import (
	"github.com/spf13/cobra"

	"github.com/gazelib/gazelib"
)

var anonymizeCmd = &cobra.Command{
	Use:   "anonymize <in> <out>",
	Short: "Move a recording to the epoch and drop identifying metadata",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := gazelib.Open(args[0], libOptions()...)
		if err != nil {
			fatal("Error loading container", err)
		}
		anon, err := gazelib.Anonymize(c)
		if err != nil {
			fatal("Error anonymizing", err)
		}
		if err := gazelib.Save(args[1], anon, libOptions()...); err != nil {
			fatal("Error saving container", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(anonymizeCmd)
}
