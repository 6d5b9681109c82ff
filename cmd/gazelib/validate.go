package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gazelib/gazelib"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check files against the gazelib/common/v1 schema",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		failed := 0
		for _, path := range args {
			if _, err := gazelib.Open(path, libOptions()...); err != nil {
				failed++
				fmt.Printf("FAIL %s: %v\n", path, err)
				continue
			}
			fmt.Printf("ok   %s\n", path)
		}
		if failed > 0 {
			fmt.Fprintf(os.Stderr, "%d of %d files invalid\n", failed, len(args))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
