// Command csvflow is a thin CLI over the tokenizer/handle/streamer/unparse
// packages: parse one or more CSV files to JSON Lines, or unparse a JSON
// array of rows back to CSV. Structured logging follows the ambient
// logrus.Entry-per-operation convention used throughout the module.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.WithField("component", "cmd/csvflow")

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "csvflow",
	Short: "Stream CSV to JSON Lines and back",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newUnparseCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("csvflow failed")
		os.Exit(1)
	}
}
