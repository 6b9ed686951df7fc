// Command ssfs is the command-line driver for the engine: it opens a
// disk image, maps subcommands onto engine calls, and reports engine
// errors as coloured diagnostics, exiting with the absolute value of the
// negative code each error kind carries.
//
// Thin cobra commands delegate straight into the library; the
// persistent-flag/logging wiring follows vorteil's cmd/vorteil/cli.go.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagLogLevel string
	flagNoColor  bool

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "ssfs",
	Short: "SSFS disk image tool",
	Long:  "ssfs formats, mounts and manipulates SSFS disk images from the command line.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(flagLogLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		color.NoColor = flagNoColor
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable coloured diagnostics")

	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps an engine error to the absolute value of its negative
// code; a non-engine error (bad CLI usage) exits 1.
func exitCode(err error) int {
	type coder interface{ Code() int }
	if ce, ok := err.(coder); ok {
		color.Red("error: %v", err)
		return -ce.Code()
	}
	color.Red("error: %v", err)
	return 1
}
