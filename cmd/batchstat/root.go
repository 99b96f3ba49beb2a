package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/batchstat/cmd/batchstat/opts"
	"github.com/walteh/batchstat/pkg/config"
)

var rootOpts = &opts.RootOpts{}

// addRootFlags registers the shared flags and returns the options struct
// they are bound to.
func addRootFlags(cmd *cobra.Command) *opts.RootOpts {
	cmd.PersistentFlags().StringVarP(&rootOpts.ConfigFile, "config", "c", config.DefaultFile, "config file path")
	cmd.PersistentFlags().BoolVarP(&rootOpts.Debug, "debug", "d", false, "enable debug logging")
	return rootOpts
}

// setupLogging configures zerolog after flags have been parsed.
func setupLogging() {
	if rootOpts.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
