// Package main provides the gigpilot scout CLI.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gigpilot/gigpilot/internal/config"
)

// Version is set at compile time via ldflags.
var Version = "dev"

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "scout",
		Short: "Scout delivery earning opportunities",
		Long: `scout runs the gigpilot opportunity engine from the command line.

Examples:
  scout predict --user rider-42
  scout predict --user rider-42 --lat 12.9716 --lon 77.5946
  scout predict --user rider-42 --offline
  scout log --user rider-42 --income 850 --hours 3.5`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to gigpilot.yaml")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log provider calls to stderr")

	cmd.AddCommand(newPredictCmd(opts))
	cmd.AddCommand(newLogCmd(opts))
	return cmd
}

// load reads configuration and builds a stderr logger so stdout stays clean
// for command output.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	level := zerolog.WarnLevel
	if o.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return cfg, logger, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = os.Stderr.WriteString("scout: " + err.Error() + "\n")
		os.Exit(1)
	}
}
