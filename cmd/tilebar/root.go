package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logFile    string
	wm         string
	verbose    bool
	demo       bool
	ascii      bool
}

// forward returns the flags a child surface needs to see the same
// settings as this process.
func (f *rootFlags) forward() []string {
	var args []string
	if f.configPath != "" {
		args = append(args, "--config", f.configPath)
	}
	if f.logFile != "" {
		args = append(args, "--log-file", f.logFile)
	}
	if f.wm != "" {
		args = append(args, "--wm", f.wm)
	}
	if f.verbose {
		args = append(args, "--verbose")
	}
	if f.demo {
		args = append(args, "--demo")
	}
	if f.ascii {
		args = append(args, "--ascii")
	}
	return args
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "tilebar",
		Short:         "tilebar is a themeable status bar for tiling window managers",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBar(cmd, flags)
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to config.yaml (default: $XDG_CONFIG_HOME/tilebar/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Write logs to this file, or - for stderr (default: <data dir>/tilebar.log)")
	cmd.PersistentFlags().StringVar(&flags.wm, "wm", "", "Window manager layout to use, overriding the config")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.demo, "demo", false, "Show built-in demo metrics instead of reading the host")
	cmd.PersistentFlags().BoolVar(&flags.ascii, "ascii", false, "Draw ASCII glyphs instead of Unicode symbols")

	cmd.AddCommand(newBarCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))
	cmd.AddCommand(newPopoutCmd(flags))
	cmd.AddCommand(newLayoutCmd(flags))
	cmd.AddCommand(newFeedsCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
