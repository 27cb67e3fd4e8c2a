package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tilebar/internal/layout"
)

type layoutFormatOptions struct {
	format string
}

func newLayoutCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect, import and reset the stored layout",
	}

	cmd.AddCommand(newLayoutShowCmd(flags))
	cmd.AddCommand(newLayoutExportCmd(flags))
	cmd.AddCommand(newLayoutImportCmd(flags))
	cmd.AddCommand(newLayoutResetCmd(flags))

	return cmd
}

func newLayoutShowCmd(flags *rootFlags) *cobra.Command {
	opts := &layoutFormatOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := encodeLayout(cmd, flags, opts.format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json or yaml")

	return cmd
}

func newLayoutExportCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the active layout to a file",
		Long:  `Write the active layout to a file. Files ending in .yaml or .yml are written as YAML, anything else as JSON.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := encodeLayout(cmd, flags, formatForPath(path))
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return newCommandError("export layout", "writing "+path, err, "Check that the directory exists and is writable.")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Layout exported to %s\n", path)
			return nil
		},
	}

	return cmd
}

func newLayoutImportCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the active layout with one from a file",
		Long:  `Replace the active layout with one read from a JSON or YAML file. The file is validated before anything is stored.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return newCommandError("import layout", "reading "+path, err, "Check the path and try again.")
			}

			var l layout.Layout
			if formatForPath(path) == "yaml" {
				l, err = layout.ParseYAML(data)
			} else {
				l, err = layout.Parse(data)
			}
			if err != nil {
				return newCommandError("import layout", "validating "+path, err, "Run 'tilebar layout show' to see a valid layout.")
			}

			app, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Layouts.Write(cmd.Context(), app.WM, l); err != nil {
				return newCommandError("import layout", "storing layout", err, "Check that the storage directory is writable.")
			}
			app.Log.With("file", path).Info("layout imported")
			fmt.Fprintf(cmd.OutOrStdout(), "Layout for %s imported from %s (%d columns)\n", app.WM, path, len(l.Columns))
			return nil
		},
	}

	return cmd
}

func newLayoutResetCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Layouts.Reset(cmd.Context(), app.WM); err != nil {
				return newCommandError("reset layout", "removing stored layout", err, "Check that the storage directory is writable.")
			}
			app.Log.Info("layout reset")
			fmt.Fprintf(cmd.OutOrStdout(), "Layout for %s reset to the default\n", app.WM)
			return nil
		},
	}

	return cmd
}

func encodeLayout(cmd *cobra.Command, flags *rootFlags, format string) ([]byte, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "json" && format != "yaml" {
		return nil, newCommandError("show layout", "choosing output format", fmt.Errorf("unknown format %q", format), "Use --format json or --format yaml.")
	}

	app, err := newApp(cmd, flags)
	if err != nil {
		return nil, err
	}
	defer app.Close()

	l := app.Layouts.Load(cmd.Context(), app.WM)
	if format == "yaml" {
		return layout.EncodeYAML(l)
	}
	data, err := layout.EncodeIndent(l)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
