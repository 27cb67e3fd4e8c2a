package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tilebar/internal/tui/bar"
)

func newBarCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bar",
		Short: "Show the status bar",
		Long:  `Show the status bar for the configured window manager. This is also what runs when tilebar is started without a command.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBar(cmd, flags)
		},
	}

	return cmd
}

func runBar(cmd *cobra.Command, flags *rootFlags) error {
	app, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	app.StartPollers(ctx)
	app.Log.Info("launching bar")

	m := bar.New(ctx, bar.Services{
		WM:          app.WM,
		Host:        app.Host(flags.demo),
		Layouts:     app.Layouts,
		RSS:         app.RSS,
		Notion:      app.Notion,
		RSSSeen:     app.RSSSeen,
		Launch:      execLauncher(flags),
		SampleEvery: app.Config.Host.Sample,
		Palette:     app.Palette,
		Glyphs:      app.Glyphs,
		Log:         app.Log.With("surface", "bar"),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		app.Log.Error(err, "bar execution failed")
		return fmt.Errorf("failed to run bar: %w", err)
	}

	app.Log.Info("bar closed")
	return nil
}
