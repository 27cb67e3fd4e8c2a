package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/tui/editor"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Edit the bar layout",
		Long:  `Open the layout editor. Every change is saved at once and shows up in running bars.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEditor(cmd, flags)
		},
	}

	return cmd
}

func runEditor(cmd *cobra.Command, flags *rootFlags) error {
	app, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	log := app.Log.With("surface", "config")
	log.Info("launching layout editor")

	ed := layout.NewEditor(app.Layouts.Load(ctx, app.WM), nil, func(l layout.Layout) {
		app.Layouts.Save(ctx, app.WM, l)
	})
	m := editor.New(ctx, ed, app.WM, app.Layouts.Watch(ctx, app.WM), app.Palette, log)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		log.Error(err, "layout editor failed")
		return fmt.Errorf("failed to run layout editor: %w", err)
	}
	return nil
}
