package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tilebar/internal/tui/popout"
)

var (
	errNoRSS    = errors.New("no RSS sources configured")
	errNoNotion = errors.New("notion token or database id not configured")
)

func newPopoutCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "popout",
		Short: "Open a feed window",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rss",
		Short: "List RSS items and open them in the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPopout(cmd, flags, "rss")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "notion",
		Short: "List, complete and add Notion tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPopout(cmd, flags, "notion")
		},
	})

	return cmd
}

func runPopout(cmd *cobra.Command, flags *rootFlags, which string) error {
	app, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	log := app.Log.With("surface", "popout."+which)

	var m tea.Model
	switch which {
	case "rss":
		if app.RSS == nil {
			return newCommandError(cmd.CommandPath(), "opening RSS window", errNoRSS, "Add entries under rss.sources in config.yaml.")
		}
		m = popout.NewRSS(ctx, popout.RSSServices{
			Poller:  app.RSS,
			Seen:    app.RSSSeen,
			Palette: app.Palette,
			Log:     log,
		})
		go app.RSS.Run(ctx)
	default:
		if app.Notion == nil {
			return newCommandError(cmd.CommandPath(), "opening Notion window", errNoNotion, "Set notion.token and notion.database_id in config.yaml or TILEBAR_NOTION_TOKEN.")
		}
		m = popout.NewNotion(ctx, popout.NotionServices{
			Poller:  app.Notion,
			Tasks:   app.Tracker,
			Seen:    app.NotionSeen,
			Palette: app.Palette,
			Log:     log,
		})
		go app.Notion.Run(ctx)
	}

	log.Info("launching popout")
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		log.Error(err, "popout failed")
		return fmt.Errorf("failed to run %s popout: %w", which, err)
	}
	return nil
}
