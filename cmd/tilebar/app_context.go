package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tilebar/internal/config"
	"github.com/alexisbeaulieu97/tilebar/internal/feed/notion"
	"github.com/alexisbeaulieu97/tilebar/internal/feed/rss"
	"github.com/alexisbeaulieu97/tilebar/internal/host"
	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	"github.com/alexisbeaulieu97/tilebar/internal/poller"
	"github.com/alexisbeaulieu97/tilebar/internal/seen"
	"github.com/alexisbeaulieu97/tilebar/internal/storage"
	"github.com/alexisbeaulieu97/tilebar/internal/theme"
	"github.com/alexisbeaulieu97/tilebar/internal/widget"
)

// AppContext bundles long-lived services created at startup.
type AppContext struct {
	Config  *config.Config
	WM      string
	Log     *logger.Logger
	Session string
	Store   storage.Store
	Layouts *layout.Repository

	RSSSeen    *seen.Set
	NotionSeen *seen.Set

	Feeds   *rss.Aggregator
	Tracker *notion.Tracker
	RSS     *poller.Poller[rss.Item]
	Notion  *poller.Poller[notion.Task]

	Palette theme.Palette
	Glyphs  widget.Glyphs

	closers []func() error
}

// newApp loads settings and opens storage for cmd. The caller must Close
// the returned context.
func newApp(cmd *cobra.Command, flags *rootFlags) (*AppContext, error) {
	ctx := cmd.Context()
	op := cmd.CommandPath()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, newCommandError(op, "loading settings", err, "Fix config.yaml or the TILEBAR_* environment variables and try again.")
	}

	wm := cfg.WM
	if flags.wm != "" {
		if !slices.Contains(layout.WindowManagers(), flags.wm) {
			return nil, newCommandError(op, "selecting window manager", fmt.Errorf("unknown window manager %q", flags.wm), "Use one of glazewm, komorebi, i3 or sway.")
		}
		wm = flags.wm
	}

	app := &AppContext{
		Config:  cfg,
		WM:      wm,
		Session: uuid.NewString(),
		Palette: theme.ForFlavor(theme.Flavor(cfg.Theme.Flavor)),
		Glyphs:  widget.Unicode,
	}
	if flags.ascii {
		app.Glyphs = widget.ASCII
	}

	log, err := app.openLog(flags)
	if err != nil {
		return nil, newCommandError(op, "opening log", err, "Check that the log directory is writable or pass --log-file -.")
	}
	app.Log = log.WithFields(map[string]any{"session": app.Session, "command": op})

	store, err := storage.Open(ctx, storage.Config{
		Backend: cfg.Storage.Backend,
		Dir:     cfg.Storage.Dir,
		Poll:    cfg.Storage.Poll,
	}, app.Log)
	if err != nil {
		_ = app.Close()
		return nil, newCommandError(op, "opening storage", err, fmt.Sprintf("Check that %s is writable.", cfg.Storage.Dir))
	}
	app.Store = store
	app.closers = append(app.closers, store.Close)
	app.Layouts = layout.NewRepository(store, app.Log)

	app.RSSSeen = seen.Load(ctx, store, seen.KeyRSS, app.Log)
	app.NotionSeen = seen.Load(ctx, store, seen.KeyNotion, app.Log)
	cleaner := seen.Cleaner{Store: store, Retention: cfg.Seen.Retention, Interval: cfg.Seen.Cleanup}
	if pruned, err := cleaner.Run(ctx, time.Now(), app.RSSSeen, app.NotionSeen); err != nil {
		app.Log.Warn(err, "seen cleanup failed")
	} else if pruned {
		app.Log.Debug("seen sets pruned")
	}

	app.buildFeeds()
	app.Log.Debug("application context ready")
	return app, nil
}

func (a *AppContext) openLog(flags *rootFlags) (*logger.Logger, error) {
	level := a.Config.Log.Level
	if flags.verbose {
		level = "debug"
	}

	path := flags.logFile
	if path == "" {
		path = a.Config.Log.File
	}
	if path == "" {
		path = filepath.Join(a.Config.Storage.Dir, config.LogFileName)
	}

	log, err := logger.New(logger.Options{Level: level, HumanReadable: true, Path: path})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, log.Close)
	return log, nil
}

func (a *AppContext) buildFeeds() {
	cfg := a.Config

	if len(cfg.RSS.Sources) > 0 {
		sources := make([]rss.Source, len(cfg.RSS.Sources))
		for i, src := range cfg.RSS.Sources {
			sources[i] = rss.Source{Name: src.Name, URL: src.URL, MaxAge: src.MaxAge, MaxItems: src.MaxItems}
		}
		fetcher := rss.NewFetcher(&http.Client{Timeout: cfg.RSS.Timeout}, "tilebar/"+version)
		a.Feeds = rss.NewAggregator(fetcher, sources, a.Log)
		a.RSS = poller.New[rss.Item](poller.Config{
			Source:   "rss",
			Interval: cfg.RSS.Interval,
			Floor:    rss.MinInterval,
			Timeout:  a.Feeds.CycleTimeout(cfg.RSS.Timeout),
		}, a.Feeds.Fetch, a.Log)
	}

	if cfg.Notion.Enabled() {
		client := notion.NewClient(notion.ClientConfig{
			Token:   cfg.Notion.Token,
			Relay:   cfg.Notion.Relay,
			Timeout: cfg.Notion.Timeout,
		}, nil)
		a.Tracker = notion.NewTracker(client, notion.TrackerConfig{
			DatabaseID: cfg.Notion.DatabaseID,
			Properties: notion.Properties{
				Title:  cfg.Notion.Properties.Title,
				Done:   cfg.Notion.Properties.Done,
				Status: cfg.Notion.Properties.Status,
				Due:    cfg.Notion.Properties.Due,
			},
			ShowCompleted: cfg.Notion.ShowCompleted,
		}, a.Log)
		a.Notion = poller.New[notion.Task](poller.Config{
			Source:   "notion",
			Interval: cfg.Notion.Interval,
			Floor:    notion.MinInterval,
			Timeout:  cfg.Notion.Timeout,
		}, a.Tracker.Fetch, a.Log)
	}
}

// StartPollers runs the configured feed pollers until ctx is done.
func (a *AppContext) StartPollers(ctx context.Context) {
	if a.RSS != nil {
		go a.RSS.Run(ctx)
	}
	if a.Notion != nil {
		go a.Notion.Run(ctx)
	}
}

// Host builds the metric and control runtime. Providers that cannot start
// are logged and left out so their widgets render as unavailable.
func (a *AppContext) Host(demo bool) host.Runtime {
	if demo {
		return host.NewStatic().Runtime()
	}

	var rt host.Runtime
	cfg := a.Config.Host

	if pf, err := host.NewProcfs(cfg.ProcMount, cfg.SysMount); err != nil {
		a.Log.Warn(err, "procfs unavailable, metrics disabled")
	} else {
		rt.CPU, rt.Memory, rt.Battery, rt.Network = pf, pf, pf, pf
	}

	if media, err := host.NewMPRIS(cfg.MediaPlayer); err != nil {
		a.Log.Warn(err, "session bus unavailable, media disabled")
	} else {
		rt.Media = media
		a.closers = append(a.closers, media.Close)
	}

	commands := host.DefaultWMCommands(a.WM)
	if len(cfg.WMQuery) > 0 {
		commands.Query = cfg.WMQuery
	}
	if len(cfg.WMToggle) > 0 {
		commands.Toggle = cfg.WMToggle
	}
	rt.WM = host.NewExecWM(a.WM, commands, nil)

	return rt
}

// Close releases everything opened by newApp, newest first.
func (a *AppContext) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
