package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/tilebar/internal/feed/notion"
	"github.com/alexisbeaulieu97/tilebar/internal/feed/rss"
)

type feedsListOptions struct {
	jsonOutput bool
}

func newFeedsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Fetch and check the configured feeds",
	}

	cmd.AddCommand(newFeedsListCmd(flags))
	cmd.AddCommand(newFeedsCheckCmd(flags))

	return cmd
}

func newFeedsListCmd(flags *rootFlags) *cobra.Command {
	opts := &feedsListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch every feed once and print the items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedsList(cmd, flags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

type feedsResult struct {
	Items     []rss.Item
	ItemsErr  error
	Tasks     []notion.Task
	TasksErr  error
	seenItems map[string]bool
	seenTasks map[string]bool
}

func runFeedsList(cmd *cobra.Command, flags *rootFlags, opts *feedsListOptions) error {
	app, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Feeds == nil && app.Tracker == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No feeds configured.")
		fmt.Fprintln(cmd.OutOrStdout(), "\nAdd rss.sources or notion.token and notion.database_id to config.yaml.")
		return nil
	}

	ctx := cmd.Context()
	res := feedsResult{seenItems: map[string]bool{}, seenTasks: map[string]bool{}}
	if app.Feeds != nil {
		res.Items, res.ItemsErr = app.Feeds.Fetch(ctx)
		for _, item := range res.Items {
			res.seenItems[item.Identity()] = app.RSSSeen.Has(item.Identity())
		}
	}
	if app.Tracker != nil {
		res.Tasks, res.TasksErr = app.Tracker.Fetch(ctx)
		for _, task := range res.Tasks {
			res.seenTasks[task.Identity()] = app.NotionSeen.Has(task.Identity())
		}
	}

	if res.ItemsErr != nil && res.TasksErr != nil {
		return newCommandError("list feeds", "fetching feeds", fmt.Errorf("rss: %w; notion: %w", res.ItemsErr, res.TasksErr), "Check your network connection and the feed settings.")
	}
	if app.Tracker == nil && res.ItemsErr != nil {
		return newCommandError("list feeds", "fetching RSS", res.ItemsErr, "Check your network connection and rss.sources.")
	}
	if app.Feeds == nil && res.TasksErr != nil {
		return newCommandError("list feeds", "fetching Notion tasks", res.TasksErr, "Run 'tilebar feeds check' to verify the Notion settings.")
	}

	if opts.jsonOutput {
		return renderFeedsJSON(cmd, res)
	}
	return renderFeedsTable(cmd, res)
}

func renderFeedsTable(cmd *cobra.Command, res feedsResult) error {
	out := cmd.OutOrStdout()
	useUnicode := supportsUnicode(out)
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	if res.Items != nil || res.ItemsErr != nil {
		fmt.Fprintln(writer, "RSS\tSOURCE\tTITLE\tPUBLISHED")
		for _, item := range res.Items {
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
				seenMarker(res.seenItems[item.Identity()], useUnicode),
				item.Source,
				valueOrFallback(item.Title, "(untitled)"),
				formatRelativeTime(item.Published),
			)
		}
		if res.ItemsErr != nil {
			fmt.Fprintf(writer, "%s\t\t%v\t\n", failedMarker(useUnicode), res.ItemsErr)
		}
		fmt.Fprintln(writer)
	}

	if res.Tasks != nil || res.TasksErr != nil {
		fmt.Fprintln(writer, "TODO\tSTATUS\tTITLE\tDUE")
		for _, task := range res.Tasks {
			due := "-"
			if task.Due != nil {
				due = task.Due.Format("2006-01-02")
			}
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
				doneMarker(task.Done, useUnicode),
				valueOrFallback(task.Status, "-"),
				valueOrFallback(task.Title, "(untitled)"),
				due,
			)
		}
		if res.TasksErr != nil {
			fmt.Fprintf(writer, "%s\t\t%v\t\n", failedMarker(useUnicode), res.TasksErr)
		}
	}

	return writer.Flush()
}

type feedsJSONItem struct {
	rss.Item
	Seen bool `json:"seen"`
}

type feedsJSONTask struct {
	notion.Task
	Seen bool `json:"seen"`
}

type feedsJSONPayload struct {
	Version     string          `json:"version"`
	RSS         []feedsJSONItem `json:"rss"`
	RSSError    string          `json:"rss_error,omitempty"`
	Notion      []feedsJSONTask `json:"notion"`
	NotionError string          `json:"notion_error,omitempty"`
	Pending     int             `json:"pending"`
}

func renderFeedsJSON(cmd *cobra.Command, res feedsResult) error {
	payload := feedsJSONPayload{
		Version: "1.0",
		RSS:     make([]feedsJSONItem, len(res.Items)),
		Notion:  make([]feedsJSONTask, len(res.Tasks)),
		Pending: notion.Pending(res.Tasks),
	}
	for i, item := range res.Items {
		payload.RSS[i] = feedsJSONItem{Item: item, Seen: res.seenItems[item.Identity()]}
	}
	for i, task := range res.Tasks {
		payload.Notion[i] = feedsJSONTask{Task: task, Seen: res.seenTasks[task.Identity()]}
	}
	if res.ItemsErr != nil {
		payload.RSSError = res.ItemsErr.Error()
	}
	if res.TasksErr != nil {
		payload.NotionError = res.TasksErr.Error()
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func newFeedsCheckCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the RSS sources and the Notion database mapping",
		Long: `Fetch every RSS source once and read the Notion database schema.
Reports sources that fail and Notion properties that are missing or have the wrong type.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedsCheck(cmd, flags)
		},
	}

	return cmd
}

func runFeedsCheck(cmd *cobra.Command, flags *rootFlags) error {
	app, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	useUnicode := supportsUnicode(out)
	failures := 0

	if app.Feeds != nil {
		fetcher := rss.NewFetcher(&http.Client{Timeout: app.Config.RSS.Timeout}, "tilebar/"+version)
		for _, src := range app.Feeds.Sources() {
			items, err := fetcher.Fetch(ctx, src)
			if err != nil {
				failures++
				fmt.Fprintf(out, "%s rss %s: %v\n", failedMarker(useUnicode), src.Label(), err)
				continue
			}
			fmt.Fprintf(out, "%s rss %s: %s\n", okMarker(useUnicode), src.Label(), plural(len(items), "item"))
		}
	} else {
		fmt.Fprintln(out, "rss: no sources configured")
	}

	if app.Tracker != nil {
		db, problems, err := app.Tracker.Check(ctx)
		switch {
		case err != nil:
			failures++
			fmt.Fprintf(out, "%s notion: %v\n", failedMarker(useUnicode), err)
		case len(problems) > 0:
			failures++
			fmt.Fprintf(out, "%s notion %q:\n", failedMarker(useUnicode), db.Name())
			for _, problem := range problems {
				fmt.Fprintf(out, "    %s\n", problem)
			}
		default:
			fmt.Fprintf(out, "%s notion %q: %s\n", okMarker(useUnicode), db.Name(), plural(len(db.Properties), "property"))
		}
	} else {
		fmt.Fprintln(out, "notion: not configured")
	}

	if failures > 0 {
		app.Log.With("failures", failures).Warn(nil, "feed check failed")
		return newCommandError("check feeds", plural(failures, "problem")+" found", fmt.Errorf("see the report above"), "Fix the reported sources or Notion property names in config.yaml.")
	}
	return nil
}

func supportsUnicode(writer any) bool {
	if file, ok := writer.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

func seenMarker(seen, useUnicode bool) string {
	switch {
	case seen && useUnicode:
		return "○"
	case seen:
		return "-"
	case useUnicode:
		return "●"
	default:
		return "*"
	}
}

func doneMarker(done, useUnicode bool) string {
	switch {
	case done && useUnicode:
		return "☑"
	case done:
		return "[x]"
	case useUnicode:
		return "☐"
	default:
		return "[ ]"
	}
}

func okMarker(useUnicode bool) string {
	if useUnicode {
		return "✓"
	}
	return "[OK]"
}

func failedMarker(useUnicode bool) string {
	if useUnicode {
		return "✗"
	}
	return "[XX]"
}

func formatRelativeTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return humanize.Time(ts)
}

func plural(n int, noun string) string {
	switch {
	case n == 1:
		return "1 " + noun
	case strings.HasSuffix(noun, "y"):
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	default:
		return fmt.Sprintf("%d %ss", n, noun)
	}
}

func valueOrFallback(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
