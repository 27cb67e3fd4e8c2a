package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

// MinInterval is the shortest allowed polling interval.
const MinInterval = 15 * time.Second

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

// Source is one configured feed.
type Source struct {
	Name     string        `mapstructure:"name" json:"name"`
	URL      string        `mapstructure:"url" json:"url" validate:"required,url"`
	MaxAge   time.Duration `mapstructure:"maxAge" json:"maxAge,omitempty"`
	MaxItems int           `mapstructure:"maxItems" json:"maxItems,omitempty" validate:"min=0"`
}

// Label returns the display name, falling back to the URL host.
func (s Source) Label() string {
	if s.Name != "" {
		return s.Name
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s.URL, "https://"), "http://")
	if host, _, ok := strings.Cut(trimmed, "/"); ok {
		return host
	}
	return trimmed
}

// Fetcher downloads and parses single feeds.
type Fetcher struct {
	client    *http.Client
	userAgent string
	now       func() time.Time
}

// NewFetcher creates a Fetcher. A nil client uses a client with a 15s
// timeout.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if userAgent == "" {
		userAgent = "tilebar"
	}
	return &Fetcher{client: client, userAgent: userAgent, now: time.Now}
}

// Fetch downloads src and returns its filtered items.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]Item, error) {
	label := src.Label()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, tberrors.NewFetchError(label, 0, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, tberrors.NewFetchError(label, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, tberrors.NewFetchError(label, resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, tberrors.NewFetchError(label, resp.StatusCode, err)
	}

	items, err := Parse(body, label)
	if err != nil {
		return nil, tberrors.NewParseError(src.URL, body, err)
	}
	return Filter(items, src, f.now()), nil
}

// Filter drops items with neither title nor link, items older than
// src.MaxAge and duplicates, orders the rest newest first and keeps at most
// src.MaxItems. Undated items are kept and sort last.
func Filter(items []Item, src Source, now time.Time) []Item {
	out := make([]Item, 0, len(items))
	seenIDs := make(map[string]struct{}, len(items))

	for _, item := range items {
		if item.Title == "" && item.Link == "" {
			continue
		}
		if src.MaxAge > 0 && !item.Published.IsZero() && now.Sub(item.Published) > src.MaxAge {
			continue
		}
		id := item.Identity()
		if _, dup := seenIDs[id]; dup {
			continue
		}
		seenIDs[id] = struct{}{}
		out = append(out, item)
	}

	SortNewestFirst(out)

	if src.MaxItems > 0 && len(out) > src.MaxItems {
		out = out[:src.MaxItems]
	}
	return out
}

// SortNewestFirst orders items by publish date, newest first, with undated
// items last in their original order.
func SortNewestFirst(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Published, items[j].Published
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})
}

// Aggregator fetches every configured source in order.
type Aggregator struct {
	fetcher *Fetcher
	sources []Source
	log     *logger.Logger
}

// NewAggregator creates an aggregator over sources.
func NewAggregator(fetcher *Fetcher, sources []Source, log *logger.Logger) *Aggregator {
	return &Aggregator{fetcher: fetcher, sources: sources, log: log.With("component", "rss")}
}

// Sources returns the configured sources.
func (a *Aggregator) Sources() []Source {
	return append([]Source(nil), a.sources...)
}

// CycleTimeout is the budget for one Fetch when each request may take up to
// perSource. Sources are fetched in order, so the budget grows with them.
// Zero means no budget.
func (a *Aggregator) CycleTimeout(perSource time.Duration) time.Duration {
	if perSource <= 0 {
		return 0
	}
	return perSource * time.Duration(max(len(a.sources), 1))
}

// Fetch returns the combined items of every source that could be fetched.
// It fails only when every source fails.
func (a *Aggregator) Fetch(ctx context.Context) ([]Item, error) {
	if len(a.sources) == 0 {
		return []Item{}, nil
	}

	var (
		all      []Item
		failures []error
	)
	for _, src := range a.sources {
		items, err := a.fetcher.Fetch(ctx, src)
		if err != nil {
			a.log.Warn(err, "feed fetch failed, skipping", "feed", src.Label())
			failures = append(failures, err)
			continue
		}
		all = append(all, items...)
	}

	if len(failures) == len(a.sources) {
		return nil, fmt.Errorf("all %d feeds failed: %w", len(failures), errors.Join(failures...))
	}

	SortNewestFirst(all)
	return all, nil
}
