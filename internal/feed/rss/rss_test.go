package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

const rssDoc = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example</title>
    <item>
      <title>Older post</title>
      <link>https://example.com/older</link>
      <guid>older-1</guid>
      <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>  Newer
        post </title>
      <link>https://example.com/newer</link>
      <guid>newer-1</guid>
      <pubDate>Wed, 03 Jan 2024 10:00:00 GMT</pubDate>
    </item>
    <item>
      <description>no title and no link</description>
    </item>
  </channel>
</rss>`

const atomDoc = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Example</title>
  <entry>
    <title>Only entry</title>
    <id>urn:uuid:1225c695</id>
    <link rel="edit" href="https://example.com/edit/1"/>
    <link rel="alternate" href="https://example.com/entry/1"/>
    <updated>2024-02-10T08:00:00Z</updated>
    <summary>Short summary</summary>
  </entry>
</feed>`

func TestParseRSS(t *testing.T) {
	items, err := Parse([]byte(rssDoc), "example")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "older-1", items[0].ID)
	assert.Equal(t, "https://example.com/older", items[0].Link)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), items[0].Published)
	assert.Equal(t, "Newer post", items[1].Title)
	assert.Equal(t, "example", items[1].Source)
}

func TestParseFallsBackToAtom(t *testing.T) {
	items, err := Parse([]byte(atomDoc), "atom")
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "urn:uuid:1225c695", item.ID)
	assert.Equal(t, "Only entry", item.Title)
	assert.Equal(t, "https://example.com/entry/1", item.Link)
	assert.Equal(t, "Short summary", item.Summary)
	assert.Equal(t, time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC), item.Published)
}

func TestParseEmptyRSS(t *testing.T) {
	items, err := Parse([]byte(`<rss version="2.0"><channel><title>x</title></channel></rss>`), "empty")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse([]byte("this is not xml"), "junk")
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		{Title: "ancient", Link: "a", Published: now.Add(-90 * 24 * time.Hour)},
		{Title: "recent", Link: "b", Published: now.Add(-time.Hour)},
		{Title: "undated", Link: "c"},
		{Title: "newest", Link: "d", Published: now.Add(-time.Minute)},
		{Title: "NEWEST", Link: "d", Published: now.Add(-time.Minute)},
		{Summary: "empty"},
	}

	out := Filter(items, Source{MaxAge: 30 * 24 * time.Hour}, now)
	titles := make([]string, 0, len(out))
	for _, item := range out {
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"newest", "recent", "undated"}, titles)

	out = Filter(items, Source{MaxItems: 2}, now)
	require.Len(t, out, 2)
	assert.Equal(t, "newest", out[0].Title)
	assert.Equal(t, "recent", out[1].Title)
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "Go Blog", Source{Name: "Go Blog", URL: "https://go.dev/blog/feed.atom"}.Label())
	assert.Equal(t, "go.dev", Source{URL: "https://go.dev/blog/feed.atom"}.Label())
	assert.Equal(t, "localhost", Source{URL: "http://localhost"}.Label())
}

func TestFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tilebar-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(rssDoc))
	})
	mux.HandleFunc("/atom", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(atomDoc))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<<<"))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "tilebar-test")
	ctx := context.Background()

	items, err := fetcher.Fetch(ctx, Source{Name: "rss", URL: server.URL + "/rss"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Newer post", items[0].Title)

	items, err = fetcher.Fetch(ctx, Source{URL: server.URL + "/atom"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = fetcher.Fetch(ctx, Source{Name: "gone", URL: server.URL + "/gone"})
	var fetchErr *tberrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusGone, fetchErr.Status)
	assert.Equal(t, "gone", fetchErr.Source)

	_, err = fetcher.Fetch(ctx, Source{URL: server.URL + "/broken"})
	var parseErr *tberrors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestAggregator(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rssDoc))
	})
	mux.HandleFunc("/atom", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(atomDoc))
	})
	mux.HandleFunc("/fail", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "")
	ctx := context.Background()

	agg := NewAggregator(fetcher, []Source{
		{Name: "first", URL: server.URL + "/rss"},
		{Name: "broken", URL: server.URL + "/fail"},
		{Name: "second", URL: server.URL + "/atom"},
	}, logger.Nop())

	items, err := agg.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Only entry", items[0].Title)
	assert.Equal(t, "second", items[0].Source)

	allBroken := NewAggregator(fetcher, []Source{{URL: server.URL + "/fail"}}, logger.Nop())
	_, err = allBroken.Fetch(ctx)
	var fetchErr *tberrors.FetchError
	assert.ErrorAs(t, err, &fetchErr)

	empty := NewAggregator(fetcher, nil, logger.Nop())
	items, err = empty.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAggregatorCycleTimeoutCoversEverySource(t *testing.T) {
	const delay = 150 * time.Millisecond
	const perSource = 250 * time.Millisecond

	var sources []Source
	for i := 0; i < 3; i++ {
		doc := fmt.Sprintf(`<rss version="2.0"><channel><item><title>Post %d</title><link>https://example.com/%d</link></item></channel></rss>`, i, i)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(delay)
			_, _ = w.Write([]byte(doc))
		}))
		t.Cleanup(server.Close)
		sources = append(sources, Source{Name: fmt.Sprintf("feed-%d", i), URL: server.URL})
	}

	agg := NewAggregator(NewFetcher(&http.Client{Timeout: perSource}, ""), sources, logger.Nop())
	budget := agg.CycleTimeout(perSource)
	assert.Equal(t, 3*perSource, budget)

	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	items, err := agg.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3, "the last source still fits in the cycle")

	assert.Zero(t, agg.CycleTimeout(0))
	assert.Equal(t, perSource, NewAggregator(nil, nil, nil).CycleTimeout(perSource))
}
