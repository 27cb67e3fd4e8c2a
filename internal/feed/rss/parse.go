// Package rss fetches RSS 2.0 and Atom feeds and normalizes their entries.
package rss

import (
	"bytes"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
	gorss "github.com/mmcdole/gofeed/rss"

	"github.com/alexisbeaulieu97/tilebar/internal/seen"
)

// Item is one normalized feed entry.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Summary   string    `json:"summary,omitempty"`
	Source    string    `json:"source"`
	Published time.Time `json:"published,omitzero"`
}

// Identity is the key under which the item is tracked as seen.
func (i Item) Identity() string {
	return seen.Identity(i.ID, i.Link, i.Title)
}

// Parse reads an RSS document, falling back to Atom when the RSS parser
// fails or finds no items.
func Parse(data []byte, source string) ([]Item, error) {
	rssFeed, rssErr := (&gorss.Parser{}).Parse(bytes.NewReader(data))
	if rssErr == nil && len(rssFeed.Items) > 0 {
		items := make([]Item, 0, len(rssFeed.Items))
		for _, entry := range rssFeed.Items {
			items = append(items, fromRSS(entry, source))
		}
		return items, nil
	}

	atomFeed, atomErr := (&atom.Parser{}).Parse(bytes.NewReader(data))
	if atomErr != nil || len(atomFeed.Entries) == 0 {
		// A well-formed but empty document of either kind is just empty.
		if rssErr == nil || atomErr == nil {
			return []Item{}, nil
		}
		return nil, rssErr
	}

	items := make([]Item, 0, len(atomFeed.Entries))
	for _, entry := range atomFeed.Entries {
		items = append(items, fromAtom(entry, source))
	}
	return items, nil
}

func fromRSS(entry *gorss.Item, source string) Item {
	item := Item{
		Title:   clean(entry.Title),
		Link:    strings.TrimSpace(entry.Link),
		Summary: clean(entry.Description),
		Source:  source,
	}
	if entry.GUID != nil {
		item.ID = strings.TrimSpace(entry.GUID.Value)
	}
	if item.Link == "" && len(entry.Links) > 0 {
		item.Link = strings.TrimSpace(entry.Links[0])
	}
	if entry.PubDateParsed != nil {
		item.Published = entry.PubDateParsed.UTC()
	}
	return item
}

func fromAtom(entry *atom.Entry, source string) Item {
	item := Item{
		ID:      strings.TrimSpace(entry.ID),
		Title:   clean(entry.Title),
		Link:    atomLink(entry.Links),
		Summary: clean(entry.Summary),
		Source:  source,
	}
	switch {
	case entry.PublishedParsed != nil:
		item.Published = entry.PublishedParsed.UTC()
	case entry.UpdatedParsed != nil:
		item.Published = entry.UpdatedParsed.UTC()
	}
	return item
}

// atomLink prefers rel="alternate" or a link with no rel.
func atomLink(links []*atom.Link) string {
	for _, link := range links {
		if link == nil {
			continue
		}
		if link.Rel == "" || link.Rel == "alternate" {
			return strings.TrimSpace(link.Href)
		}
	}
	return ""
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
