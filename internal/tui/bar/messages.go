package bar

import (
	"time"

	"github.com/alexisbeaulieu97/tilebar/internal/feed/notion"
	"github.com/alexisbeaulieu97/tilebar/internal/feed/rss"
	"github.com/alexisbeaulieu97/tilebar/internal/host"
	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/poller"
)

// tickMsg drives host sampling and the clock.
type tickMsg time.Time

// hostSampledMsg carries a fresh host reading.
type hostSampledMsg struct {
	Snapshot host.Snapshot
	Err      error
}

// layoutChangedMsg is sent when the stored layout changes.
type layoutChangedMsg struct {
	Layout layout.Layout
}

// rssUpdatedMsg is sent after every RSS fetch cycle.
type rssUpdatedMsg poller.Snapshot[rss.Item]

// notionUpdatedMsg is sent after every Notion fetch cycle.
type notionUpdatedMsg poller.Snapshot[notion.Task]

// seenChangedMsg is sent when another process marks RSS items seen.
type seenChangedMsg struct{}

// subscriptionClosedMsg ends a channel subscription.
type subscriptionClosedMsg struct {
	Name string
}

// controlDoneMsg reports the outcome of a media or WM control.
type controlDoneMsg struct {
	Action string
	Err    error
}

// SurfaceClosedMsg is sent by a Launcher when a child surface exits.
type SurfaceClosedMsg struct {
	Surface string
	Err     error
}
