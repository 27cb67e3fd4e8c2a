package seen

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/alexisbeaulieu97/tilebar/internal/storage"
)

// Cleaner prunes seen sets at most once per interval. The time of the last
// run is kept in storage so that restarts do not trigger extra passes.
type Cleaner struct {
	Store     storage.Store
	Retention time.Duration
	Interval  time.Duration
}

// Run prunes sets when the interval has elapsed since the last recorded
// run. It reports whether a pass happened.
func (c Cleaner) Run(ctx context.Context, now time.Time, sets ...*Set) (bool, error) {
	retention := c.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultCleanup
	}

	last, err := c.lastRun(ctx)
	if err != nil {
		return false, err
	}
	if !last.IsZero() && now.Sub(last) < interval {
		return false, nil
	}

	for _, set := range sets {
		if set.Prune(now, retention) == 0 {
			continue
		}
		if err := set.Save(ctx); err != nil {
			return false, err
		}
	}

	data, err := json.Marshal(now.UTC())
	if err != nil {
		return false, err
	}
	if err := c.Store.Set(ctx, KeyCleanup, data); err != nil {
		return false, err
	}
	return true, nil
}

func (c Cleaner) lastRun(ctx context.Context) (time.Time, error) {
	data, err := c.Store.Get(ctx, KeyCleanup)
	if errors.Is(err, storage.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	var last time.Time
	if err := json.Unmarshal(data, &last); err != nil {
		// Treat an unreadable stamp as never run.
		return time.Time{}, nil
	}
	return last, nil
}
