package layout

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	"github.com/alexisbeaulieu97/tilebar/internal/storage"
)

// Repository reads and writes layouts through a storage.Store.
type Repository struct {
	store storage.Store
	log   *logger.Logger
}

// NewRepository creates a repository over store.
func NewRepository(store storage.Store, log *logger.Logger) *Repository {
	return &Repository{store: store, log: log.With("component", "layout_repository")}
}

// Load returns the stored layout for wm, or DefaultLayout(wm) when it is
// missing or unreadable.
func (r *Repository) Load(ctx context.Context, wm string) Layout {
	data, err := r.store.Get(ctx, Key(wm))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.log.Warn(err, "failed to read layout, using default")
		}
		return DefaultLayout(wm)
	}
	return r.decode(wm, data)
}

// Save writes l for wm. Failures are logged and dropped.
func (r *Repository) Save(ctx context.Context, wm string, l Layout) {
	if err := r.Write(ctx, wm, l); err != nil {
		r.log.With("wm", wm).Warn(err, "failed to save layout")
	}
}

// Write validates and stores l for wm, returning any failure.
func (r *Repository) Write(ctx context.Context, wm string, l Layout) error {
	if err := Validate(l); err != nil {
		return err
	}
	data, err := Encode(l)
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	return r.store.Set(ctx, Key(wm), data)
}

// Reset removes the stored layout so the default applies again.
func (r *Repository) Reset(ctx context.Context, wm string) error {
	return r.store.Delete(ctx, Key(wm))
}

// Watch delivers the layout for wm every time it changes in storage. Values
// that cannot be parsed and deletions are delivered as the default layout.
// The channel keeps only the newest layout and closes when ctx is done.
func (r *Repository) Watch(ctx context.Context, wm string) <-chan Layout {
	changes, cancel := r.store.Watch(Key(wm))
	out := make(chan Layout, 1)

	go func() {
		defer close(out)
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-changes:
				if !ok {
					return
				}
				next := DefaultLayout(wm)
				if !change.Deleted {
					next = r.decode(wm, change.Value)
				}

				select {
				case <-out:
				default:
				}
				select {
				case out <- next:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (r *Repository) decode(wm string, data []byte) Layout {
	l, err := Parse(data)
	if err != nil {
		r.log.With("wm", wm).Warn(err, "stored layout is invalid, using default")
		return DefaultLayout(wm)
	}
	return l
}
