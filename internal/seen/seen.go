// Package seen tracks which feed items the user has already been shown.
package seen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	"github.com/alexisbeaulieu97/tilebar/internal/storage"
)

// Storage keys for the built-in sources.
const (
	KeyRSS     = "tilebar.seen.rss"
	KeyNotion  = "tilebar.seen.notion"
	KeyCleanup = "tilebar.cleanup.last"
)

// Defaults for pruning.
const (
	DefaultRetention = 30 * 24 * time.Hour
	DefaultCleanup   = 24 * time.Hour
)

// Identity builds the normalized identity of an item from its parts. Each
// part is lower-cased with whitespace collapsed; empty parts are kept so
// that positions stay stable.
func Identity(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, part := range parts {
		normalized[i] = strings.ToLower(strings.Join(strings.Fields(part), " "))
	}
	return strings.Join(normalized, "|")
}

// Set is a persisted set of identities stamped with the time each was first
// seen.
type Set struct {
	mu      sync.Mutex
	key     string
	store   storage.Store
	log     *logger.Logger
	entries map[string]time.Time
	now     func() time.Time
}

// Load reads the set stored under key. A missing or unreadable value yields
// an empty set.
func Load(ctx context.Context, store storage.Store, key string, log *logger.Logger) *Set {
	s := &Set{
		key:     key,
		store:   store,
		log:     log.With("seen", key),
		entries: make(map[string]time.Time),
		now:     time.Now,
	}

	data, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn(err, "failed to read seen set")
		}
		return s
	}

	if err := s.replace(data); err != nil {
		s.log.Warn(err, "seen set is corrupt, starting empty")
	}
	return s
}

// Watch adopts changes written to the set's key by other writers, such as
// a popout process marking items. It signals after each adopted change and
// closes the channel when ctx is done.
func (s *Set) Watch(ctx context.Context) <-chan struct{} {
	changes, cancel := s.store.Watch(s.key)
	out := make(chan struct{}, 1)

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
				var data []byte
				if !change.Deleted {
					data = change.Value
				}
				if err := s.replace(data); err != nil {
					s.log.Warn(err, "ignoring corrupt seen set update")
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out
}

// replace swaps the entries for the decoded data. Empty data clears the
// set.
func (s *Set) replace(data []byte) error {
	entries := make(map[string]time.Time)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	return nil
}

// Has reports whether id was marked.
func (s *Set) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Len returns the number of identities held.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Unseen counts the distinct ids that were never marked.
func (s *Set) Unseen(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.entries[id]; ok {
			continue
		}
		counted[id] = struct{}{}
	}
	return len(counted)
}

// Mark records ids as seen and persists the set if anything was added.
// Ids already present keep their original timestamp.
func (s *Set) Mark(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	now := s.now().UTC()
	added := false
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.entries[id]; ok {
			continue
		}
		s.entries[id] = now
		added = true
	}
	s.mu.Unlock()

	if !added {
		return nil
	}
	return s.Save(ctx)
}

// Prune drops entries first seen more than retention before now and
// returns how many were removed. It does not persist.
func (s *Set) Prune(now time.Time, retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-retention)
	removed := 0
	for id, at := range s.entries {
		if at.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Save writes the set to storage.
func (s *Set) Save(ctx context.Context) error {
	s.mu.Lock()
	data, err := json.Marshal(s.entries)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.key, data)
}
