// Package storage persists small named documents (layouts, seen sets,
// timestamps) and tells watchers when they change, including changes made
// by other tilebar processes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Change describes a new value for a key. Deleted is set when the key was
// removed, in which case Value is nil.
type Change struct {
	Key     string
	Value   []byte
	Deleted bool
}

// Store is a key/value store with change notification.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Watch delivers the latest change for key until cancel is called or
	// the store is closed. Intermediate values may be skipped.
	Watch(key string) (<-chan Change, func())
	Close() error
}

// Config selects and parameterises a backend.
type Config struct {
	Backend string
	Dir     string
	Poll    time.Duration
}

// Open creates the configured backend rooted at cfg.Dir.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Dir, log)
	case BackendSQLite:
		return NewSQLiteStore(ctx, filepath.Join(cfg.Dir, "tilebar.db"), cfg.Poll, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidKey reports whether key can be stored by every backend.
func ValidKey(key string) bool {
	return len(key) <= 128 && keyPattern.MatchString(key)
}

func checkKey(key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
