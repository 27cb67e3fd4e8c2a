package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
)

const defaultPoll = time.Second

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB,
	rev   INTEGER NOT NULL
)`

// SQLiteStore keeps every key in a single table. Each write bumps a global
// revision counter; deletes leave a NULL tombstone so pollers in other
// processes can observe them.
type SQLiteStore struct {
	db     *sql.DB
	log    *logger.Logger
	broker *Broker
	poll   time.Duration

	mu      sync.Mutex
	lastRev int64

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewSQLiteStore opens (or creates) the database at path and starts polling
// for changes every poll interval.
func NewSQLiteStore(ctx context.Context, path string, poll time.Duration, log *logger.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range append(pragmas, schema) {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	if poll <= 0 {
		poll = defaultPoll
	}

	s := &SQLiteStore{
		db:     db,
		log:    log.With("component", "sqlite_store"),
		broker: NewBroker(),
		poll:   poll,
	}

	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(rev), 0) FROM kv`).Scan(&s.lastRev); err != nil {
		db.Close()
		return nil, fmt.Errorf("read revision: %w", err)
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.pollLoop(pollCtx)

	return s, nil
}

// Get reads the value stored for key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	var (
		value   []byte
		deleted bool
	)
	err := s.db.QueryRowContext(ctx, `SELECT value, value IS NULL FROM kv WHERE key = ?`, key).Scan(&value, &deleted)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && deleted) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set upserts the value for key.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, rev)
		VALUES (?, ?, (SELECT COALESCE(MAX(rev), 0) + 1 FROM kv))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, rev = excluded.rev`,
		key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	s.broker.Publish(Change{Key: key, Value: value})
	return nil
}

// Delete tombstones key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE kv SET value = NULL, rev = (SELECT COALESCE(MAX(rev), 0) + 1 FROM kv)
		WHERE key = ? AND value IS NOT NULL`, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	s.broker.Publish(Change{Key: key, Deleted: true})
	return nil
}

// Watch subscribes to changes of key.
func (s *SQLiteStore) Watch(key string) (<-chan Change, func()) {
	return s.broker.Subscribe(key)
}

// Close stops polling and closes the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.broker.Close()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteStore) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.pollOnce(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn(err, "failed to poll sqlite changes")
			}
		}
	}
}

func (s *SQLiteStore) pollOnce(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value, value IS NULL, rev FROM kv WHERE rev > ? ORDER BY rev`, s.lastRev)
	if err != nil {
		return err
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var (
			change Change
			rev    int64
		)
		if err := rows.Scan(&change.Key, &change.Value, &change.Deleted, &rev); err != nil {
			return err
		}
		if change.Deleted {
			change.Value = nil
		} else if change.Value == nil {
			change.Value = []byte{}
		}
		changes = append(changes, change)
		s.lastRev = rev
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	for _, change := range changes {
		s.broker.Publish(change)
	}
	return nil
}
