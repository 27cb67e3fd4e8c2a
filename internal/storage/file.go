package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
)

const (
	fileExt          = ".json"
	debounceInterval = 100 * time.Millisecond
)

// FileStore keeps one file per key under a directory. Writes go through a
// temporary file and a rename so readers never observe a partial document.
type FileStore struct {
	dir    string
	log    *logger.Logger
	broker *Broker

	mu sync.Mutex

	watcher    *fsnotify.Watcher
	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
	done       chan struct{}
	closeOnce  sync.Once
}

// NewFileStore creates dir if needed and starts watching it for changes
// made by other processes.
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("storage directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch storage directory: %w", err)
	}

	s := &FileStore{
		dir:      dir,
		log:      log.With("component", "file_store"),
		broker:   NewBroker(),
		watcher:  watcher,
		debounce: make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	go s.processEvents()

	return s, nil
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// Get reads the value stored for key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set replaces the value for key atomically.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(key)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	s.broker.Publish(Change{Key: key, Value: value})
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	s.broker.Publish(Change{Key: key, Deleted: true})
	return nil
}

// Watch subscribes to changes of key.
func (s *FileStore) Watch(key string) (<-chan Change, func()) {
	return s.broker.Subscribe(key)
}

// Close stops the watcher and closes every subscription.
func (s *FileStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.watcher.Close()

		s.debounceMu.Lock()
		for path, timer := range s.debounce {
			timer.Stop()
			delete(s.debounce, path)
		}
		s.debounceMu.Unlock()

		s.broker.Close()
	})
	return err
}

func (s *FileStore) processEvents() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn(err, "file watcher error")
		}
	}
}

func (s *FileStore) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return
	}
	key := strings.TrimSuffix(name, fileExt)
	if !ValidKey(key) {
		return
	}

	// Atomic writes by other processes surface as Create or Rename on the
	// target; a Remove or Rename away means the key is gone.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	s.debounceEvent(event.Name, func() {
		s.reload(key)
	})
}

func (s *FileStore) debounceEvent(path string, fn func()) {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()

	select {
	case <-s.done:
		return
	default:
	}

	if timer, ok := s.debounce[path]; ok {
		timer.Stop()
	}

	s.debounce[path] = time.AfterFunc(debounceInterval, func() {
		s.debounceMu.Lock()
		delete(s.debounce, path)
		s.debounceMu.Unlock()
		fn()
	})
}

func (s *FileStore) reload(key string) {
	data, err := os.ReadFile(s.path(key))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.broker.Publish(Change{Key: key, Deleted: true})
	case err != nil:
		s.log.Warn(err, "failed to reload changed key", "key", key)
	default:
		if s.broker.Publish(Change{Key: key, Value: data}) {
			s.log.Debug("external change", "key", key)
		}
	}
}
