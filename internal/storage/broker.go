package storage

import (
	"bytes"
	"sync"
)

// Broker fans changes out to per-key subscribers. Each subscriber channel
// holds at most one pending change and a newer publish replaces it. A
// publish identical to the previous one for the same key is dropped.
type Broker struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan Change
	last   map[string]Change
	nextID int
	closed bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[int]chan Change),
		last: make(map[string]Change),
	}
}

// Subscribe registers interest in key. The returned cancel func is
// idempotent and closes the channel.
func (b *Broker) Subscribe(key string) (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Change, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]chan Change)
	}
	b.subs[key][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.subs[key]; ok {
				if sub, ok := subs[id]; ok {
					delete(subs, id)
					close(sub)
				}
				if len(subs) == 0 {
					delete(b.subs, key)
				}
			}
		})
	}
}

// Publish delivers change to the key's subscribers. It reports whether the
// change was new.
func (b *Broker) Publish(change Change) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	if prev, ok := b.last[change.Key]; ok && prev.Deleted == change.Deleted && bytes.Equal(prev.Value, change.Value) {
		return false
	}
	stored := change
	stored.Value = append([]byte(nil), change.Value...)
	b.last[change.Key] = stored

	for _, ch := range b.subs[change.Key] {
		deliver(ch, stored)
	}
	return true
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for key, subs := range b.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(b.subs, key)
	}
}

func deliver(ch chan Change, change Change) {
	select {
	case ch <- change:
		return
	default:
	}

	// Replace the stale pending value.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- change:
	default:
	}
}
