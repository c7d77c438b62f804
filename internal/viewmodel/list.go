// Package viewmodel holds observable state fed by repository subscriptions.
// Every snapshot replaces the state wholesale.
package viewmodel

import (
	"context"
	"sync"

	"insurance-marketplace/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// State is one published snapshot. Err is the last delivery error; Items
// keep the previous snapshot when a delivery fails.
type State[T any] struct {
	Items   []T
	Err     error
	Version uint64
}

// ObserveFunc opens a live query, usually a repository Observe method.
type ObserveFunc[T any] func(ctx context.Context, fn repository.ListFunc[T]) (repository.Subscription, error)

// List owns at most one subscription at a time.
type List[T any] struct {
	name string
	log  *logrus.Logger

	mu          sync.Mutex
	sub         repository.Subscription
	generation  uint64
	state       State[T]
	watchers    map[int]chan State[T]
	nextWatcher int
}

func NewList[T any](name string, log *logrus.Logger) *List[T] {
	return &List[T]{
		name:     name,
		log:      log,
		state:    State[T]{Items: []T{}},
		watchers: make(map[int]chan State[T]),
	}
}

// Start subscribes with observe. A running subscription is closed first, so
// exactly one stays active.
func (l *List[T]) Start(ctx context.Context, observe ObserveFunc[T]) error {
	l.mu.Lock()
	prev := l.sub
	l.sub = nil
	l.generation++
	gen := l.generation
	l.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			l.log.Warnf("Failed to close %s subscription: %+v", l.name, err)
		}
	}

	sub, err := observe(ctx, func(items []T, err error) {
		l.apply(gen, items, err)
	})
	if err != nil {
		l.log.Warnf("Failed to start %s updates: %+v", l.name, err)
		l.apply(gen, nil, err)
		return err
	}

	l.mu.Lock()
	if l.generation != gen {
		// replaced or closed while subscribing
		l.mu.Unlock()
		return sub.Close()
	}
	l.sub = sub
	l.mu.Unlock()
	return nil
}

func (l *List[T]) apply(gen uint64, items []T, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		return
	}
	if err != nil {
		l.log.WithField("viewmodel", l.name).Warnf("Failed to receive %s snapshot: %+v", l.name, err)
		l.state.Err = err
	} else {
		if items == nil {
			items = []T{}
		}
		l.state.Items = items
		l.state.Err = nil
	}
	l.state.Version++
	l.publishLocked()
}

// set replaces the state outside of a subscription, e.g. after a one-shot fetch.
func (l *List[T]) set(items []T, err error) {
	l.mu.Lock()
	gen := l.generation
	l.mu.Unlock()
	l.apply(gen, items, err)
}

func (l *List[T]) publishLocked() {
	s := l.snapshotLocked()
	for _, ch := range l.watchers {
		offer(ch, s)
	}
}

// offer replaces whatever the watcher has not read yet with s.
func offer[T any](ch chan State[T], s State[T]) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

func (l *List[T]) snapshotLocked() State[T] {
	items := make([]T, len(l.state.Items))
	copy(items, l.state.Items)
	return State[T]{Items: items, Err: l.state.Err, Version: l.state.Version}
}

func (l *List[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *List[T]) Items() []T {
	return l.State().Items
}

// Active reports whether a subscription is open.
func (l *List[T]) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sub != nil
}

// Watch returns a channel that holds the latest unread state, beginning
// with the current one. Slow readers skip intermediate snapshots. The
// channel is closed by cancel or by Close.
func (l *List[T]) Watch() (<-chan State[T], func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan State[T], 1)
	id := l.nextWatcher
	l.nextWatcher++
	l.watchers[id] = ch
	ch <- l.snapshotLocked()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if c, ok := l.watchers[id]; ok {
				delete(l.watchers, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Close ends the subscription and every watcher. No snapshot is applied
// after Close returns; the list can be started again.
func (l *List[T]) Close() error {
	l.mu.Lock()
	sub := l.sub
	l.sub = nil
	l.generation++
	for id, ch := range l.watchers {
		delete(l.watchers, id)
		close(ch)
	}
	l.mu.Unlock()

	if sub == nil {
		return nil
	}
	return sub.Close()
}

// refreshIfIdle re-fetches with fetch when no subscription will deliver the
// result of a mutation.
func (l *List[T]) refreshIfIdle(ctx context.Context, fetch func(context.Context) ([]T, error)) {
	if l.Active() {
		return
	}
	items, err := fetch(ctx)
	if err != nil {
		l.log.Warnf("Failed to refresh %s: %+v", l.name, err)
	}
	l.set(items, err)
}
