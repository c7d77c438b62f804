package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process. Watchers are notified
// synchronously by the goroutine that performed the write.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]memoryDoc
	seq         int64
	watchers    map[int64]*memoryWatcher
	nextWatcher int64
	closed      bool
}

type memoryDoc struct {
	data map[string]interface{}
	seq  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]memoryDoc),
		watchers:    make(map[int64]*memoryWatcher),
	}
}

func (s *MemoryStore) NewID(string) string {
	return uuid.NewString()
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, data map[string]interface{}) error {
	const op = "docstore.Create"
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errStoreClosed
	}
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]memoryDoc)
		s.collections[collection] = docs
	}
	if _, exists := docs[id]; exists {
		s.mu.Unlock()
		return errExists(op, collection, id)
	}
	s.seq++
	docs[id] = memoryDoc{data: copyData(data), seq: s.seq}
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errStoreClosed
	}
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, errNotFound("docstore.Get", collection, id)
	}
	return &Document{ID: id, Collection: collection, Data: copyData(doc.data)}, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errStoreClosed
	}
	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return errNotFound("docstore.Set", collection, id)
	}
	s.collections[collection][id] = memoryDoc{data: copyData(data), seq: doc.seq}
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errStoreClosed
	}
	if _, ok := s.collections[collection][id]; !ok {
		s.mu.Unlock()
		return errNotFound("docstore.Delete", collection, id)
	}
	delete(s.collections[collection], id)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, q Query) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errStoreClosed
	}
	return s.listLocked(q), nil
}

func (s *MemoryStore) listLocked(q Query) []Document {
	type seqDoc struct {
		doc Document
		seq int64
	}
	var found []seqDoc
	for collection, docs := range s.collections {
		if !q.matchesCollection(collection) {
			continue
		}
		for id, d := range docs {
			if !q.matchesData(d.data) {
				continue
			}
			found = append(found, seqDoc{
				doc: Document{ID: id, Collection: collection, Data: copyData(d.data)},
				seq: d.seq,
			})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })

	out := make([]Document, 0, len(found))
	for _, f := range found {
		out = append(out, f.doc)
	}
	sortDocuments(out, q)
	return out
}

func (s *MemoryStore) Watch(ctx context.Context, q Query, fn SnapshotFunc) (Subscription, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errStoreClosed
	}
	s.nextWatcher++
	w := &memoryWatcher{
		id:    s.nextWatcher,
		store: s,
		query: q,
		fn:    fn,
		done:  make(chan struct{}),
	}
	s.watchers[w.id] = w
	initial := s.listLocked(q)
	s.mu.Unlock()

	w.deliver(initial)

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				w.Close()
			case <-w.done:
			}
		}()
	}
	return w, nil
}

// ActiveWatchers reports the number of open subscriptions.
func (s *MemoryStore) ActiveWatchers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchers)
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	watchers := make([]*memoryWatcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.mu.Unlock()

	for _, w := range watchers {
		w.Close()
	}
	return nil
}

func (s *MemoryStore) notify(collection string) {
	s.mu.RLock()
	var snapshots []func()
	for _, w := range s.watchers {
		if !w.query.matchesCollection(collection) {
			continue
		}
		w := w
		docs := s.listLocked(w.query)
		snapshots = append(snapshots, func() { w.deliver(docs) })
	}
	s.mu.RUnlock()

	for _, deliver := range snapshots {
		deliver()
	}
}

func (s *MemoryStore) removeWatcher(id int64) {
	s.mu.Lock()
	delete(s.watchers, id)
	s.mu.Unlock()
}

type memoryWatcher struct {
	id    int64
	store *MemoryStore
	query Query
	fn    SnapshotFunc

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func (w *memoryWatcher) deliver(docs []Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.fn(docs, nil)
}

func (w *memoryWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	w.store.removeWatcher(w.id)
	return nil
}
