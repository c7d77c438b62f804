package docstore

import (
	"context"
	"sync"
	"testing"

	"insurance-marketplace/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshotRecorder struct {
	mu    sync.Mutex
	calls [][]Document
}

func (r *snapshotRecorder) record(docs []Document, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, docs)
}

func (r *snapshotRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *snapshotRecorder) last() []Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id := s.NewID("agents")
	require.NoError(t, s.Create(ctx, "agents", id, map[string]interface{}{"name": "Ana", "phone": "5512345678"}))

	err := s.Create(ctx, "agents", id, map[string]interface{}{"name": "dup"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	doc, err := s.Get(ctx, "agents", id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", doc.Data["name"])

	require.NoError(t, s.Set(ctx, "agents", id, map[string]interface{}{"name": "Ana Maria"}))
	doc, err = s.Get(ctx, "agents", id)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", doc.Data["name"])
	_, hasPhone := doc.Data["phone"]
	assert.False(t, hasPhone, "set must replace the whole document")

	require.NoError(t, s.Delete(ctx, "agents", id))
	assert.True(t, apperror.IsNotFound(s.Delete(ctx, "agents", id)))
	assert.True(t, apperror.IsNotFound(s.Set(ctx, "agents", id, map[string]interface{}{})))

	_, err = s.Get(ctx, "agents", id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMemoryStore_ListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Create(ctx, "posts", "a", map[string]interface{}{"tipo": "Autos", "date": "2024-03-01"}))
	require.NoError(t, s.Create(ctx, "posts", "b", map[string]interface{}{"tipo": "Personal", "date": "2024-01-01"}))
	require.NoError(t, s.Create(ctx, "posts", "c", map[string]interface{}{"tipo": "Autos", "date": "2024-02-01"}))

	docs, err := s.List(ctx, Collection("posts").Where("tipo", "Autos"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "c", docs[1].ID)

	docs, err = s.List(ctx, Collection("posts").Ordered("date", true))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"a", "c", "b"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})
}

func TestMemoryStore_CollectionGroup(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Create(ctx, "insuranceServices/auto/serviceData", "1", map[string]interface{}{"active": true}))
	require.NoError(t, s.Create(ctx, "insuranceServices/life/serviceData", "2", map[string]interface{}{"active": false}))
	require.NoError(t, s.Create(ctx, "agents", "3", map[string]interface{}{}))

	docs, err := s.List(ctx, CollectionGroup("serviceData"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "insuranceServices/auto/serviceData", docs[0].Collection)

	docs, err = s.List(ctx, CollectionGroup("serviceData").Where("active", true))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "1", docs[0].ID)
}

func TestMemoryStore_WatchDeliversFullSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := &snapshotRecorder{}

	sub, err := s.Watch(ctx, Collection("agents"), rec.record)
	require.NoError(t, err)
	require.Equal(t, 1, rec.count(), "initial snapshot")
	assert.Empty(t, rec.last())

	require.NoError(t, s.Create(ctx, "agents", "1", map[string]interface{}{"name": "A"}))
	require.NoError(t, s.Create(ctx, "agents", "2", map[string]interface{}{"name": "B"}))
	require.NoError(t, s.Create(ctx, "insurers", "x", map[string]interface{}{}))

	require.Equal(t, 3, rec.count())
	assert.Len(t, rec.last(), 2)

	require.NoError(t, sub.Close())
	assert.Equal(t, 0, s.ActiveWatchers())

	require.NoError(t, s.Delete(ctx, "agents", "1"))
	assert.Equal(t, 3, rec.count(), "no callbacks after close")
	assert.NoError(t, sub.Close())
}

func TestMemoryStore_WatchStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewMemoryStore()
	rec := &snapshotRecorder{}

	sub, err := s.Watch(ctx, Collection("agents"), rec.record)
	require.NoError(t, err)
	cancel()

	w := sub.(*memoryWatcher)
	<-w.done
	require.Eventually(t, func() bool { return s.ActiveWatchers() == 0 }, timeoutShort, tick)

	require.NoError(t, s.Create(context.Background(), "agents", "1", map[string]interface{}{}))
	assert.Equal(t, 1, rec.count())
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := &snapshotRecorder{}
	_, err := s.Watch(ctx, Collection("agents"), rec.record)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.ActiveWatchers())
	assert.Equal(t, apperror.KindUnavailable, apperror.KindOf(s.Create(ctx, "agents", "1", nil)))
}
