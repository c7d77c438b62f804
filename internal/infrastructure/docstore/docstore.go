// Package docstore is the schemaless document database behind the
// repositories. Documents live in slash separated collection paths
// ("insuranceServices/auto/serviceData") and watchers receive the whole
// matching result set every time it changes.
package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Document is one stored record. Data holds only JSON compatible values.
type Document struct {
	ID         string
	Collection string
	Data       map[string]interface{}
}

// Filter is an equality condition on a top level field.
type Filter struct {
	Field string
	Value interface{}
}

// Query selects documents of one collection, or of every collection whose
// last path segment equals Collection when Group is set.
type Query struct {
	Collection string
	Group      bool
	Filters    []Filter
	OrderBy    string
	Descending bool
}

func (q Query) Where(field string, value interface{}) Query {
	filters := make([]Filter, 0, len(q.Filters)+1)
	filters = append(filters, q.Filters...)
	q.Filters = append(filters, Filter{Field: field, Value: value})
	return q
}

func (q Query) Ordered(field string, descending bool) Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

func (q Query) String() string {
	var b strings.Builder
	if q.Group {
		b.WriteString("group:")
	}
	b.WriteString(q.Collection)
	for _, f := range q.Filters {
		fmt.Fprintf(&b, " %s=%v", f.Field, f.Value)
	}
	if q.OrderBy != "" {
		fmt.Fprintf(&b, " order:%s", q.OrderBy)
	}
	return b.String()
}

// Collection returns a query over every document of collection.
func Collection(collection string) Query {
	return Query{Collection: collection}
}

// CollectionGroup returns a query over all collections named group.
func CollectionGroup(group string) Query {
	return Query{Collection: group, Group: true}
}

// SnapshotFunc receives the full result set of a watched query. A non-nil
// error ends the watch; no further snapshots follow it.
type SnapshotFunc func(docs []Document, err error)

// Subscription is a live watch. Close stops delivery: once it returns the
// callback is not invoked again. A callback must not close its own
// subscription.
type Subscription interface {
	Close() error
}

type Store interface {
	// NewID reserves an id for a document that will be created in collection.
	NewID(collection string) string
	// Create writes a new document; it fails with a conflict if id is taken.
	Create(ctx context.Context, collection, id string, data map[string]interface{}) error
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Set replaces the whole document; it fails with not-found if absent.
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	// Delete removes the document; it fails with not-found if absent.
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, q Query) ([]Document, error)
	// Watch delivers the current result set and then a new one after every change.
	Watch(ctx context.Context, q Query, fn SnapshotFunc) (Subscription, error)
	Close() error
}

func lastSegment(collection string) string {
	if i := strings.LastIndex(collection, "/"); i >= 0 {
		return collection[i+1:]
	}
	return collection
}

func (q Query) matchesCollection(collection string) bool {
	if q.Group {
		return lastSegment(collection) == q.Collection
	}
	return collection == q.Collection
}

func (q Query) matchesData(data map[string]interface{}) bool {
	for _, f := range q.Filters {
		v, ok := data[f.Field]
		if !ok || fmt.Sprint(v) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}

// sortDocuments orders docs by q.OrderBy keeping the incoming order for ties.
func sortDocuments(docs []Document, q Query) {
	if q.OrderBy == "" {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		c := compareValues(docs[i].Data[q.OrderBy], docs[j].Data[q.OrderBy])
		if q.Descending {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b interface{}) int {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func copyData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
