package docstore

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"insurance-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// documentRecord is the row layout of the documents table.
type documentRecord struct {
	Collection      string    `gorm:"type:varchar(512);primaryKey"`
	ID              string    `gorm:"type:varchar(128);primaryKey"`
	CollectionGroup string    `gorm:"type:varchar(128);not null;index"`
	Data            fields    `gorm:"type:jsonb;not null"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (documentRecord) TableName() string {
	return "documents"
}

// fields is a JSONB column holding a document body.
type fields map[string]interface{}

func (f fields) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

func (f *fields) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*f = fields{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB value %T", value)
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*f = out
	return nil
}

// PostgresStore keeps documents in a JSONB table and announces changes
// through a Notifier so watchers can re-read their result set.
type PostgresStore struct {
	db       *gorm.DB
	notifier Notifier
	log      *logrus.Logger
}

// NewPostgresStore creates a store on db. A nil notifier disables Watch.
func NewPostgresStore(db *gorm.DB, notifier Notifier, log *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, notifier: notifier, log: log}
}

func (s *PostgresStore) NewID(string) string {
	return uuid.NewString()
}

func (s *PostgresStore) Create(ctx context.Context, collection, id string, data map[string]interface{}) error {
	const op = "docstore.Create"
	rec := &documentRecord{
		Collection:      collection,
		ID:              id,
		CollectionGroup: lastSegment(collection),
		Data:            fields(data),
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		err = translatePostgres(op, err)
		if apperror.KindOf(err) == apperror.KindConflict {
			return errExists(op, collection, id)
		}
		return err
	}
	s.publish(ctx, collection)
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var rec documentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&rec).Error
	if err != nil {
		err = translatePostgres("docstore.Get", err)
		if apperror.IsNotFound(err) {
			return nil, errNotFound("docstore.Get", collection, id)
		}
		return nil, err
	}
	return rec.document(), nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	result := s.db.WithContext(ctx).
		Model(&documentRecord{}).
		Where("collection = ? AND id = ?", collection, id).
		Updates(map[string]interface{}{
			"data":       fields(data),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translatePostgres("docstore.Set", result.Error)
	}
	if result.RowsAffected == 0 {
		return errNotFound("docstore.Set", collection, id)
	}
	s.publish(ctx, collection)
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	result := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&documentRecord{})
	if result.Error != nil {
		return translatePostgres("docstore.Delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return errNotFound("docstore.Delete", collection, id)
	}
	s.publish(ctx, collection)
	return nil
}

func (s *PostgresStore) List(ctx context.Context, q Query) ([]Document, error) {
	query := s.db.WithContext(ctx).Model(&documentRecord{})
	if q.Group {
		query = query.Where("collection_group = ?", q.Collection)
	} else {
		query = query.Where("collection = ?", q.Collection)
	}
	for _, f := range q.Filters {
		query = query.Where("data ->> ? = ?", f.Field, fmt.Sprint(f.Value))
	}

	var records []documentRecord
	if err := query.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, translatePostgres("docstore.List", err)
	}

	docs := make([]Document, 0, len(records))
	for i := range records {
		docs = append(docs, *records[i].document())
	}
	sortDocuments(docs, q)
	return docs, nil
}

func (s *PostgresStore) Watch(ctx context.Context, q Query, fn SnapshotFunc) (Subscription, error) {
	const op = "docstore.Watch"
	if s.notifier == nil {
		return nil, apperror.New(apperror.KindUnavailable, op, "change notifications are not configured")
	}

	changes, err := s.notifier.Subscribe(ctx, q)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnavailable, op, err)
	}

	w := newLoopWatcher(ctx)
	go func() {
		defer close(w.done)
		defer changes.Close()

		deliver := func() bool {
			docs, err := s.List(w.ctx, q)
			if w.ctx.Err() != nil {
				return false
			}
			fn(docs, err)
			return err == nil
		}

		if !deliver() {
			return
		}
		for {
			select {
			case <-w.ctx.Done():
				return
			case _, ok := <-changes.C():
				if !ok {
					if w.ctx.Err() == nil {
						fn(nil, apperror.New(apperror.KindUnavailable, op, "change feed closed"))
					}
					return
				}
				if !deliver() {
					return
				}
			}
		}
	}()
	return w, nil
}

func (s *PostgresStore) Close() error {
	return nil
}

func (s *PostgresStore) publish(ctx context.Context, collection string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, collection); err != nil {
		s.log.WithField("collection", collection).Warnf("Failed to publish document change: %+v", err)
	}
}

func (r *documentRecord) document() *Document {
	return &Document{ID: r.ID, Collection: r.Collection, Data: map[string]interface{}(r.Data)}
}

// loopWatcher is a subscription served by a goroutine; Close cancels the
// goroutine and waits for it so no callback runs afterwards.
type loopWatcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newLoopWatcher(parent context.Context) *loopWatcher {
	ctx, cancel := context.WithCancel(parent)
	return &loopWatcher{ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

func (w *loopWatcher) Close() error {
	w.cancel()
	<-w.done
	return nil
}
