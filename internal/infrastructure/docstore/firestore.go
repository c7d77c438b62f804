package docstore

import (
	"context"
	"strings"

	"insurance-marketplace/pkg/apperror"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// FirestoreStore is the hosted document store with native snapshot listeners.
type FirestoreStore struct {
	client *firestore.Client
	log    *logrus.Logger
}

func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string, log *logrus.Logger) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, translateFirestore("docstore.NewFirestoreStore", err)
	}

	log.Info("Successfully connected to Firestore")

	return &FirestoreStore{client: client, log: log}, nil
}

func (s *FirestoreStore) NewID(collection string) string {
	return s.client.Collection(collection).NewDoc().ID
}

func (s *FirestoreStore) Create(ctx context.Context, collection, id string, data map[string]interface{}) error {
	const op = "docstore.Create"
	if _, err := s.client.Collection(collection).Doc(id).Create(ctx, data); err != nil {
		err = translateFirestore(op, err)
		if apperror.KindOf(err) == apperror.KindConflict {
			return errExists(op, collection, id)
		}
		return err
	}
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		err = translateFirestore("docstore.Get", err)
		if apperror.IsNotFound(err) {
			return nil, errNotFound("docstore.Get", collection, id)
		}
		return nil, err
	}
	return snapshotDocument(snap), nil
}

// Set overwrites inside a transaction so a missing document is reported
// instead of silently created.
func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	const op = "docstore.Set"
	ref := s.client.Collection(collection).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, data)
	})
	if err != nil {
		err = translateFirestore(op, err)
		if apperror.IsNotFound(err) {
			return errNotFound(op, collection, id)
		}
		return err
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	const op = "docstore.Delete"
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		err = translateFirestore(op, err)
		if apperror.IsNotFound(err) {
			return errNotFound(op, collection, id)
		}
		return err
	}
	return nil
}

func (s *FirestoreStore) List(ctx context.Context, q Query) ([]Document, error) {
	snaps, err := s.query(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, translateFirestore("docstore.List", err)
	}
	return snapshotDocuments(snaps), nil
}

func (s *FirestoreStore) Watch(ctx context.Context, q Query, fn SnapshotFunc) (Subscription, error) {
	const op = "docstore.Watch"
	w := newLoopWatcher(ctx)
	it := s.query(q).Snapshots(w.ctx)

	go func() {
		defer close(w.done)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if w.ctx.Err() != nil {
				return
			}
			if err != nil {
				fn(nil, translateFirestore(op, err))
				return
			}
			snaps, err := snap.Documents.GetAll()
			if err != nil {
				fn(nil, translateFirestore(op, err))
				return
			}
			fn(snapshotDocuments(snaps), nil)
		}
	}()
	return w, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) query(q Query) firestore.Query {
	var query firestore.Query
	if q.Group {
		query = s.client.CollectionGroup(q.Collection).Query
	} else {
		query = s.client.Collection(q.Collection).Query
	}
	for _, f := range q.Filters {
		query = query.Where(f.Field, "==", f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Descending {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	return query
}

func snapshotDocuments(snaps []*firestore.DocumentSnapshot) []Document {
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, *snapshotDocument(snap))
	}
	return docs
}

func snapshotDocument(snap *firestore.DocumentSnapshot) *Document {
	return &Document{
		ID:         snap.Ref.ID,
		Collection: relativeCollection(snap.Ref.Parent.Path),
		Data:       snap.Data(),
	}
}

// relativeCollection strips the "projects/<p>/databases/<d>/documents/"
// prefix Firestore puts on resource paths.
func relativeCollection(path string) string {
	const marker = "/documents/"
	if i := strings.Index(path, marker); i >= 0 {
		return path[i+len(marker):]
	}
	return path
}
