package repository

import (
	"context"

	"insurance-marketplace/internal/converter"
	domainRepo "insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/internal/infrastructure/docstore"
	"insurance-marketplace/pkg/apperror"

	"github.com/sirupsen/logrus"
)

// create reserves an id in collection and writes data under it.
func create(ctx context.Context, store docstore.Store, collection string, data map[string]interface{}) (string, error) {
	id := store.NewID(collection)
	if err := store.Create(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// get returns nil without error when the document does not exist.
func get[T any](ctx context.Context, store docstore.Store, collection, id string, decode func(docstore.Document) (*T, error)) (*T, error) {
	doc, err := store.Get(ctx, collection, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	v, err := decode(*doc)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "repository.get", err)
	}
	return v, nil
}

func list[T any](ctx context.Context, store docstore.Store, q docstore.Query, decode func(docstore.Document) (*T, error)) ([]T, error) {
	docs, err := store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	items, err := converter.DocumentsTo(docs, decode)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "repository.list", err)
	}
	return items, nil
}

// observe watches q and hands every snapshot to fn decoded as T.
func observe[T any](ctx context.Context, store docstore.Store, log *logrus.Logger, entityName string, q docstore.Query, decode func(docstore.Document) (*T, error), fn domainRepo.ListFunc[T]) (domainRepo.Subscription, error) {
	entry := log.WithFields(logrus.Fields{
		"entity": entityName,
		"query":  q.String(),
	})
	sub, err := store.Watch(ctx, q, func(docs []docstore.Document, err error) {
		if err != nil {
			entry.Warnf("Failed to observe %s: %+v", entityName, err)
			fn(nil, err)
			return
		}
		items, err := converter.DocumentsTo(docs, decode)
		if err != nil {
			entry.Warnf("Failed to decode %s snapshot: %+v", entityName, err)
			fn(nil, apperror.Wrap(apperror.KindInternal, "repository.observe", err))
			return
		}
		fn(items, nil)
	})
	if err != nil {
		entry.Warnf("Failed to subscribe to %s: %+v", entityName, err)
		return nil, err
	}
	return sub, nil
}

func requireID(op, id string) error {
	if id == "" {
		return apperror.New(apperror.KindValidation, op, "id is required")
	}
	return nil
}
