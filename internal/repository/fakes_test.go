package repository

import (
	"context"
	"errors"
	"io"
	"sync"

	"insurance-marketplace/internal/infrastructure/storage"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	fail    bool
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: make(map[string][]byte)}
}

func (f *fakeObjectStorage) Upload(ctx context.Context, key string, u storage.Upload) (string, error) {
	if f.fail {
		return "", errors.New("bucket unreachable")
	}
	body, err := io.ReadAll(u.Body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
	return "https://cdn.test/" + key, nil
}

func (f *fakeObjectStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}
