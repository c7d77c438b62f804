package usecase

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/infrastructure/cache"
	"insurance-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]entity.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]entity.Account)}
}

func (f *fakeAccountRepo) emailTaken(email string, except uuid.UUID) bool {
	for id, a := range f.accounts {
		if id != except && strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

func (f *fakeAccountRepo) Create(ctx context.Context, db *gorm.DB, account *entity.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailTaken(account.Email, uuid.Nil) {
		return apperror.New(apperror.KindConflict, "accounts.Create", "duplicate email")
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeAccountRepo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if strings.EqualFold(a.Email, email) {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, db *gorm.DB, account *entity.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailTaken(account.Email, account.ID) {
		return apperror.New(apperror.KindConflict, "accounts.Update", "duplicate email")
	}
	f.accounts[account.ID] = *account
	return nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{values: make(map[string]string)}
}

func (f *fakeTokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *fakeTokenStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (f *fakeTokenStore) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values[key]
	return ok, nil
}

func (f *fakeTokenStore) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeTokenStore) DeleteMatching(ctx context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.values {
		if ok, _ := path.Match(pattern, k); ok {
			delete(f.values, k)
		}
	}
	return nil
}

// keyWithPrefix returns the first stored key starting with prefix.
func (f *fakeTokenStore) keyWithPrefix(prefix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.values {
		if strings.HasPrefix(k, prefix) {
			return k
		}
	}
	return ""
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []Mail
}

func (f *fakeMailer) Send(ctx context.Context, mail Mail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, mail)
	return nil
}

func (f *fakeMailer) last() Mail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeAudit) Record(ctx context.Context, accountID *uuid.UUID, action string, metadata entity.JSON) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}
