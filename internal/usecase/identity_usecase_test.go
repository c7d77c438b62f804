package usecase

import (
	"context"
	"testing"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/infrastructure/docstore"
	"insurance-marketplace/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*docstore.MemoryStore
	lists int
}

func (s *countingStore) List(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	s.lists++
	return s.MemoryStore.List(ctx, q)
}

func newIdentityFixture(t *testing.T) (IdentityUsecase, *countingStore, []*entity.User) {
	t.Helper()
	store := &countingStore{MemoryStore: docstore.NewMemoryStore()}
	log := quietLogger()
	users := repository.NewUserRepository(store, log)
	insurers := repository.NewInsurerRepository(store, log)

	ana := &entity.User{FirstName: "Ana", Email: "ana@x.co", Phone: "5511111111", Role: entity.RoleClient}
	beto := &entity.User{FirstName: "Beto", Email: "beto@x.co", Phone: "5522222222", Role: entity.RoleEditor}
	ctx := context.Background()
	require.NoError(t, users.Add(ctx, ana))
	require.NoError(t, users.Add(ctx, beto))
	require.NoError(t, insurers.Add(ctx, &entity.Insurer{CompanyName: "Acme", Email: "acme@x.co", Phone: "5533333333"}))

	store.lists = 0
	return NewIdentityUsecase(log, users, insurers), store, []*entity.User{ana, beto}
}

func TestIsEmailUnique(t *testing.T) {
	ctx := context.Background()
	identity, _, users := newIdentityFixture(t)
	ana, beto := users[0], users[1]

	unique, err := identity.IsEmailUnique(ctx, "nobody@x.co", "")
	require.NoError(t, err)
	assert.True(t, unique)

	unique, err = identity.IsEmailUnique(ctx, beto.Email, ana.ID)
	require.NoError(t, err)
	assert.False(t, unique, "another user's email")

	unique, err = identity.IsEmailUnique(ctx, ana.Email, ana.ID)
	require.NoError(t, err)
	assert.True(t, unique, "own unchanged email")

	unique, err = identity.IsEmailUnique(ctx, "ACME@x.co", "")
	require.NoError(t, err)
	assert.False(t, unique, "insurer emails count too")
}

func TestIsPhoneUnique(t *testing.T) {
	ctx := context.Background()
	identity, store, users := newIdentityFixture(t)

	for _, bad := range []string{"", "123", "55111111111", "55 1111111", "phone12345"} {
		_, err := identity.IsPhoneUnique(ctx, bad, "")
		assert.ErrorIs(t, err, ErrInvalidPhone, bad)
	}
	assert.Zero(t, store.lists, "no lookup for malformed phones")

	unique, err := identity.IsPhoneUnique(ctx, "5599999999", "")
	require.NoError(t, err)
	assert.True(t, unique)

	unique, err = identity.IsPhoneUnique(ctx, "5511111111", users[1].ID)
	require.NoError(t, err)
	assert.False(t, unique)

	unique, err = identity.IsPhoneUnique(ctx, "5511111111", users[0].ID)
	require.NoError(t, err)
	assert.True(t, unique)

	unique, err = identity.IsPhoneUnique(ctx, "5533333333", "")
	require.NoError(t, err)
	assert.False(t, unique)
}
