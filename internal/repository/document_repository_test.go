package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/infrastructure/docstore"
	"insurance-marketplace/internal/infrastructure/storage"
	"insurance-marketplace/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentRepository_AddAssignsBackendID(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewAgentRepository(store, quietLogger())

	agent := &entity.Agent{Name: "Ana", Email: "ana@x.co", Phone: "5512345678", Company: "Seguros", LicenseNumber: "L-1"}
	require.NoError(t, repo.Add(ctx, agent))
	require.NotEmpty(t, agent.ID)

	got, err := repo.FindByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, agent, got)
}

func TestAgentRepository_UpdateOverwrites(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewAgentRepository(store, quietLogger())

	agent := &entity.Agent{Name: "Ana", Email: "ana@x.co", Phone: "5512345678", Company: "Seguros", LicenseNumber: "L-1"}
	require.NoError(t, repo.Add(ctx, agent))

	require.NoError(t, repo.Update(ctx, &entity.Agent{ID: agent.ID, Name: "Ana M."}))

	got, err := repo.FindByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana M.", got.Name)
	assert.Empty(t, got.Company, "omitted fields are not preserved")
	assert.Empty(t, got.Email)

	err = repo.Update(ctx, &entity.Agent{Name: "no id"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	err = repo.Update(ctx, &entity.Agent{ID: "missing", Name: "x"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestAgentRepository_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	repo := NewAgentRepository(docstore.NewMemoryStore(), quietLogger())

	agent := &entity.Agent{Name: "Ana"}
	require.NoError(t, repo.Add(ctx, agent))
	require.NoError(t, repo.Delete(ctx, agent.ID))

	got, err := repo.FindByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	err = repo.Delete(ctx, agent.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestInsurerRepository_AddWithProfileID(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewInsurerRepository(store, quietLogger())

	insurer := &entity.Insurer{ID: "profile-1", FirstName: "Luis", Email: "ins@x.co"}
	require.NoError(t, repo.Add(ctx, insurer))
	assert.Equal(t, "profile-1", insurer.ID)
	assert.Equal(t, entity.RoleInsurer, insurer.Role)

	got, err := repo.FindByID(ctx, "profile-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ins@x.co", got.Email)

	err = repo.Add(ctx, &entity.Insurer{ID: "profile-1", FirstName: "Otro"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestUserRepository_Partitions(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewUserRepository(store, quietLogger())

	admin := &entity.User{FirstName: "Root", Email: "root@x.co", Role: entity.RoleAdmin}
	client := &entity.User{FirstName: "Cli", Email: "cli@x.co", Phone: "5511111111", Role: entity.RoleClient}
	require.NoError(t, repo.Add(ctx, admin))
	require.NoError(t, repo.Add(ctx, client))

	_, err := store.Get(ctx, entity.UsersStaffCollection, admin.ID)
	require.NoError(t, err)
	_, err = store.Get(ctx, entity.UsersMembersCollection, client.ID)
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, client, got)

	byEmail, err := repo.FindByEmail(ctx, "root@x.co")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, admin.ID, byEmail[0].ID)

	byPhone, err := repo.FindByPhone(ctx, "5511111111")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = repo.Add(ctx, &entity.User{FirstName: "x", Role: "superuser"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUserRepository_RoleChangeIsNotMigrated(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(docstore.NewMemoryStore(), quietLogger())

	user := &entity.User{FirstName: "Cli", Role: entity.RoleClient}
	require.NoError(t, repo.Add(ctx, user))

	// insurer shares the members partition
	user.Role = entity.RoleInsurer
	require.NoError(t, repo.Update(ctx, user))

	user.Role = entity.RoleEditor
	assert.True(t, apperror.IsNotFound(repo.Update(ctx, user)))
	assert.True(t, apperror.IsNotFound(repo.Delete(ctx, user)))
}

func TestInsuranceRepository_AddUploadsImage(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	objects := newFakeObjectStorage()
	repo := NewInsuranceRepository(store, objects, quietLogger())

	ins := &entity.Insurance{Name: "Auto", Type: "auto", Price: decimal.RequireFromString("99.90"), Active: true}
	require.NoError(t, repo.Add(ctx, ins, &storage.Upload{Body: strings.NewReader("png"), ContentType: "image/png"}))

	assert.Equal(t, "https://cdn.test/insurance_images/"+ins.ID, ins.Image)
	assert.Equal(t, []byte("png"), objects.objects[entity.InsuranceImageKey(ins.ID)])

	got, err := repo.FindByID(ctx, "auto", ins.ID)
	require.NoError(t, err)
	assert.Equal(t, ins.Image, got.Image)
	assert.True(t, ins.Price.Equal(got.Price))
}

func TestInsuranceRepository_UploadFailureStillWrites(t *testing.T) {
	ctx := context.Background()
	objects := newFakeObjectStorage()
	objects.fail = true
	repo := NewInsuranceRepository(docstore.NewMemoryStore(), objects, quietLogger())

	ins := &entity.Insurance{Name: "Vida", Type: "life", Price: decimal.NewFromInt(10)}
	require.NoError(t, repo.Add(ctx, ins, &storage.Upload{Body: strings.NewReader("png")}))
	assert.Empty(t, ins.Image)

	got, err := repo.FindByID(ctx, "life", ins.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Image)
}

func TestInsuranceRepository_ObserveAcrossTypes(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewInsuranceRepository(store, newFakeObjectStorage(), quietLogger())

	var (
		mu   sync.Mutex
		all  [][]entity.Insurance
		live [][]entity.Insurance
	)
	subAll, err := repo.ObserveAll(ctx, func(items []entity.Insurance, err error) {
		mu.Lock()
		defer mu.Unlock()
		all = append(all, items)
	})
	require.NoError(t, err)
	defer subAll.Close()
	subActive, err := repo.ObserveActive(ctx, func(items []entity.Insurance, err error) {
		mu.Lock()
		defer mu.Unlock()
		live = append(live, items)
	})
	require.NoError(t, err)
	defer subActive.Close()

	require.NoError(t, repo.Add(ctx, &entity.Insurance{Name: "A", Type: "auto", Active: true}, nil))
	require.NoError(t, repo.Add(ctx, &entity.Insurance{Name: "H", Type: "home", Active: false}, nil))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, all, 3, "initial snapshot plus one per write")
	assert.Empty(t, all[0])
	assert.Len(t, all[2], 2)
	assert.Len(t, live[len(live)-1], 1)
	assert.Equal(t, "A", live[len(live)-1][0].Name)
}

func TestInsuranceRepository_DeleteRemovesImage(t *testing.T) {
	ctx := context.Background()
	objects := newFakeObjectStorage()
	repo := NewInsuranceRepository(docstore.NewMemoryStore(), objects, quietLogger())

	ins := &entity.Insurance{Name: "A", Type: "auto"}
	require.NoError(t, repo.Add(ctx, ins, &storage.Upload{Body: strings.NewReader("img")}))
	require.NoError(t, repo.Delete(ctx, ins))
	assert.Equal(t, []string{entity.InsuranceImageKey(ins.ID)}, objects.deleted)
	assert.True(t, apperror.IsNotFound(repo.Delete(ctx, ins)))
}

func TestPostRepository_FilteredSubscriptions(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(docstore.NewMemoryStore(), newFakeObjectStorage(), quietLogger())

	var mu sync.Mutex
	var byTipo, byUser []entity.Post
	s1, err := repo.ObserveByTipo(ctx, entity.PostTipoAutos, func(items []entity.Post, err error) {
		mu.Lock()
		defer mu.Unlock()
		byTipo = items
	})
	require.NoError(t, err)
	defer s1.Close()
	s2, err := repo.ObserveByUser(ctx, "u1", func(items []entity.Post, err error) {
		mu.Lock()
		defer mu.Unlock()
		byUser = items
	})
	require.NoError(t, err)
	defer s2.Close()

	require.NoError(t, repo.Add(ctx, &entity.Post{Titulo: "old", UserID: "u1", Tipo: entity.PostTipoAutos, Date: "2024-01-01"}, nil))
	require.NoError(t, repo.Add(ctx, &entity.Post{Titulo: "new", UserID: "u1", Tipo: entity.PostTipoPersonal, Date: "2024-02-01"}, nil))
	require.NoError(t, repo.Add(ctx, &entity.Post{Titulo: "other", UserID: "u2", Tipo: entity.PostTipoAutos, Date: "2024-03-01"}, nil))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, byTipo, 2)
	assert.Equal(t, "other", byTipo[0].Titulo, "newest first")
	require.Len(t, byUser, 2)
	assert.Equal(t, "new", byUser[0].Titulo)
}

func TestPostRepository_ImageKey(t *testing.T) {
	ctx := context.Background()
	objects := newFakeObjectStorage()
	repo := NewPostRepository(docstore.NewMemoryStore(), objects, quietLogger())

	post := &entity.Post{Titulo: "t", UserID: "u1", Tipo: entity.PostTipoEmpresarial}
	require.NoError(t, repo.Add(ctx, post, &storage.Upload{Body: strings.NewReader("jpg")}))
	assert.True(t, strings.HasPrefix(post.Image, "https://cdn.test/posts_images/"))
	assert.Len(t, objects.objects, 1)
}

func TestMessageRepository_Conversation(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewMessageRepository(store, quietLogger()).(*messageRepository)
	ticks := int64(1000)
	repo.now = func() time.Time {
		ticks++
		return time.UnixMilli(ticks)
	}

	require.NoError(t, repo.Send(ctx, &entity.Message{Text: "late", UserID: "u1", Timestamp: 5000}))
	require.NoError(t, repo.Send(ctx, &entity.Message{Text: "first", UserID: "u1", IsSentByUser: true}))
	require.NoError(t, repo.Send(ctx, &entity.Message{Text: "elsewhere", UserID: "u2"}))

	msgs, err := repo.ListConversation(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, int64(1001), msgs[0].Timestamp)
	assert.Equal(t, "late", msgs[1].Text)

	err = repo.Send(ctx, &entity.Message{Text: "orphan"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestObserve_CloseStopsCallbacks(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewAgentRepository(store, quietLogger())

	var mu sync.Mutex
	calls := 0
	sub, err := repo.Observe(ctx, func(items []entity.Agent, err error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.ActiveWatchers())

	require.NoError(t, sub.Close())
	assert.Equal(t, 0, store.ActiveWatchers())
	require.NoError(t, repo.Add(ctx, &entity.Agent{Name: "late"}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "only the initial snapshot")
}
