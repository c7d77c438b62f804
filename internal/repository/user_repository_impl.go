package repository

import (
	"context"

	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/domain/entity"
	domainRepo "insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/internal/infrastructure/docstore"
	"insurance-marketplace/pkg/apperror"

	"github.com/sirupsen/logrus"
)

type userRepository struct {
	store docstore.Store
	log   *logrus.Logger
}

func NewUserRepository(store docstore.Store, log *logrus.Logger) domainRepo.UserRepository {
	return &userRepository{store: store, log: log}
}

func (r *userRepository) partition(op string, role entity.Role) (string, error) {
	collection, err := entity.PartitionFor(role)
	if err != nil {
		return "", apperror.Wrap(apperror.KindValidation, op, err)
	}
	return collection, nil
}

func (r *userRepository) Add(ctx context.Context, user *entity.User) error {
	collection, err := r.partition("users.Add", user.Role)
	if err != nil {
		return err
	}
	id, err := create(ctx, r.store, collection, converter.UserToDocument(user))
	if err != nil {
		r.log.Warnf("Failed to add user: %+v", err)
		return err
	}
	user.ID = id
	return nil
}

// Update overwrites the profile in the partition of its current role. A
// profile whose role changed since creation is reported as not found.
func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	const op = "users.Update"
	if err := requireID(op, user.ID); err != nil {
		return err
	}
	collection, err := r.partition(op, user.Role)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, collection, user.ID, converter.UserToDocument(user)); err != nil {
		r.log.Warnf("Failed to update user: %+v", err)
		return err
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, user *entity.User) error {
	const op = "users.Delete"
	if err := requireID(op, user.ID); err != nil {
		return err
	}
	collection, err := r.partition(op, user.Role)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, collection, user.ID); err != nil {
		r.log.Warnf("Failed to delete user: %+v", err)
		return err
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	for _, collection := range entity.UserPartitions {
		user, err := get(ctx, r.store, collection, id, converter.DocumentToUser)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) ([]entity.User, error) {
	q := docstore.CollectionGroup(entity.UsersGroup).Where("email", email)
	return list(ctx, r.store, q, converter.DocumentToUser)
}

func (r *userRepository) FindByPhone(ctx context.Context, phone string) ([]entity.User, error) {
	q := docstore.CollectionGroup(entity.UsersGroup).Where("phone", phone)
	return list(ctx, r.store, q, converter.DocumentToUser)
}

func (r *userRepository) List(ctx context.Context) ([]entity.User, error) {
	return list(ctx, r.store, docstore.CollectionGroup(entity.UsersGroup), converter.DocumentToUser)
}

func (r *userRepository) Observe(ctx context.Context, fn domainRepo.ListFunc[entity.User]) (domainRepo.Subscription, error) {
	return observe(ctx, r.store, r.log, "user", docstore.CollectionGroup(entity.UsersGroup), converter.DocumentToUser, fn)
}

func (r *userRepository) ObserveRole(ctx context.Context, role entity.Role, fn domainRepo.ListFunc[entity.User]) (domainRepo.Subscription, error) {
	collection, err := r.partition("users.ObserveRole", role)
	if err != nil {
		return nil, err
	}
	q := docstore.Collection(collection).Where("role", string(role))
	return observe(ctx, r.store, r.log, "user", q, converter.DocumentToUser, fn)
}
