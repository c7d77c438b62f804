package repository

import (
	"context"

	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/domain/entity"
	domainRepo "insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/internal/infrastructure/docstore"

	"github.com/sirupsen/logrus"
)

type insurerRepository struct {
	store docstore.Store
	log   *logrus.Logger
}

func NewInsurerRepository(store docstore.Store, log *logrus.Logger) domainRepo.InsurerRepository {
	return &insurerRepository{store: store, log: log}
}

func (r *insurerRepository) Add(ctx context.Context, insurer *entity.Insurer) error {
	if insurer.Role == "" {
		insurer.Role = entity.RoleInsurer
	}
	// a preset id links the record to the insurer's own profile
	if insurer.ID != "" {
		if err := r.store.Create(ctx, entity.InsurersCollection, insurer.ID, converter.InsurerToDocument(insurer)); err != nil {
			r.log.Warnf("Failed to add insurer: %+v", err)
			return err
		}
		return nil
	}

	id, err := create(ctx, r.store, entity.InsurersCollection, converter.InsurerToDocument(insurer))
	if err != nil {
		r.log.Warnf("Failed to add insurer: %+v", err)
		return err
	}
	insurer.ID = id
	return nil
}

func (r *insurerRepository) Update(ctx context.Context, insurer *entity.Insurer) error {
	if err := requireID("insurers.Update", insurer.ID); err != nil {
		return err
	}
	if err := r.store.Set(ctx, entity.InsurersCollection, insurer.ID, converter.InsurerToDocument(insurer)); err != nil {
		r.log.Warnf("Failed to update insurer: %+v", err)
		return err
	}
	return nil
}

func (r *insurerRepository) Delete(ctx context.Context, id string) error {
	if err := requireID("insurers.Delete", id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, entity.InsurersCollection, id); err != nil {
		r.log.Warnf("Failed to delete insurer: %+v", err)
		return err
	}
	return nil
}

func (r *insurerRepository) FindByID(ctx context.Context, id string) (*entity.Insurer, error) {
	return get(ctx, r.store, entity.InsurersCollection, id, converter.DocumentToInsurer)
}

func (r *insurerRepository) FindByEmail(ctx context.Context, email string) ([]entity.Insurer, error) {
	q := docstore.Collection(entity.InsurersCollection).Where("email", email)
	return list(ctx, r.store, q, converter.DocumentToInsurer)
}

func (r *insurerRepository) FindByPhone(ctx context.Context, phone string) ([]entity.Insurer, error) {
	q := docstore.Collection(entity.InsurersCollection).Where("phone", phone)
	return list(ctx, r.store, q, converter.DocumentToInsurer)
}

func (r *insurerRepository) List(ctx context.Context) ([]entity.Insurer, error) {
	return list(ctx, r.store, docstore.Collection(entity.InsurersCollection), converter.DocumentToInsurer)
}

func (r *insurerRepository) Observe(ctx context.Context, fn domainRepo.ListFunc[entity.Insurer]) (domainRepo.Subscription, error) {
	return observe(ctx, r.store, r.log, "insurer", docstore.Collection(entity.InsurersCollection), converter.DocumentToInsurer, fn)
}
