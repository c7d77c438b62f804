package repository

import (
	"context"

	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/domain/entity"
	domainRepo "insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/internal/infrastructure/docstore"
	"insurance-marketplace/internal/infrastructure/storage"
	"insurance-marketplace/pkg/apperror"

	"github.com/sirupsen/logrus"
)

type insuranceRepository struct {
	store   docstore.Store
	objects storage.ObjectStorage
	log     *logrus.Logger
}

func NewInsuranceRepository(store docstore.Store, objects storage.ObjectStorage, log *logrus.Logger) domainRepo.InsuranceRepository {
	return &insuranceRepository{store: store, objects: objects, log: log}
}

func (r *insuranceRepository) partition(op, insuranceType string) (string, error) {
	collection, err := entity.InsurancePartition(insuranceType)
	if err != nil {
		return "", apperror.Wrap(apperror.KindValidation, op, err)
	}
	return collection, nil
}

// upload stores the image under the insurance key. Failures are logged and
// reported as an empty URL.
func (r *insuranceRepository) upload(ctx context.Context, id string, image *storage.Upload) string {
	url, err := r.objects.Upload(ctx, entity.InsuranceImageKey(id), *image)
	if err != nil {
		r.log.WithField("insurance_id", id).Warnf("Failed to upload insurance image: %+v", err)
		return ""
	}
	return url
}

func (r *insuranceRepository) Add(ctx context.Context, insurance *entity.Insurance, image *storage.Upload) error {
	collection, err := r.partition("insurances.Add", insurance.Type)
	if err != nil {
		return err
	}

	id := r.store.NewID(collection)
	if image != nil {
		insurance.Image = r.upload(ctx, id, image)
	}

	if err := r.store.Create(ctx, collection, id, converter.InsuranceToDocument(insurance)); err != nil {
		r.log.Warnf("Failed to add insurance: %+v", err)
		return err
	}
	insurance.ID = id
	return nil
}

// Update overwrites the insurance. A new image replaces the object under the
// same key; if that upload fails the current image URL is kept.
func (r *insuranceRepository) Update(ctx context.Context, insurance *entity.Insurance, image *storage.Upload) error {
	const op = "insurances.Update"
	if err := requireID(op, insurance.ID); err != nil {
		return err
	}
	collection, err := r.partition(op, insurance.Type)
	if err != nil {
		return err
	}

	if image != nil {
		if url := r.upload(ctx, insurance.ID, image); url != "" {
			insurance.Image = url
		}
	}

	if err := r.store.Set(ctx, collection, insurance.ID, converter.InsuranceToDocument(insurance)); err != nil {
		r.log.Warnf("Failed to update insurance: %+v", err)
		return err
	}
	return nil
}

func (r *insuranceRepository) Delete(ctx context.Context, insurance *entity.Insurance) error {
	const op = "insurances.Delete"
	if err := requireID(op, insurance.ID); err != nil {
		return err
	}
	collection, err := r.partition(op, insurance.Type)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, collection, insurance.ID); err != nil {
		r.log.Warnf("Failed to delete insurance: %+v", err)
		return err
	}

	if insurance.Image != "" {
		if err := r.objects.Delete(ctx, entity.InsuranceImageKey(insurance.ID)); err != nil {
			r.log.WithField("insurance_id", insurance.ID).Warnf("Failed to delete insurance image: %+v", err)
		}
	}
	return nil
}

func (r *insuranceRepository) FindByID(ctx context.Context, insuranceType, id string) (*entity.Insurance, error) {
	collection, err := r.partition("insurances.FindByID", insuranceType)
	if err != nil {
		return nil, err
	}
	return get(ctx, r.store, collection, id, converter.DocumentToInsurance)
}

func (r *insuranceRepository) List(ctx context.Context) ([]entity.Insurance, error) {
	return list(ctx, r.store, docstore.CollectionGroup(entity.InsuranceServiceGroup), converter.DocumentToInsurance)
}

func (r *insuranceRepository) ListByType(ctx context.Context, insuranceType string) ([]entity.Insurance, error) {
	collection, err := r.partition("insurances.ListByType", insuranceType)
	if err != nil {
		return nil, err
	}
	return list(ctx, r.store, docstore.Collection(collection), converter.DocumentToInsurance)
}

func (r *insuranceRepository) ObserveAll(ctx context.Context, fn domainRepo.ListFunc[entity.Insurance]) (domainRepo.Subscription, error) {
	q := docstore.CollectionGroup(entity.InsuranceServiceGroup)
	return observe(ctx, r.store, r.log, "insurance", q, converter.DocumentToInsurance, fn)
}

func (r *insuranceRepository) ObserveByType(ctx context.Context, insuranceType string, fn domainRepo.ListFunc[entity.Insurance]) (domainRepo.Subscription, error) {
	collection, err := r.partition("insurances.ObserveByType", insuranceType)
	if err != nil {
		return nil, err
	}
	return observe(ctx, r.store, r.log, "insurance", docstore.Collection(collection), converter.DocumentToInsurance, fn)
}

func (r *insuranceRepository) ObserveActive(ctx context.Context, fn domainRepo.ListFunc[entity.Insurance]) (domainRepo.Subscription, error) {
	q := docstore.CollectionGroup(entity.InsuranceServiceGroup).Where("active", true)
	return observe(ctx, r.store, r.log, "insurance", q, converter.DocumentToInsurance, fn)
}
