package repository

import (
	"context"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/infrastructure/storage"
)

type InsuranceRepository interface {
	// Add stores the insurance; a non-nil image is uploaded first and its URL
	// embedded. A failed upload leaves Image empty and does not abort the write.
	Add(ctx context.Context, insurance *entity.Insurance, image *storage.Upload) error
	Update(ctx context.Context, insurance *entity.Insurance, image *storage.Upload) error
	Delete(ctx context.Context, insurance *entity.Insurance) error
	FindByID(ctx context.Context, insuranceType, id string) (*entity.Insurance, error)
	List(ctx context.Context) ([]entity.Insurance, error)
	ListByType(ctx context.Context, insuranceType string) ([]entity.Insurance, error)
	ObserveAll(ctx context.Context, fn ListFunc[entity.Insurance]) (Subscription, error)
	ObserveByType(ctx context.Context, insuranceType string, fn ListFunc[entity.Insurance]) (Subscription, error)
	ObserveActive(ctx context.Context, fn ListFunc[entity.Insurance]) (Subscription, error)
}
