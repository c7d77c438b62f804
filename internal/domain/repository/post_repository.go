package repository

import (
	"context"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/infrastructure/storage"
)

type PostRepository interface {
	Add(ctx context.Context, post *entity.Post, image *storage.Upload) error
	Update(ctx context.Context, post *entity.Post, image *storage.Upload) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.Post, error)
	List(ctx context.Context) ([]entity.Post, error)
	ListByTipo(ctx context.Context, tipo entity.PostTipo) ([]entity.Post, error)
	Observe(ctx context.Context, fn ListFunc[entity.Post]) (Subscription, error)
	ObserveByUser(ctx context.Context, userID string, fn ListFunc[entity.Post]) (Subscription, error)
	ObserveByTipo(ctx context.Context, tipo entity.PostTipo, fn ListFunc[entity.Post]) (Subscription, error)
}
