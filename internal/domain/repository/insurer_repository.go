package repository

import (
	"context"

	"insurance-marketplace/internal/domain/entity"
)

type InsurerRepository interface {
	Add(ctx context.Context, insurer *entity.Insurer) error
	Update(ctx context.Context, insurer *entity.Insurer) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.Insurer, error)
	FindByEmail(ctx context.Context, email string) ([]entity.Insurer, error)
	FindByPhone(ctx context.Context, phone string) ([]entity.Insurer, error)
	List(ctx context.Context) ([]entity.Insurer, error)
	Observe(ctx context.Context, fn ListFunc[entity.Insurer]) (Subscription, error)
}
