package repository

import (
	"context"

	"insurance-marketplace/internal/domain/entity"
)

type UserRepository interface {
	Add(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) ([]entity.User, error)
	FindByPhone(ctx context.Context, phone string) ([]entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Observe(ctx context.Context, fn ListFunc[entity.User]) (Subscription, error)
	ObserveRole(ctx context.Context, role entity.Role, fn ListFunc[entity.User]) (Subscription, error)
}
