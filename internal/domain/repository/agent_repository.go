package repository

import (
	"context"

	"insurance-marketplace/internal/domain/entity"
)

type AgentRepository interface {
	Add(ctx context.Context, agent *entity.Agent) error
	Update(ctx context.Context, agent *entity.Agent) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.Agent, error)
	List(ctx context.Context) ([]entity.Agent, error)
	Observe(ctx context.Context, fn ListFunc[entity.Agent]) (Subscription, error)
}
