package repository

import (
	"context"

	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/domain/entity"
	domainRepo "insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/internal/infrastructure/docstore"

	"github.com/sirupsen/logrus"
)

type agentRepository struct {
	store docstore.Store
	log   *logrus.Logger
}

func NewAgentRepository(store docstore.Store, log *logrus.Logger) domainRepo.AgentRepository {
	return &agentRepository{store: store, log: log}
}

func (r *agentRepository) Add(ctx context.Context, agent *entity.Agent) error {
	id, err := create(ctx, r.store, entity.AgentsCollection, converter.AgentToDocument(agent))
	if err != nil {
		r.log.Warnf("Failed to add agent: %+v", err)
		return err
	}
	agent.ID = id
	return nil
}

func (r *agentRepository) Update(ctx context.Context, agent *entity.Agent) error {
	if err := requireID("agents.Update", agent.ID); err != nil {
		return err
	}
	if err := r.store.Set(ctx, entity.AgentsCollection, agent.ID, converter.AgentToDocument(agent)); err != nil {
		r.log.Warnf("Failed to update agent: %+v", err)
		return err
	}
	return nil
}

func (r *agentRepository) Delete(ctx context.Context, id string) error {
	if err := requireID("agents.Delete", id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, entity.AgentsCollection, id); err != nil {
		r.log.Warnf("Failed to delete agent: %+v", err)
		return err
	}
	return nil
}

func (r *agentRepository) FindByID(ctx context.Context, id string) (*entity.Agent, error) {
	return get(ctx, r.store, entity.AgentsCollection, id, converter.DocumentToAgent)
}

func (r *agentRepository) List(ctx context.Context) ([]entity.Agent, error) {
	return list(ctx, r.store, docstore.Collection(entity.AgentsCollection).Ordered("name", false), converter.DocumentToAgent)
}

func (r *agentRepository) Observe(ctx context.Context, fn domainRepo.ListFunc[entity.Agent]) (domainRepo.Subscription, error) {
	q := docstore.Collection(entity.AgentsCollection).Ordered("name", false)
	return observe(ctx, r.store, r.log, "agent", q, converter.DocumentToAgent, fn)
}
