package viewmodel

import (
	"context"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

type AgentViewModel struct {
	*List[entity.Agent]
	repo repository.AgentRepository
}

func NewAgentViewModel(repo repository.AgentRepository, log *logrus.Logger) *AgentViewModel {
	return &AgentViewModel{List: NewList[entity.Agent]("agents", log), repo: repo}
}

func (vm *AgentViewModel) StartRealtimeUpdates(ctx context.Context) error {
	return vm.Start(ctx, vm.repo.Observe)
}

func (vm *AgentViewModel) Agents() []entity.Agent {
	return vm.Items()
}

func (vm *AgentViewModel) Add(ctx context.Context, agent *entity.Agent) error {
	if err := vm.repo.Add(ctx, agent); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}

func (vm *AgentViewModel) Update(ctx context.Context, agent *entity.Agent) error {
	if err := vm.repo.Update(ctx, agent); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}

func (vm *AgentViewModel) Delete(ctx context.Context, id string) error {
	if err := vm.repo.Delete(ctx, id); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}

func (vm *AgentViewModel) Find(ctx context.Context, id string) (*entity.Agent, error) {
	return vm.repo.FindByID(ctx, id)
}
