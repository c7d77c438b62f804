package viewmodel

import (
	"context"
	"sync"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// InsurerViewModel exposes the insurer directory plus one selected profile.
type InsurerViewModel struct {
	*List[entity.Insurer]
	repo repository.InsurerRepository

	mu      sync.RWMutex
	profile *entity.Insurer
}

func NewInsurerViewModel(repo repository.InsurerRepository, log *logrus.Logger) *InsurerViewModel {
	return &InsurerViewModel{List: NewList[entity.Insurer]("insurers", log), repo: repo}
}

func (vm *InsurerViewModel) StartRealtimeUpdates(ctx context.Context) error {
	return vm.Start(ctx, vm.repo.Observe)
}

func (vm *InsurerViewModel) Insurers() []entity.Insurer {
	return vm.Items()
}

// LoadProfile fetches one insurer into Profile. A missing insurer clears it.
func (vm *InsurerViewModel) LoadProfile(ctx context.Context, id string) (*entity.Insurer, error) {
	insurer, err := vm.repo.FindByID(ctx, id)
	if err != nil {
		vm.log.Warnf("Failed to load insurer profile: %+v", err)
		return nil, err
	}
	vm.mu.Lock()
	vm.profile = insurer
	vm.mu.Unlock()
	return insurer, nil
}

func (vm *InsurerViewModel) Profile() *entity.Insurer {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.profile == nil {
		return nil
	}
	p := *vm.profile
	return &p
}

func (vm *InsurerViewModel) Find(ctx context.Context, id string) (*entity.Insurer, error) {
	return vm.repo.FindByID(ctx, id)
}

func (vm *InsurerViewModel) Add(ctx context.Context, insurer *entity.Insurer) error {
	if err := vm.repo.Add(ctx, insurer); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}

// Update also refreshes Profile when it shows the updated insurer.
func (vm *InsurerViewModel) Update(ctx context.Context, insurer *entity.Insurer) error {
	if err := vm.repo.Update(ctx, insurer); err != nil {
		return err
	}
	vm.mu.Lock()
	if vm.profile != nil && vm.profile.ID == insurer.ID {
		p := *insurer
		vm.profile = &p
	}
	vm.mu.Unlock()
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}

func (vm *InsurerViewModel) Delete(ctx context.Context, id string) error {
	if err := vm.repo.Delete(ctx, id); err != nil {
		return err
	}
	vm.mu.Lock()
	if vm.profile != nil && vm.profile.ID == id {
		vm.profile = nil
	}
	vm.mu.Unlock()
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}
