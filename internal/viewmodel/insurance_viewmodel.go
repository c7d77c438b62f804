package viewmodel

import (
	"context"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/internal/infrastructure/storage"

	"github.com/sirupsen/logrus"
)

type InsuranceViewModel struct {
	*List[entity.Insurance]
	repo repository.InsuranceRepository
}

func NewInsuranceViewModel(repo repository.InsuranceRepository, log *logrus.Logger) *InsuranceViewModel {
	return &InsuranceViewModel{List: NewList[entity.Insurance]("insurances", log), repo: repo}
}

// StartRealtimeUpdates follows every insurance of every type.
func (vm *InsuranceViewModel) StartRealtimeUpdates(ctx context.Context) error {
	return vm.Start(ctx, vm.repo.ObserveAll)
}

func (vm *InsuranceViewModel) StartByType(ctx context.Context, insuranceType string) error {
	return vm.Start(ctx, func(ctx context.Context, fn repository.ListFunc[entity.Insurance]) (repository.Subscription, error) {
		return vm.repo.ObserveByType(ctx, insuranceType, fn)
	})
}

// StartActive follows the insurances visible in the catalog.
func (vm *InsuranceViewModel) StartActive(ctx context.Context) error {
	return vm.Start(ctx, vm.repo.ObserveActive)
}

func (vm *InsuranceViewModel) Insurances() []entity.Insurance {
	return vm.Items()
}

func (vm *InsuranceViewModel) Add(ctx context.Context, insurance *entity.Insurance, image *storage.Upload) error {
	if err := vm.repo.Add(ctx, insurance, image); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}

func (vm *InsuranceViewModel) Update(ctx context.Context, insurance *entity.Insurance, image *storage.Upload) error {
	if err := vm.repo.Update(ctx, insurance, image); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}

func (vm *InsuranceViewModel) Delete(ctx context.Context, insurance *entity.Insurance) error {
	if err := vm.repo.Delete(ctx, insurance); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}

func (vm *InsuranceViewModel) Find(ctx context.Context, insuranceType, id string) (*entity.Insurance, error) {
	return vm.repo.FindByID(ctx, insuranceType, id)
}

func (vm *InsuranceViewModel) ListByType(ctx context.Context, insuranceType string) ([]entity.Insurance, error) {
	return vm.repo.ListByType(ctx, insuranceType)
}
