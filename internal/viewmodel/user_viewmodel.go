package viewmodel

import (
	"context"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

type UserViewModel struct {
	*List[entity.User]
	repo repository.UserRepository
}

func NewUserViewModel(repo repository.UserRepository, log *logrus.Logger) *UserViewModel {
	return &UserViewModel{List: NewList[entity.User]("users", log), repo: repo}
}

// StartRealtimeUpdates follows every user in every partition.
func (vm *UserViewModel) StartRealtimeUpdates(ctx context.Context) error {
	return vm.Start(ctx, vm.repo.Observe)
}

// StartRole follows only the users of one role.
func (vm *UserViewModel) StartRole(ctx context.Context, role entity.Role) error {
	return vm.Start(ctx, func(ctx context.Context, fn repository.ListFunc[entity.User]) (repository.Subscription, error) {
		return vm.repo.ObserveRole(ctx, role, fn)
	})
}

func (vm *UserViewModel) Users() []entity.User {
	return vm.Items()
}

func (vm *UserViewModel) Add(ctx context.Context, user *entity.User) error {
	if err := vm.repo.Add(ctx, user); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}

func (vm *UserViewModel) Update(ctx context.Context, user *entity.User) error {
	if err := vm.repo.Update(ctx, user); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}

func (vm *UserViewModel) Delete(ctx context.Context, user *entity.User) error {
	if err := vm.repo.Delete(ctx, user); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.repo.List)
	return nil
}

func (vm *UserViewModel) Find(ctx context.Context, id string) (*entity.User, error) {
	return vm.repo.FindByID(ctx, id)
}
