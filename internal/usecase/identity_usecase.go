package usecase

import (
	"context"
	"strings"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/pkg/apperror"
	"insurance-marketplace/pkg/validator"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidPhone = apperror.New(apperror.KindValidation, "identity", "phone must be exactly 10 digits")
)

// IdentityUsecase answers whether contact details are still free across
// every user partition and the insurer directory.
type IdentityUsecase interface {
	// IsEmailUnique ignores the profile selfID so an unchanged email of the
	// profile being edited counts as unique.
	IsEmailUnique(ctx context.Context, email, selfID string) (bool, error)
	// IsPhoneUnique rejects a malformed phone before looking anything up.
	IsPhoneUnique(ctx context.Context, phone, selfID string) (bool, error)
	// InsurerProfile returns the insurer-role user profile using email, or
	// nil when there is none. Its id is the id of its directory record.
	InsurerProfile(ctx context.Context, email string) (*entity.User, error)
}

type identityUsecase struct {
	log         *logrus.Logger
	userRepo    repository.UserRepository
	insurerRepo repository.InsurerRepository
}

func NewIdentityUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	insurerRepo repository.InsurerRepository,
) IdentityUsecase {
	return &identityUsecase{
		log:         log,
		userRepo:    userRepo,
		insurerRepo: insurerRepo,
	}
}

func (u *identityUsecase) IsEmailUnique(ctx context.Context, email, selfID string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	users, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		u.log.Warnf("Failed to find users by email: %+v", err)
		return false, err
	}
	for _, user := range users {
		if user.ID != selfID {
			return false, nil
		}
	}

	insurers, err := u.insurerRepo.FindByEmail(ctx, email)
	if err != nil {
		u.log.Warnf("Failed to find insurers by email: %+v", err)
		return false, err
	}
	for _, insurer := range insurers {
		if insurer.ID != selfID {
			return false, nil
		}
	}
	return true, nil
}

func (u *identityUsecase) InsurerProfile(ctx context.Context, email string) (*entity.User, error) {
	users, err := u.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		u.log.Warnf("Failed to find users by email: %+v", err)
		return nil, err
	}
	for i := range users {
		if users[i].Role == entity.RoleInsurer {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (u *identityUsecase) IsPhoneUnique(ctx context.Context, phone, selfID string) (bool, error) {
	if !validator.IsValidPhone(phone) {
		return false, ErrInvalidPhone
	}

	users, err := u.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		u.log.Warnf("Failed to find users by phone: %+v", err)
		return false, err
	}
	for _, user := range users {
		if user.ID != selfID {
			return false, nil
		}
	}

	insurers, err := u.insurerRepo.FindByPhone(ctx, phone)
	if err != nil {
		u.log.Warnf("Failed to find insurers by phone: %+v", err)
		return false, err
	}
	for _, insurer := range insurers {
		if insurer.ID != selfID {
			return false, nil
		}
	}
	return true, nil
}
