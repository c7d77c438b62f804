package repository

import (
	"context"
	"errors"
	"strings"

	"insurance-marketplace/internal/domain/entity"
	domainRepo "insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type accountRepository struct{}

func NewAccountRepository() domainRepo.AccountRepository {
	return &accountRepository{}
}

// isUniqueViolation reports a 23505 error from PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *accountRepository) Create(ctx context.Context, db *gorm.DB, account *entity.Account) error {
	account.Email = strings.ToLower(account.Email)
	if err := db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Wrap(apperror.KindConflict, "accounts.Create", err)
		}
		return err
	}
	return nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Account, error) {
	var account entity.Account
	err := db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Account, error) {
	var account entity.Account
	err := db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) Update(ctx context.Context, db *gorm.DB, account *entity.Account) error {
	account.Email = strings.ToLower(account.Email)
	if err := db.WithContext(ctx).Save(account).Error; err != nil {
		if isUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Wrap(apperror.KindConflict, "accounts.Update", err)
		}
		return err
	}
	return nil
}
