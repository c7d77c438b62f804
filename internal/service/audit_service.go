package service

import (
	"context"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService records account events. Recording is best effort: a failed
// write is logged and never fails the operation being audited.
type AuditService interface {
	Record(ctx context.Context, accountID *uuid.UUID, action string, metadata entity.JSON)
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) Record(ctx context.Context, accountID *uuid.UUID, action string, metadata entity.JSON) {
	auditLog := &entity.AuditLog{
		AccountID: accountID,
		Action:    action,
		Metadata:  metadata,
	}

	if err := s.auditRepo.Create(ctx, s.db, auditLog); err != nil {
		s.log.WithField("action", action).Warnf("Failed to create audit log: %+v", err)
	}
}
