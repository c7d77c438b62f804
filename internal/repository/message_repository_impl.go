package repository

import (
	"context"
	"time"

	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/domain/entity"
	domainRepo "insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/internal/infrastructure/docstore"
	"insurance-marketplace/pkg/apperror"

	"github.com/sirupsen/logrus"
)

type messageRepository struct {
	store docstore.Store
	log   *logrus.Logger
	now   func() time.Time
}

func NewMessageRepository(store docstore.Store, log *logrus.Logger) domainRepo.MessageRepository {
	return &messageRepository{store: store, log: log, now: time.Now}
}

func conversationQuery(userID string) docstore.Query {
	return docstore.Collection(entity.ConversationCollection(userID)).Ordered(entity.MessageFieldTimestamp, false)
}

func (r *messageRepository) Send(ctx context.Context, message *entity.Message) error {
	if message.UserID == "" {
		return apperror.New(apperror.KindValidation, "messages.Send", "user id is required")
	}
	if message.Timestamp == 0 {
		message.Timestamp = r.now().UnixMilli()
	}
	id, err := create(ctx, r.store, entity.ConversationCollection(message.UserID), converter.MessageToDocument(message))
	if err != nil {
		r.log.Warnf("Failed to send message: %+v", err)
		return err
	}
	message.ID = id
	return nil
}

func (r *messageRepository) ListConversation(ctx context.Context, userID string) ([]entity.Message, error) {
	return list(ctx, r.store, conversationQuery(userID), converter.DocumentToMessage)
}

func (r *messageRepository) ObserveConversation(ctx context.Context, userID string, fn domainRepo.ListFunc[entity.Message]) (domainRepo.Subscription, error) {
	return observe(ctx, r.store, r.log, "message", conversationQuery(userID), converter.DocumentToMessage, fn)
}
