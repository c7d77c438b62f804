package repository

import (
	"context"

	"insurance-marketplace/internal/domain/entity"
)

// MessageRepository stores chat lines; messages are never edited or deleted.
type MessageRepository interface {
	Send(ctx context.Context, message *entity.Message) error
	ListConversation(ctx context.Context, userID string) ([]entity.Message, error)
	ObserveConversation(ctx context.Context, userID string, fn ListFunc[entity.Message]) (Subscription, error)
}
