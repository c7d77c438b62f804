package viewmodel

import (
	"context"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/pkg/apperror"

	"github.com/sirupsen/logrus"
)

// ChatViewModel follows the conversation of one user.
type ChatViewModel struct {
	*List[entity.Message]
	repo   repository.MessageRepository
	userID string
}

func NewChatViewModel(repo repository.MessageRepository, userID string, log *logrus.Logger) *ChatViewModel {
	return &ChatViewModel{List: NewList[entity.Message]("chat", log), repo: repo, userID: userID}
}

func (vm *ChatViewModel) StartRealtimeUpdates(ctx context.Context) error {
	return vm.Start(ctx, func(ctx context.Context, fn repository.ListFunc[entity.Message]) (repository.Subscription, error) {
		return vm.repo.ObserveConversation(ctx, vm.userID, fn)
	})
}

func (vm *ChatViewModel) Messages() []entity.Message {
	return vm.Items()
}

func (vm *ChatViewModel) Send(ctx context.Context, text string, isSentByUser bool) (*entity.Message, error) {
	if text == "" {
		return nil, apperror.New(apperror.KindValidation, "chat.Send", "message text is required")
	}
	message := &entity.Message{
		Text:         text,
		IsSentByUser: isSentByUser,
		UserID:       vm.userID,
	}
	if err := vm.repo.Send(ctx, message); err != nil {
		return nil, err
	}
	vm.refreshIfIdle(ctx, func(ctx context.Context) ([]entity.Message, error) {
		return vm.repo.ListConversation(ctx, vm.userID)
	})
	return message, nil
}

// Load fetches the conversation once without subscribing.
func (vm *ChatViewModel) Load(ctx context.Context) ([]entity.Message, error) {
	messages, err := vm.repo.ListConversation(ctx, vm.userID)
	vm.set(messages, err)
	return messages, err
}
