package viewmodel

import (
	"insurance-marketplace/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// Factory builds view models over one set of repositories. Long-lived
// screens share one instance; request-scoped consumers such as event
// streams create and close their own.
type Factory struct {
	Users      repository.UserRepository
	Agents     repository.AgentRepository
	Insurers   repository.InsurerRepository
	Insurances repository.InsuranceRepository
	Posts      repository.PostRepository
	Messages   repository.MessageRepository
	Authors    *AuthorResolver
	Log        *logrus.Logger
}

func (f *Factory) NewUsers() *UserViewModel {
	return NewUserViewModel(f.Users, f.Log)
}

func (f *Factory) NewAgents() *AgentViewModel {
	return NewAgentViewModel(f.Agents, f.Log)
}

func (f *Factory) NewInsurers() *InsurerViewModel {
	return NewInsurerViewModel(f.Insurers, f.Log)
}

func (f *Factory) NewInsurances() *InsuranceViewModel {
	return NewInsuranceViewModel(f.Insurances, f.Log)
}

func (f *Factory) NewPosts() *PostViewModel {
	return NewPostViewModel(f.Posts, f.Authors, f.Log)
}

func (f *Factory) NewChat(userID string) *ChatViewModel {
	return NewChatViewModel(f.Messages, userID, f.Log)
}
