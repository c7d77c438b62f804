package viewmodel

import (
	"context"
	"time"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/internal/infrastructure/storage"
	"insurance-marketplace/pkg/validator"

	"github.com/sirupsen/logrus"
)

// FeedItem is a post with its author resolved for display.
type FeedItem struct {
	Post   entity.Post
	Author Author
}

type PostViewModel struct {
	*List[FeedItem]
	repo    repository.PostRepository
	authors *AuthorResolver
	now     func() time.Time
}

func NewPostViewModel(repo repository.PostRepository, authors *AuthorResolver, log *logrus.Logger) *PostViewModel {
	return &PostViewModel{
		List:    NewList[FeedItem]("posts", log),
		repo:    repo,
		authors: authors,
		now:     time.Now,
	}
}

func (vm *PostViewModel) feed(ctx context.Context, posts []entity.Post) []FeedItem {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.UserID
	}
	authors := vm.authors.ResolveAll(ctx, ids)

	items := make([]FeedItem, len(posts))
	for i, p := range posts {
		items[i] = FeedItem{Post: p, Author: authors[p.UserID]}
	}
	return items
}

// withAuthors adapts a post subscription into a feed subscription.
func (vm *PostViewModel) withAuthors(observe func(context.Context, repository.ListFunc[entity.Post]) (repository.Subscription, error)) ObserveFunc[FeedItem] {
	return func(ctx context.Context, fn repository.ListFunc[FeedItem]) (repository.Subscription, error) {
		return observe(ctx, func(posts []entity.Post, err error) {
			if err != nil {
				fn(nil, err)
				return
			}
			fn(vm.feed(ctx, posts), nil)
		})
	}
}

// StartRealtimeUpdates follows every post, newest first.
func (vm *PostViewModel) StartRealtimeUpdates(ctx context.Context) error {
	return vm.Start(ctx, vm.withAuthors(vm.repo.Observe))
}

// StartMine follows the posts written by userID.
func (vm *PostViewModel) StartMine(ctx context.Context, userID string) error {
	return vm.Start(ctx, vm.withAuthors(func(ctx context.Context, fn repository.ListFunc[entity.Post]) (repository.Subscription, error) {
		return vm.repo.ObserveByUser(ctx, userID, fn)
	}))
}

func (vm *PostViewModel) StartByTipo(ctx context.Context, tipo entity.PostTipo) error {
	return vm.Start(ctx, vm.withAuthors(func(ctx context.Context, fn repository.ListFunc[entity.Post]) (repository.Subscription, error) {
		return vm.repo.ObserveByTipo(ctx, tipo, fn)
	}))
}

func (vm *PostViewModel) Feed() []FeedItem {
	return vm.Items()
}

// ListByTipo fetches one category once without touching the observed feed.
func (vm *PostViewModel) ListByTipo(ctx context.Context, tipo entity.PostTipo) ([]FeedItem, error) {
	posts, err := vm.repo.ListByTipo(ctx, tipo)
	if err != nil {
		return nil, err
	}
	return vm.feed(ctx, posts), nil
}

func (vm *PostViewModel) fetchFeed(ctx context.Context) ([]FeedItem, error) {
	posts, err := vm.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return vm.feed(ctx, posts), nil
}

// Add stamps today's date on undated posts.
func (vm *PostViewModel) Add(ctx context.Context, post *entity.Post, image *storage.Upload) error {
	if post.Date == "" {
		post.Date = vm.now().Format(validator.DateLayout)
	}
	if err := vm.repo.Add(ctx, post, image); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.fetchFeed)
	return nil
}

func (vm *PostViewModel) Update(ctx context.Context, post *entity.Post, image *storage.Upload) error {
	if err := vm.repo.Update(ctx, post, image); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.fetchFeed)
	return nil
}

func (vm *PostViewModel) Delete(ctx context.Context, id string) error {
	if err := vm.repo.Delete(ctx, id); err != nil {
		return err
	}
	vm.refreshIfIdle(ctx, vm.fetchFeed)
	return nil
}

func (vm *PostViewModel) Find(ctx context.Context, id string) (*entity.Post, error) {
	return vm.repo.FindByID(ctx, id)
}
