package repository

import (
	"context"

	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/domain/entity"
	domainRepo "insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/internal/infrastructure/docstore"
	"insurance-marketplace/internal/infrastructure/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type postRepository struct {
	store   docstore.Store
	objects storage.ObjectStorage
	log     *logrus.Logger
}

func NewPostRepository(store docstore.Store, objects storage.ObjectStorage, log *logrus.Logger) domainRepo.PostRepository {
	return &postRepository{store: store, objects: objects, log: log}
}

func feedQuery() docstore.Query {
	return docstore.Collection(entity.PostsCollection).Ordered(entity.PostFieldDate, true)
}

// upload stores the image under a fresh key; the post keeps its previous
// image when the upload fails.
func (r *postRepository) upload(ctx context.Context, post *entity.Post, image *storage.Upload) {
	url, err := r.objects.Upload(ctx, entity.PostImageKey(uuid.NewString()), *image)
	if err != nil {
		r.log.WithField("post_id", post.ID).Warnf("Failed to upload post image: %+v", err)
		return
	}
	post.Image = url
}

func (r *postRepository) Add(ctx context.Context, post *entity.Post, image *storage.Upload) error {
	if image != nil {
		r.upload(ctx, post, image)
	}
	id, err := create(ctx, r.store, entity.PostsCollection, converter.PostToDocument(post))
	if err != nil {
		r.log.Warnf("Failed to add post: %+v", err)
		return err
	}
	post.ID = id
	return nil
}

func (r *postRepository) Update(ctx context.Context, post *entity.Post, image *storage.Upload) error {
	if err := requireID("posts.Update", post.ID); err != nil {
		return err
	}
	if image != nil {
		r.upload(ctx, post, image)
	}
	if err := r.store.Set(ctx, entity.PostsCollection, post.ID, converter.PostToDocument(post)); err != nil {
		r.log.Warnf("Failed to update post: %+v", err)
		return err
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	if err := requireID("posts.Delete", id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, entity.PostsCollection, id); err != nil {
		r.log.Warnf("Failed to delete post: %+v", err)
		return err
	}
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	return get(ctx, r.store, entity.PostsCollection, id, converter.DocumentToPost)
}

func (r *postRepository) List(ctx context.Context) ([]entity.Post, error) {
	return list(ctx, r.store, feedQuery(), converter.DocumentToPost)
}

func (r *postRepository) ListByTipo(ctx context.Context, tipo entity.PostTipo) ([]entity.Post, error) {
	return list(ctx, r.store, feedQuery().Where(entity.PostFieldTipo, string(tipo)), converter.DocumentToPost)
}

func (r *postRepository) Observe(ctx context.Context, fn domainRepo.ListFunc[entity.Post]) (domainRepo.Subscription, error) {
	return observe(ctx, r.store, r.log, "post", feedQuery(), converter.DocumentToPost, fn)
}

func (r *postRepository) ObserveByUser(ctx context.Context, userID string, fn domainRepo.ListFunc[entity.Post]) (domainRepo.Subscription, error) {
	q := feedQuery().Where(entity.PostFieldUserID, userID)
	return observe(ctx, r.store, r.log, "post", q, converter.DocumentToPost, fn)
}

func (r *postRepository) ObserveByTipo(ctx context.Context, tipo entity.PostTipo, fn domainRepo.ListFunc[entity.Post]) (domainRepo.Subscription, error) {
	q := feedQuery().Where(entity.PostFieldTipo, string(tipo))
	return observe(ctx, r.store, r.log, "post", q, converter.DocumentToPost, fn)
}
