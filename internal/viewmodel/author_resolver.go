package viewmodel

import (
	"context"

	"insurance-marketplace/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/iter"
	"golang.org/x/sync/singleflight"
)

// DefaultAuthorName is shown for posts whose author no longer exists.
const DefaultAuthorName = "Usuario"

const maxAuthorLookups = 8

type Author struct {
	ID    string
	Name  string
	Image string
}

// AuthorResolver looks up the display name and avatar behind a post userId,
// first among users and then among insurers.
type AuthorResolver struct {
	users         repository.UserRepository
	insurers      repository.InsurerRepository
	defaultAvatar string
	log           *logrus.Logger
	group         singleflight.Group
}

func NewAuthorResolver(users repository.UserRepository, insurers repository.InsurerRepository, defaultAvatar string, log *logrus.Logger) *AuthorResolver {
	return &AuthorResolver{
		users:         users,
		insurers:      insurers,
		defaultAvatar: defaultAvatar,
		log:           log,
	}
}

// Resolve never fails: lookups that error or find nothing fall back to the
// default name and avatar.
func (r *AuthorResolver) Resolve(ctx context.Context, userID string) Author {
	v, _, _ := r.group.Do(userID, func() (interface{}, error) {
		return r.lookup(ctx, userID), nil
	})
	return v.(Author)
}

func (r *AuthorResolver) lookup(ctx context.Context, userID string) Author {
	author := Author{ID: userID, Name: DefaultAuthorName, Image: r.defaultAvatar}
	if userID == "" {
		return author
	}

	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		r.log.WithField("user_id", userID).Warnf("Failed to resolve post author: %+v", err)
		return author
	}
	if user != nil {
		author.Name = user.DisplayName()
		if user.Image != "" {
			author.Image = user.Image
		}
		return author
	}

	insurer, err := r.insurers.FindByID(ctx, userID)
	if err != nil {
		r.log.WithField("user_id", userID).Warnf("Failed to resolve post author: %+v", err)
		return author
	}
	if insurer != nil {
		author.Name = insurer.DisplayName()
		if insurer.Image != "" {
			author.Image = insurer.Image
		}
	}
	return author
}

// ResolveAll resolves every distinct id concurrently.
func (r *AuthorResolver) ResolveAll(ctx context.Context, userIDs []string) map[string]Author {
	seen := make(map[string]struct{}, len(userIDs))
	distinct := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	mapper := iter.Mapper[string, Author]{MaxGoroutines: maxAuthorLookups}
	authors := mapper.Map(distinct, func(id *string) Author {
		return r.Resolve(ctx, *id)
	})

	out := make(map[string]Author, len(authors))
	for _, a := range authors {
		out[a.ID] = a
	}
	return out
}
