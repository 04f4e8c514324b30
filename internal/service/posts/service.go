// Package posts is the content store surface: creating, reading,
// listing and retracting code posts.
package posts

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/yourcode/internal/app"
	svcErr "github.com/oggyb/yourcode/internal/errors"
	"github.com/oggyb/yourcode/internal/repository"
	"github.com/oggyb/yourcode/internal/utils/pagination"
)

type Service struct {
	appCtx *app.AppContext
	posts  *repository.PostRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		posts:  repository.NewPostRepository(appCtx.DB),
	}
}

// Create stores a new active post for ownerID.
// Title and image reference are required; blank optional fields are
// stored as NULL.
func (s *Service) Create(ctx context.Context, ownerID uint64, req CreatePostRequest) (uint64, error) {
	title := strings.TrimSpace(req.Title)
	image := strings.TrimSpace(req.CodeImage)
	if title == "" || image == "" {
		return 0, svcErr.Validation("Missing required fields")
	}

	id, err := s.posts.Create(ctx, repository.NewPost{
		OwnerID:     ownerID,
		Title:       title,
		ImageRef:    image,
		Language:    optional(req.Language),
		Description: optional(req.Description),
	})
	if err != nil {
		s.appCtx.Logger.Error("create post failed", "owner", ownerID, "err", err)
		return 0, svcErr.Map(err)
	}
	s.appCtx.Logger.Info("post created", "owner", ownerID, "post", id)
	return id, nil
}

// Detail counts a view and returns the post as it reads afterwards, so
// the returned view count includes this view.
func (s *Service) Detail(ctx context.Context, postID uint64) (*repository.PostView, error) {
	ok, err := s.posts.IncrementViewCount(ctx, postID)
	if err != nil {
		s.appCtx.Logger.Error("increment view count failed", "post", postID, "err", err)
		return nil, svcErr.Map(err)
	}
	if !ok {
		return nil, svcErr.NotFound("Post not found")
	}

	view, err := s.posts.GetDetail(ctx, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// retracted between the two statements
		return nil, svcErr.NotFound("Post not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return view, nil
}

// Delete retracts postID on behalf of requesterID. Absent and not-owned
// posts are reported the same way.
func (s *Service) Delete(ctx context.Context, postID, requesterID uint64) error {
	ok, err := s.posts.Deactivate(ctx, postID, requesterID)
	if err != nil {
		s.appCtx.Logger.Error("deactivate post failed", "post", postID, "err", err)
		return svcErr.Map(err)
	}
	if !ok {
		return svcErr.NotFound("Post not found or unauthorized")
	}
	s.appCtx.Logger.Info("post retracted", "post", postID, "owner", requesterID)
	return nil
}

// List returns active posts newest first along with the token for the
// next page ("" when exhausted).
func (s *Service) List(ctx context.Context, limit, offset int, token string) ([]repository.PostView, string, error) {
	if offset < 0 {
		return nil, "", svcErr.Validation("offset must not be negative")
	}
	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", svcErr.Validation(err.Error())
	}

	views, next, err := s.posts.ListActive(ctx, limit, offset, cursor)
	if err != nil {
		s.appCtx.Logger.Error("list posts failed", "err", err)
		return nil, "", svcErr.Map(err)
	}
	if views == nil {
		views = []repository.PostView{}
	}

	if next == nil {
		return views, "", nil
	}
	nextToken, err := pagination.Encode(*next)
	if err != nil {
		return nil, "", svcErr.Internal("encode cursor", err)
	}
	return views, nextToken, nil
}

// ByUser returns targetID's active posts, marking the ones viewerID liked.
func (s *Service) ByUser(ctx context.Context, viewerID, targetID uint64) ([]repository.PostView, error) {
	views, err := s.posts.ListByOwner(ctx, targetID, viewerID)
	if err != nil {
		s.appCtx.Logger.Error("list user posts failed", "user", targetID, "err", err)
		return nil, svcErr.Map(err)
	}
	if views == nil {
		views = []repository.PostView{}
	}
	return views, nil
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
