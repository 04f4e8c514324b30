// Package swipe serves the swipe queue and records like/pass decisions,
// deriving matches as likes land.
package swipe

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/yourcode/internal/app"
	svcErr "github.com/oggyb/yourcode/internal/errors"
	"github.com/oggyb/yourcode/internal/repository"
)

// Service contains the swipe business logic on top of the repositories.
type Service struct {
	appCtx    *app.AppContext
	users     *repository.UserRepository
	posts     *repository.PostRepository
	decisions *repository.DecisionRepository
	matches   *repository.MatchRepository
	feed      *repository.FeedRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		users:     repository.NewUserRepository(appCtx.DB),
		posts:     repository.NewPostRepository(appCtx.DB),
		decisions: repository.NewDecisionRepository(appCtx.DB),
		matches:   repository.NewMatchRepository(appCtx.DB),
		feed:      repository.NewFeedRepository(appCtx.DB),
	}
}

// Feed returns the next batch of posts userID has not decided on.
// A non-positive limit means the default batch size.
func (s *Service) Feed(ctx context.Context, userID uint64, limit int) ([]repository.PostView, error) {
	batch, err := s.feed.NextBatch(ctx, userID, limit)
	if err != nil {
		s.appCtx.Logger.Error("NextBatch failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("feed served", "user", userID, "count", len(batch))
	return batch, nil
}

// Like records a like and reports whether the pair is matched afterwards.
func (s *Service) Like(ctx context.Context, userID, postID uint64) (bool, error) {
	return s.decide(ctx, userID, postID, repository.Like)
}

// Pass records a pass. It never creates or removes a match.
func (s *Service) Pass(ctx context.Context, userID, postID uint64) error {
	_, err := s.decide(ctx, userID, postID, repository.Pass)
	return err
}

// decide writes the decision and, for a like, evaluates the match in the
// same transaction. Both users' rows are locked first, and the reciprocal
// check is a locking read, so two reciprocal likes committing at once
// cannot each miss the other.
func (s *Service) decide(ctx context.Context, userID, postID uint64, kind repository.DecisionKind) (bool, error) {
	var (
		ownerID uint64
		matched bool
	)

	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.posts.WithTx(tx).GetActive(ctx, postID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("post not found")
		}
		if err != nil {
			return err
		}
		ownerID = post.UserID

		if err := s.users.WithTx(tx).LockPair(ctx, userID, ownerID); err != nil {
			return err
		}
		if err := s.decisions.WithTx(tx).Record(ctx, userID, postID, kind); err != nil {
			return err
		}
		if kind != repository.Like {
			return nil
		}

		matched, err = s.matches.WithTx(tx).Evaluate(ctx, userID, ownerID)
		return err
	})
	if err != nil {
		err = svcErr.Map(err)
		if svcErr.KindOf(err) == svcErr.KindInternal {
			s.appCtx.Logger.Error("record decision failed", "user", userID, "post", postID, "kind", kind, "err", err)
		}
		return false, err
	}

	s.invalidateLikesReceived(ctx, ownerID)

	s.appCtx.Logger.Debug("decision recorded",
		"user", userID, "post", postID, "owner", ownerID, "kind", kind, "matched", matched)
	if matched {
		s.appCtx.Logger.Info("match", "user", userID, "other", ownerID)
	}
	return matched, nil
}

// invalidateLikesReceived drops the owner's cached counter. The DB stays
// the source of truth, so a cache failure only gets logged.
func (s *Service) invalidateLikesReceived(ctx context.Context, ownerID uint64) {
	if s.appCtx.RedisCache == nil {
		return
	}
	if err := s.appCtx.RedisCache.InvalidateLikesReceived(ctx, ownerID); err != nil {
		s.appCtx.Logger.Warn("invalidate likes counter failed", "owner", ownerID, "err", err)
	}
}
