package repository

import (
	"context"

	"github.com/oggyb/yourcode/internal/utils/pagination"

	"gorm.io/gorm"
)

const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 50
)

// FeedRepository selects the swipe queue for a user.
type FeedRepository struct {
	db *gorm.DB
}

// NewFeedRepository creates a new repository bound to the given DB connection.
func NewFeedRepository(database *gorm.DB) *FeedRepository {
	return &FeedRepository{db: database}
}

// NextBatch returns up to limit posts userID can still swipe on.
//
// Behavior:
//   - A post qualifies iff it is active, not owned by userID, and userID has
//     neither liked nor passed it.
//   - Ordered by created_at DESC, id DESC; no randomization, so the same
//     store state always yields the same batch.
//   - limit <= 0 means DefaultFeedLimit; capped at MaxFeedLimit.
//   - Fewer qualifying posts than limit returns what exists (maybe none).
//
// Example:
//
//	repo.NextBatch(ctx, 42, 10) // next ten posts for user 42
func (r *FeedRepository) NextBatch(ctx context.Context, userID uint64, limit int) ([]PostView, error) {
	limit = pagination.ClampLimit(limit, DefaultFeedLimit, MaxFeedLimit)

	views := []PostView{}
	err := r.db.WithContext(ctx).
		Table("code_posts cp").
		Select(postViewColumns).
		Joins("JOIN users u ON u.id = cp.user_id").
		Where("cp.user_id <> ? AND cp.is_active = ?", userID, true).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM likes l2
				WHERE l2.user_id = ? AND l2.code_post_id = cp.id
			)`, userID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM passes p
				WHERE p.user_id = ? AND p.code_post_id = cp.id
			)`, userID).
		Order("cp.created_at DESC, cp.id DESC").
		Limit(limit).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}
