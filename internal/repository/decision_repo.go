package repository

import (
	"context"
	"fmt"

	"github.com/oggyb/yourcode/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DecisionKind is the outcome of a swipe.
type DecisionKind string

const (
	Like DecisionKind = "like"
	Pass DecisionKind = "pass"
)

// Valid reports whether k is a known kind.
func (k DecisionKind) Valid() bool {
	return k == Like || k == Pass
}

// LikeRef identifies one like on one post.
type LikeRef struct {
	LikerID uint64 `json:"liker_id"`
	PostID  uint64 `json:"post_id"`
}

// DecisionRepository is the decision ledger: per-user swipe decisions on
// posts, at most one per (user, post), spread over the likes and passes
// tables.
type DecisionRepository struct {
	db *gorm.DB
}

// NewDecisionRepository creates a new repository bound to the given DB connection.
func NewDecisionRepository(database *gorm.DB) *DecisionRepository {
	return &DecisionRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *DecisionRepository) WithTx(tx *gorm.DB) *DecisionRepository {
	return &DecisionRepository{db: tx}
}

// Record inserts or overwrites the decision of userID on postID.
//
// Behavior:
//   - Upserts (user_id, code_post_id) in the table for kind, refreshing
//     created_at when the row already exists.
//   - Deletes the row for the opposite kind, so a flip Like <-> Pass
//     replaces the previous decision instead of adding a second one.
//   - Both writes commit together.
//
// Example:
//
//	repo.Record(ctx, 1, 42, repository.Like) // user 1 liked post 42
func (r *DecisionRepository) Record(
	ctx context.Context,
	userID, postID uint64,
	kind DecisionKind,
) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown decision kind %q", kind)
	}

	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "code_post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"created_at"}),
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row, opposite any
		if kind == Like {
			row = &db.Like{UserID: userID, CodePostID: postID}
			opposite = &db.Pass{}
		} else {
			row = &db.Pass{UserID: userID, CodePostID: postID}
			opposite = &db.Like{}
		}

		if err := tx.Clauses(upsert).Create(row).Error; err != nil {
			return err
		}
		return tx.
			Where("user_id = ? AND code_post_id = ?", userID, postID).
			Delete(opposite).Error
	})
}

// Get returns the current decision of userID on postID; ok=false if none.
func (r *DecisionRepository) Get(
	ctx context.Context,
	userID, postID uint64,
) (kind DecisionKind, ok bool, err error) {
	var n int64
	err = r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("user_id = ? AND code_post_id = ?", userID, postID).
		Count(&n).Error
	if err != nil {
		return "", false, err
	}
	if n > 0 {
		return Like, true, nil
	}

	err = r.db.WithContext(ctx).
		Model(&db.Pass{}).
		Where("user_id = ? AND code_post_id = ?", userID, postID).
		Count(&n).Error
	if err != nil {
		return "", false, err
	}
	if n > 0 {
		return Pass, true, nil
	}
	return "", false, nil
}

// HasDecided checks whether userID liked or passed postID.
func (r *DecisionRepository) HasDecided(ctx context.Context, userID, postID uint64) (bool, error) {
	_, ok, err := r.Get(ctx, userID, postID)
	return ok, err
}

// LikesByUser returns the ids of posts userID currently likes, ascending.
func (r *DecisionRepository) LikesByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("user_id = ?", userID).
		Order("code_post_id ASC").
		Pluck("code_post_id", &ids).Error
	return ids, err
}

// LikesOnPostsOwnedBy returns every (liker, post) like on posts owned by
// ownerID, including likes on retracted posts.
func (r *DecisionRepository) LikesOnPostsOwnedBy(ctx context.Context, ownerID uint64) ([]LikeRef, error) {
	var refs []LikeRef
	err := r.db.WithContext(ctx).
		Table("likes l").
		Select("l.user_id AS liker_id, l.code_post_id AS post_id").
		Joins("JOIN code_posts cp ON cp.id = l.code_post_id").
		Where("cp.user_id = ?", ownerID).
		Order("l.code_post_id ASC, l.user_id ASC").
		Scan(&refs).Error
	return refs, err
}

// CountLikesOnPostsOwnedBy counts likes received across ownerID's posts.
//
// Used in conjunction with the Redis counter cache (DB is fallback).
func (r *DecisionRepository) CountLikesOnPostsOwnedBy(ctx context.Context, ownerID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("likes l").
		Joins("JOIN code_posts cp ON cp.id = l.code_post_id").
		Where("cp.user_id = ?", ownerID).
		Count(&count).Error
	return count, err
}
