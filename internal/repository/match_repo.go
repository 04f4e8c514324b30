package repository

import (
	"context"

	"github.com/oggyb/yourcode/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository materializes mutual likes as canonical user pairs.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// CanonicalPair orders an unordered user pair as (min, max).
func CanonicalPair(a, b uint64) (uint64, uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

// Evaluate runs the match check for a like just recorded by likerID on a
// post owned by ownerID. Must run after the like is written, in the same
// transaction.
//
// Behavior:
//   - likerID == ownerID → no-op; a self-like never produces a match.
//   - Checks whether ownerID likes any post owned by likerID (user to user,
//     not post to post; retracted posts still count).
//   - If so, upserts matches(min, max) with is_active = true, reactivating a
//     deactivated row. The composite PK makes concurrent upserts collapse
//     into one row.
//   - Returns whether the pair is matched after the call.
func (r *MatchRepository) Evaluate(ctx context.Context, likerID, ownerID uint64) (bool, error) {
	if likerID == ownerID {
		return false, nil
	}

	reciprocated, err := r.HasLikedAnyPostOf(ctx, ownerID, likerID)
	if err != nil {
		return false, err
	}
	if !reciprocated {
		return false, nil
	}

	if err := r.Upsert(ctx, likerID, ownerID); err != nil {
		return false, err
	}
	return true, nil
}

// HasLikedAnyPostOf checks whether likerID has a like on at least one post
// owned by ownerID.
func (r *MatchRepository) HasLikedAnyPostOf(ctx context.Context, likerID, ownerID uint64) (bool, error) {
	var hits []uint64
	err := r.reciprocalLikeQuery(ctx, likerID, ownerID).Pluck("l.user_id", &hits).Error
	return len(hits) > 0, err
}

// reciprocalLikeQuery is a locking read on MySQL and Postgres. Under
// REPEATABLE READ a plain SELECT would read the snapshot taken at the
// transaction's first query and miss a like committed while this
// transaction waited on LockPair.
func (r *MatchRepository) reciprocalLikeQuery(ctx context.Context, likerID, ownerID uint64) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("likes l").
		Joins("JOIN code_posts cp ON cp.id = l.code_post_id").
		Where("l.user_id = ? AND cp.user_id = ?", likerID, ownerID).
		Limit(1)
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}
	return q
}

// Upsert creates or reactivates the match for the pair (a, b).
func (r *MatchRepository) Upsert(ctx context.Context, a, b uint64) error {
	user1, user2 := CanonicalPair(a, b)
	m := db.Match{User1ID: user1, User2ID: user2, IsActive: true}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoUpdates: clause.Assignments(map[string]any{"is_active": true}),
		}).
		Create(&m).Error
}

// Get returns the match row for the pair (a, b) in either order.
func (r *MatchRepository) Get(ctx context.Context, a, b uint64) (*db.Match, error) {
	user1, user2 := CanonicalPair(a, b)
	var m db.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1, user2).
		Take(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// IsMatched reports whether an active match exists for the pair.
func (r *MatchRepository) IsMatched(ctx context.Context, a, b uint64) (bool, error) {
	if a == b {
		return false, nil
	}
	user1, user2 := CanonicalPair(a, b)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user1_id = ? AND user2_id = ? AND is_active = ?", user1, user2, true).
		Count(&count).Error
	return count > 0, err
}
