package repository

import (
	"context"
	"time"

	"github.com/oggyb/yourcode/internal/db"
	"github.com/oggyb/yourcode/internal/utils/pagination"

	"gorm.io/gorm"
)

const (
	// DefaultListLimit caps listings of active posts.
	DefaultListLimit = 50
)

// PostView is a post joined with its author and derived counters, as the
// listing, detail and feed endpoints return it.
type PostView struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user_id"`
	Title        string    `json:"title"`
	CodeImage    string    `json:"code_image"`
	Language     *string   `json:"language"`
	Description  *string   `json:"description"`
	IsActive     bool      `json:"is_active"`
	ViewCount    int64     `json:"view_count"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	ProfileImage *string   `json:"profile_image"`
	Bio          *string   `json:"bio,omitempty"`
	LikeCount    int64     `json:"like_count"`
	IsLiked      bool      `json:"is_liked"`
}

// NewPost carries the fields a caller may set on creation.
type NewPost struct {
	OwnerID     uint64
	Title       string
	ImageRef    string
	Language    *string
	Description *string
}

// PostRepository is the content store: posts and their active/retracted
// lifecycle.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new repository bound to the given DB connection.
func NewPostRepository(database *gorm.DB) *PostRepository {
	return &PostRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *PostRepository) WithTx(tx *gorm.DB) *PostRepository {
	return &PostRepository{db: tx}
}

// Create inserts an active post and returns its id.
// Field validation is the caller's job.
func (r *PostRepository) Create(ctx context.Context, p NewPost) (uint64, error) {
	post := db.CodePost{
		UserID:      p.OwnerID,
		Title:       p.Title,
		CodeImage:   p.ImageRef,
		Language:    p.Language,
		Description: p.Description,
		IsActive:    true,
	}
	if err := r.db.WithContext(ctx).Create(&post).Error; err != nil {
		return 0, err
	}
	return post.ID, nil
}

// GetActive returns an active post or gorm.ErrRecordNotFound.
func (r *PostRepository) GetActive(ctx context.Context, postID uint64) (*db.CodePost, error) {
	var post db.CodePost
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", postID, true).
		Take(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetDetail returns an active post with its author and like count.
func (r *PostRepository) GetDetail(ctx context.Context, postID uint64) (*PostView, error) {
	var views []PostView
	err := r.viewQuery(ctx, 0).
		Select(postViewColumns + ", u.bio").
		Where("cp.id = ? AND cp.is_active = ?", postID, true).
		Limit(1).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &views[0], nil
}

// Deactivate retracts a post iff requesterID owns it.
//
// Behavior:
//   - Single conditional UPDATE on (id, user_id, is_active); no separate
//     existence read.
//   - Returns false when nothing matched: absent and not-owned are
//     deliberately indistinguishable.
func (r *PostRepository) Deactivate(ctx context.Context, postID, requesterID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.CodePost{}).
		Where("id = ? AND user_id = ? AND is_active = ?", postID, requesterID, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IncrementViewCount bumps view_count by one with a single atomic UPDATE.
// Returns false if the post is absent or inactive.
func (r *PostRepository) IncrementViewCount(ctx context.Context, postID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.CodePost{}).
		Where("id = ? AND is_active = ?", postID, true).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListActive returns active posts newest first.
//
// Behavior:
//   - limit is clamped to (0, DefaultListLimit].
//   - offset skips rows; a non-zero cursor continues after the given
//     (created_at, id) position instead. Both may be combined.
//   - Fetches limit+1 rows to decide whether a next cursor exists.
func (r *PostRepository) ListActive(
	ctx context.Context,
	limit, offset int,
	cursor pagination.Cursor,
) ([]PostView, *pagination.Cursor, error) {
	limit = pagination.ClampLimit(limit, DefaultListLimit, DefaultListLimit)
	if offset < 0 {
		offset = 0
	}

	query := r.viewQuery(ctx, 0).
		Where("cp.is_active = ?", true).
		Order("cp.created_at DESC, cp.id DESC").
		Limit(limit + 1).
		Offset(offset)

	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(cp.created_at < ? OR (cp.created_at = ? AND cp.id < ?))",
			ts, ts, cursor.PostID,
		)
	}

	var views []PostView
	if err := query.Scan(&views).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(views) > limit {
		last := views[limit-1]
		next = &pagination.Cursor{PostID: last.ID, CreatedUnix: last.CreatedAt.UnixMilli()}
		views = views[:limit]
	}
	return views, next, nil
}

// ListByOwner returns the owner's active posts newest first. viewerID, when
// non-zero, fills IsLiked for that viewer.
func (r *PostRepository) ListByOwner(ctx context.Context, ownerID, viewerID uint64) ([]PostView, error) {
	var views []PostView
	err := r.viewQuery(ctx, viewerID).
		Where("cp.user_id = ? AND cp.is_active = ?", ownerID, true).
		Order("cp.created_at DESC, cp.id DESC").
		Scan(&views).Error
	return views, err
}

const postViewColumns = `cp.id, cp.user_id, cp.title, cp.code_image, cp.language, cp.description,
	cp.is_active, cp.view_count, cp.created_at,
	u.username, u.profile_image,
	(SELECT COUNT(*) FROM likes l WHERE l.code_post_id = cp.id) AS like_count`

// viewQuery is the shared posts-join-users projection.
func (r *PostRepository) viewQuery(ctx context.Context, viewerID uint64) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("code_posts cp").
		Joins("JOIN users u ON u.id = cp.user_id")
	if viewerID == 0 {
		return q.Select(postViewColumns)
	}
	return q.Select(
		postViewColumns+`,
		EXISTS (SELECT 1 FROM likes l2 WHERE l2.code_post_id = cp.id AND l2.user_id = ?) AS is_liked`,
		viewerID,
	)
}
