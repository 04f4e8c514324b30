package db

import (
	"time"
)

// User table
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	ProfileImage *string   `gorm:"size:512" json:"profile_image"`
	Bio          *string   `gorm:"type:text" json:"bio"`
	GithubURL    *string   `gorm:"column:github_url;size:255" json:"github_url"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CodePost is a screenshot of code shared by its owner.
//
// Posts are never physically removed; IsActive=false retracts them while
// keeping likes/passes that reference them valid.
//
// Indexes:
//   - idx_posts_active_created(is_active, created_at DESC, id)
//     Serves feed and listing scans (newest first).
//   - idx_posts_owner_active(user_id, is_active)
//     Serves owner listings and the match existence join.
type CodePost struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64    `gorm:"not null;index:idx_posts_owner_active,priority:1" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	CodeImage   string    `gorm:"size:512;not null" json:"code_image"`
	Language    *string   `gorm:"size:64" json:"language"`
	Description *string   `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;default:true;index:idx_posts_owner_active,priority:2;index:idx_posts_active_created,priority:1" json:"is_active"`
	ViewCount   int64     `gorm:"not null;default:0" json:"view_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_posts_active_created,priority:2,sort:desc" json:"created_at"`

	Owner User `gorm:"foreignKey:UserID" json:"-"`
}

// Like records that a user swiped right on a post.
//
// Composite PK: (UserID, CodePostID). A (user, post) pair holds at most one
// decision across likes and passes; the ledger removes the opposite row when
// a decision flips.
type Like struct {
	UserID     uint64    `gorm:"primaryKey;autoIncrement:false"`
	CodePostID uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_likes_post"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Pass records that a user swiped left on a post. Same key as Like.
type Pass struct {
	UserID     uint64    `gorm:"primaryKey;autoIncrement:false"`
	CodePostID uint64    `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Match is a symmetric user pair stored canonically with User1ID < User2ID.
// The composite PK is the concurrency guard for simultaneous mutual likes.
type Match struct {
	User1ID   uint64    `gorm:"column:user1_id;primaryKey;autoIncrement:false"`
	User2ID   uint64    `gorm:"column:user2_id;primaryKey;autoIncrement:false;check:chk_matches_order,user1_id < user2_id"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// AllModels lists every table in migration order.
func AllModels() []any {
	return []any{&User{}, &CodePost{}, &Like{}, &Pass{}, &Match{}}
}
