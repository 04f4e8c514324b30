package repository

import (
	"context"
	"strings"
	"time"

	"github.com/oggyb/yourcode/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// MaxSearchResults bounds user search.
	MaxSearchResults = 20
)

// PublicUser is the user projection safe to return to any caller.
type PublicUser struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	ProfileImage *string   `json:"profile_image"`
	Bio          *string   `json:"bio"`
	GithubURL    *string   `json:"github_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileUpdate holds the optional profile fields; nil means untouched.
type ProfileUpdate struct {
	Bio          *string
	ProfileImage *string
	GithubURL    *string
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.Bio == nil && p.ProfileImage == nil && p.GithubURL == nil
}

// UserRepository provides data access for accounts and profiles.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// Create inserts a user. Unique violations on username or email surface as
// gorm.ErrDuplicatedKey (with TranslateError enabled).
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string) (*db.User, error) {
	u := db.User{Username: username, Email: email, PasswordHash: passwordHash}
	if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ExistsByUsernameOrEmail checks whether either identifier is taken.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// GetByID returns the full user row or gorm.ErrRecordNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Take(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByLogin looks a user up by username or email.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		Order("id ASC").
		Take(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// LockPair takes row locks on the given users in ascending id order so two
// transactions touching the same pair serialize instead of deadlocking.
// SQLite serializes writers on its own and has no FOR UPDATE.
func (r *UserRepository) LockPair(ctx context.Context, a, b uint64) error {
	if r.db.Dialector.Name() == "sqlite" {
		return nil
	}
	ids := []uint64{a}
	if b != a {
		lo, hi := CanonicalPair(a, b)
		ids = []uint64{lo, hi}
	}
	var locked []db.User
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&locked).Error
}

// UpdateProfile writes only the provided fields. Returns false if the user
// does not exist.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uint64, p ProfileUpdate) (bool, error) {
	updates := map[string]any{}
	if p.Bio != nil {
		updates["bio"] = *p.Bio
	}
	if p.ProfileImage != nil {
		updates["profile_image"] = *p.ProfileImage
	}
	if p.GithubURL != nil {
		updates["github_url"] = *p.GithubURL
	}
	if len(updates) == 0 {
		return false, nil
	}

	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// MySQL reports 0 affected rows when values are unchanged.
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Search returns users whose username or email contains q, by id.
func (r *UserRepository) Search(ctx context.Context, q string) ([]PublicUser, error) {
	pattern := "%" + escapeLike(q) + "%"
	users := []PublicUser{}
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Select("id, username, email, profile_image, bio, created_at").
		Where("username LIKE ? ESCAPE '!' OR email LIKE ? ESCAPE '!'", pattern, pattern).
		Order("id ASC").
		Limit(MaxSearchResults).
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CountActivePosts counts the user's non-retracted posts.
func (r *UserRepository) CountActivePosts(ctx context.Context, id uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.CodePost{}).
		Where("user_id = ? AND is_active = ?", id, true).
		Count(&count).Error
	return count, err
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// ToPublic strips credentials from a user row.
func ToPublic(u *db.User) PublicUser {
	return PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		Bio:          u.Bio,
		GithubURL:    u.GithubURL,
		CreatedAt:    u.CreatedAt,
	}
}
