// Package users covers accounts (register, login, token verification)
// and public profiles.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/oggyb/yourcode/internal/app"
	"github.com/oggyb/yourcode/internal/auth"
	svcErr "github.com/oggyb/yourcode/internal/errors"
	"github.com/oggyb/yourcode/internal/repository"
	"github.com/oggyb/yourcode/internal/server"
)

// MinSearchLength is the shortest query Search runs against the store.
const MinSearchLength = 2

// Profile is a public user plus derived counters.
type Profile struct {
	repository.PublicUser
	PostCount     int64 `json:"post_count"`
	LikesReceived int64 `json:"likes_received"`
}

// Session is what register and login hand back.
type Session struct {
	Token string                `json:"token"`
	User  repository.PublicUser `json:"user"`
}

type Service struct {
	appCtx    *app.AppContext
	users     *repository.UserRepository
	decisions *repository.DecisionRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		users:     repository.NewUserRepository(appCtx.DB),
		decisions: repository.NewDecisionRepository(appCtx.DB),
	}
}

// Register creates an account and signs a token for it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := server.Validate(req); err != nil {
		return nil, err
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return nil, svcErr.Validation(fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if taken {
		return nil, svcErr.Conflict("User already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, svcErr.Internal("hash password", err)
	}

	u, err := s.users.Create(ctx, req.Username, req.Email, hash)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent registration
		return nil, svcErr.Conflict("User already exists")
	}
	if err != nil {
		s.appCtx.Logger.Error("create user failed", "username", req.Username, "err", err)
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("user registered", "user", u.ID)
	return s.session(repository.ToPublic(u))
}

// Login checks credentials by username or email. Unknown users and wrong
// passwords get the same answer.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := server.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.users.GetByLogin(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		s.appCtx.Logger.Debug("login rejected", "user", u.ID)
		return nil, svcErr.Unauthorized("Invalid credentials")
	}
	return s.session(repository.ToPublic(u))
}

// Verify returns the identity a token was issued for.
func (s *Service) Verify(token string) (auth.Identity, error) {
	id, err := s.appCtx.Tokens.Verify(token)
	if err != nil {
		return auth.Identity{}, svcErr.Unauthorized("Invalid token")
	}
	return id, nil
}

// Profile returns userID's public profile with post and like counters.
// The likes-received counter is read through the cache.
func (s *Service) Profile(ctx context.Context, userID uint64) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("User not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}

	posts, err := s.users.CountActivePosts(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	likes, err := s.likesReceived(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	return &Profile{
		PublicUser:    repository.ToPublic(u),
		PostCount:     posts,
		LikesReceived: likes,
	}, nil
}

// UpdateProfile writes the provided fields only.
func (s *Service) UpdateProfile(ctx context.Context, userID uint64, req UpdateProfileRequest) error {
	if err := server.Validate(req); err != nil {
		return err
	}
	upd := repository.ProfileUpdate{
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
		GithubURL:    req.GithubURL,
	}
	if upd.Empty() {
		return svcErr.Validation("No fields to update")
	}

	ok, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		s.appCtx.Logger.Error("update profile failed", "user", userID, "err", err)
		return svcErr.Map(err)
	}
	if !ok {
		return svcErr.NotFound("User not found")
	}
	return nil
}

// Search finds users by username or email substring. Queries shorter than
// MinSearchLength return an empty list.
func (s *Service) Search(ctx context.Context, q string) ([]repository.PublicUser, error) {
	if utf8.RuneCountInString(q) < MinSearchLength {
		return []repository.PublicUser{}, nil
	}
	found, err := s.users.Search(ctx, q)
	if err != nil {
		s.appCtx.Logger.Error("search users failed", "err", err)
		return nil, svcErr.Map(err)
	}
	return found, nil
}

func (s *Service) session(u repository.PublicUser) (*Session, error) {
	token, err := s.appCtx.Tokens.Issue(auth.Identity{UserID: u.ID, Username: u.Username, Email: u.Email})
	if err != nil {
		return nil, svcErr.Internal("issue token", err)
	}
	return &Session{Token: token, User: u}, nil
}

// likesReceived is cache-first; a cache failure falls back to the DB and
// never fails the request. The generation is taken before the DB read so a
// decision committing in between keeps the older count out of the cache.
func (s *Service) likesReceived(ctx context.Context, userID uint64) (int64, error) {
	rc := s.appCtx.RedisCache
	fill := false
	var ver int64
	if rc != nil {
		n, ok, err := rc.GetLikesReceived(ctx, userID)
		if err != nil {
			s.appCtx.Logger.Warn("likes counter cache read failed", "user", userID, "err", err)
		} else if ok {
			return n, nil
		} else if ver, err = rc.LikesReceivedVersion(ctx, userID); err != nil {
			s.appCtx.Logger.Warn("likes counter version read failed", "user", userID, "err", err)
		} else {
			fill = true
		}
	}

	n, err := s.decisions.CountLikesOnPostsOwnedBy(ctx, userID)
	if err != nil {
		return 0, err
	}

	if fill {
		stored, err := rc.SetLikesReceived(ctx, userID, n, ver)
		if err != nil {
			s.appCtx.Logger.Warn("likes counter cache write failed", "user", userID, "err", err)
		} else if !stored {
			s.appCtx.Logger.Debug("likes counter fill skipped, invalidated meanwhile", "user", userID)
		}
	}
	return n, nil
}
