// Package seed fills a development database with demo users, posts and
// swipe decisions.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"gorm.io/gorm"

	"github.com/oggyb/yourcode/internal/app"
	"github.com/oggyb/yourcode/internal/auth"
	"github.com/oggyb/yourcode/internal/db"
	"github.com/oggyb/yourcode/internal/repository"
	"github.com/oggyb/yourcode/internal/service/swipe"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password"

var languages = []string{"go", "rust", "python", "typescript", "kotlin", "c"}

type Options struct {
	Users        int
	PostsPerUser int
	// LikeRatio is the share of decisions that are likes.
	LikeRatio float64
	// Seed makes the generated decisions reproducible.
	Seed int64
}

func DefaultOptions() Options {
	return Options{Users: 20, PostsPerUser: 3, LikeRatio: 0.7, Seed: 1}
}

type Stats struct {
	Users   int
	Posts   int
	Likes   int
	Passes  int
	Matches int64
}

// Run resets the database and populates it.
//
// Behavior:
//  1. Clears matches, decisions, posts and users.
//  2. Creates Users accounts (user1..userN) sharing DemoPassword.
//  3. Creates PostsPerUser posts each.
//  4. Every user swipes through part of their feed through the swipe
//     service, so matches are derived exactly as in production.
func Run(ctx context.Context, appCtx *app.AppContext, opts Options) (*Stats, error) {
	r := rand.New(rand.NewSource(opts.Seed))
	log := appCtx.Logger

	if err := reset(appCtx.DB); err != nil {
		return nil, err
	}
	log.Info("cleared existing data")

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	users := repository.NewUserRepository(appCtx.DB)
	posts := repository.NewPostRepository(appCtx.DB)
	stats := &Stats{}

	ids := make([]uint64, 0, opts.Users)
	for i := 1; i <= opts.Users; i++ {
		u, err := users.Create(ctx, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i), hash)
		if err != nil {
			return nil, fmt.Errorf("failed to seed user: %w", err)
		}
		ids = append(ids, u.ID)
		stats.Users++

		for j := 1; j <= opts.PostsPerUser; j++ {
			lang := languages[r.Intn(len(languages))]
			desc := fmt.Sprintf("snippet %d by user%d", j, i)
			_, err := posts.Create(ctx, repository.NewPost{
				OwnerID:     u.ID,
				Title:       fmt.Sprintf("%s snippet #%d", lang, j),
				ImageRef:    fmt.Sprintf("/uploads/demo_%d_%d.png", i, j),
				Language:    &lang,
				Description: &desc,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to seed post: %w", err)
			}
			stats.Posts++
		}
	}
	log.Info("seeded users and posts", "users", stats.Users, "posts", stats.Posts)

	svc := swipe.NewService(appCtx)
	for _, uid := range ids {
		batch, err := svc.Feed(ctx, uid, repository.MaxFeedLimit)
		if err != nil {
			return nil, err
		}
		// decide on roughly half of what is on offer
		for _, p := range batch {
			if r.Intn(2) == 0 {
				continue
			}
			if r.Float64() < opts.LikeRatio {
				if _, err := svc.Like(ctx, uid, p.ID); err != nil {
					return nil, fmt.Errorf("failed to seed like: %w", err)
				}
				stats.Likes++
			} else {
				if err := svc.Pass(ctx, uid, p.ID); err != nil {
					return nil, fmt.Errorf("failed to seed pass: %w", err)
				}
				stats.Passes++
			}
		}
	}

	if err := appCtx.DB.WithContext(ctx).Model(&db.Match{}).Count(&stats.Matches).Error; err != nil {
		return nil, err
	}
	log.Info("seeded decisions", "likes", stats.Likes, "passes", stats.Passes, "matches", stats.Matches)
	return stats, nil
}

// reset empties every table, children first. Compatible with MySQL,
// Postgres and SQLite.
func reset(database *gorm.DB) error {
	for _, table := range []string{"matches", "likes", "passes", "code_posts", "users"} {
		if err := database.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch database.Dialector.Name() {
	case "mysql":
		database.Exec("ALTER TABLE code_posts AUTO_INCREMENT = 1")
		database.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		database.Exec("DELETE FROM sqlite_sequence WHERE name IN ('code_posts', 'users')")
	}
	return nil
}
