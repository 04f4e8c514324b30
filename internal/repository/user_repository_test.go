package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oggyb/yourcode/internal/repository"
	"github.com/oggyb/yourcode/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateUserDuplicate(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.OpenDB(t)
	users := repository.NewUserRepository(dbase)

	_, err := users.Create(ctx, "alice", "alice@test.com", "hash")
	require.NoError(t, err)

	_, err = users.Create(ctx, "alice", "other@test.com", "hash")
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	_, err = users.Create(ctx, "other", "alice@test.com", "hash")
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	taken, err := users.ExistsByUsernameOrEmail(ctx, "nobody", "alice@test.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestGetByLogin(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.OpenDB(t)
	users := repository.NewUserRepository(dbase)

	created, err := users.Create(ctx, "alice", "alice@test.com", "hash")
	require.NoError(t, err)

	byName, err := users.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := users.GetByLogin(ctx, "alice@test.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = users.GetByLogin(ctx, "bob")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUpdateProfilePartial(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.OpenDB(t)
	users := repository.NewUserRepository(dbase)

	u := testutil.CreateUser(t, dbase, 1, "alice")
	bio := "hello"
	ok, err := users.UpdateProfile(ctx, u.ID, repository.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.True(t, ok)

	gh := "https://github.com/alice"
	ok, err = users.UpdateProfile(ctx, u.ID, repository.ProfileUpdate{GithubURL: &gh})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Bio)
	assert.Equal(t, "hello", *got.Bio)
	require.NotNil(t, got.GithubURL)
	assert.Equal(t, gh, *got.GithubURL)
	assert.Nil(t, got.ProfileImage)

	ok, err = users.UpdateProfile(ctx, 999, repository.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.OpenDB(t)
	users := repository.NewUserRepository(dbase)

	testutil.CreateUser(t, dbase, 1, "gopher")
	testutil.CreateUser(t, dbase, 2, "rustacean")
	testutil.CreateUser(t, dbase, 3, "go_fan")
	testutil.CreateUser(t, dbase, 4, "gofan")

	found, err := users.Search(ctx, "go")
	require.NoError(t, err)
	var names []string
	for _, u := range found {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"gopher", "go_fan", "gofan"}, names)

	// underscore is literal, not a wildcard
	found, err = users.Search(ctx, "go_")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "go_fan", found[0].Username)

	// email matches too
	found, err = users.Search(ctx, "rustacean@")
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestSearchLimit(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.OpenDB(t)
	users := repository.NewUserRepository(dbase)

	for i := 1; i <= 25; i++ {
		testutil.CreateUser(t, dbase, uint64(i), "dev"+string(rune('a'+i)))
	}
	found, err := users.Search(ctx, "dev")
	require.NoError(t, err)
	assert.Len(t, found, repository.MaxSearchResults)
}

func TestCountActivePosts(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.OpenDB(t)
	users := repository.NewUserRepository(dbase)
	posts := repository.NewPostRepository(dbase)

	testutil.CreateUser(t, dbase, 1, "alice")
	testutil.CreatePost(t, dbase, 1, "a", base)
	p := testutil.CreatePost(t, dbase, 1, "b", base)
	_, err := posts.Deactivate(ctx, p.ID, 1)
	require.NoError(t, err)

	n, err := users.CountActivePosts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
