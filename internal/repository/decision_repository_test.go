package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/oggyb/yourcode/internal/db"
	"github.com/oggyb/yourcode/internal/repository"
	"github.com/oggyb/yourcode/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestRecordDecisionIdempotentLike(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.OpenDB(t)
	repo := repository.NewDecisionRepository(dbase)

	testutil.CreateUser(t, dbase, 1, "alice")
	testutil.CreateUser(t, dbase, 2, "bob")
	p := testutil.CreatePost(t, dbase, 2, "p1", base)

	require.NoError(t, repo.Record(ctx, 1, p.ID, repository.Like))
	require.NoError(t, repo.Record(ctx, 1, p.ID, repository.Like))

	var likes []db.Like
	require.NoError(t, dbase.Find(&likes).Error)
	assert.Len(t, likes, 1)

	kind, ok, err := repo.Get(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, repository.Like, kind)
}

func TestRecordDecisionFlipKeepsSingleRow(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.OpenDB(t)
	repo := repository.NewDecisionRepository(dbase)

	testutil.CreateUser(t, dbase, 1, "alice")
	testutil.CreateUser(t, dbase, 2, "bob")
	p := testutil.CreatePost(t, dbase, 2, "p1", base)

	// like, then overwrite with pass
	require.NoError(t, repo.Record(ctx, 1, p.ID, repository.Like))
	require.NoError(t, repo.Record(ctx, 1, p.ID, repository.Pass))

	var likes, passes int64
	dbase.Model(&db.Like{}).Count(&likes)
	dbase.Model(&db.Pass{}).Count(&passes)
	assert.Equal(t, int64(0), likes)
	assert.Equal(t, int64(1), passes)

	kind, ok, err := repo.Get(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, repository.Pass, kind)

	// and back again
	require.NoError(t, repo.Record(ctx, 1, p.ID, repository.Like))
	kind, _, _ = repo.Get(ctx, 1, p.ID)
	assert.Equal(t, repository.Like, kind)
	dbase.Model(&db.Pass{}).Count(&passes)
	assert.Equal(t, int64(0), passes)
}

func TestRecordDecisionRejectsUnknownKind(t *testing.T) {
	dbase := testutil.OpenDB(t)
	repo := repository.NewDecisionRepository(dbase)

	err := repo.Record(context.Background(), 1, 1, repository.DecisionKind("superlike"))
	assert.Error(t, err)
}

func TestHasDecided(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.OpenDB(t)
	repo := repository.NewDecisionRepository(dbase)

	testutil.CreateUser(t, dbase, 1, "alice")
	testutil.CreateUser(t, dbase, 2, "bob")
	p1 := testutil.CreatePost(t, dbase, 2, "p1", base)
	p2 := testutil.CreatePost(t, dbase, 2, "p2", base.Add(time.Minute))

	require.NoError(t, repo.Record(ctx, 1, p1.ID, repository.Pass))

	decided, err := repo.HasDecided(ctx, 1, p1.ID)
	require.NoError(t, err)
	assert.True(t, decided)

	decided, err = repo.HasDecided(ctx, 1, p2.ID)
	require.NoError(t, err)
	assert.False(t, decided)
}

func TestLikesByUserAndOwner(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.OpenDB(t)
	repo := repository.NewDecisionRepository(dbase)

	testutil.CreateUser(t, dbase, 1, "alice")
	testutil.CreateUser(t, dbase, 2, "bob")
	testutil.CreateUser(t, dbase, 3, "carol")
	b1 := testutil.CreatePost(t, dbase, 2, "b1", base)
	b2 := testutil.CreatePost(t, dbase, 2, "b2", base.Add(time.Minute))
	c1 := testutil.CreatePost(t, dbase, 3, "c1", base.Add(2*time.Minute))

	require.NoError(t, repo.Record(ctx, 1, b2.ID, repository.Like))
	require.NoError(t, repo.Record(ctx, 1, b1.ID, repository.Like))
	require.NoError(t, repo.Record(ctx, 1, c1.ID, repository.Pass))
	require.NoError(t, repo.Record(ctx, 3, b1.ID, repository.Like))

	liked, err := repo.LikesByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{b1.ID, b2.ID}, liked)

	refs, err := repo.LikesOnPostsOwnedBy(ctx, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []repository.LikeRef{
		{LikerID: 1, PostID: b1.ID},
		{LikerID: 3, PostID: b1.ID},
		{LikerID: 1, PostID: b2.ID},
	}, refs)

	n, err := repo.CountLikesOnPostsOwnedBy(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.CountLikesOnPostsOwnedBy(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
