package swipe_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/yourcode/internal/db"
	svcErr "github.com/oggyb/yourcode/internal/errors"
	"github.com/oggyb/yourcode/internal/repository"
	"github.com/oggyb/yourcode/internal/service/swipe"
	"github.com/oggyb/yourcode/internal/testutil"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestMutualLikeCreatesMatch(t *testing.T) {
	ctx := context.Background()
	appCtx, _ := testutil.NewAppContext(t)
	svc := swipe.NewService(appCtx)

	testutil.CreateUser(t, appCtx.DB, 1, "alice")
	testutil.CreateUser(t, appCtx.DB, 2, "bob")
	p1 := testutil.CreatePost(t, appCtx.DB, 1, "p1", base)
	p2 := testutil.CreatePost(t, appCtx.DB, 2, "p2", base.Add(time.Minute))

	// alice likes bob's post: nothing reciprocal yet
	matched, err := svc.Like(ctx, 1, p2.ID)
	require.NoError(t, err)
	assert.False(t, matched)

	// bob likes alice's post: match
	matched, err = svc.Like(ctx, 2, p1.ID)
	require.NoError(t, err)
	assert.True(t, matched)

	var m db.Match
	require.NoError(t, appCtx.DB.First(&m).Error)
	assert.Equal(t, uint64(1), m.User1ID)
	assert.Equal(t, uint64(2), m.User2ID)
	assert.True(t, m.IsActive)

	// liking again is a no-op on the match set
	matched, err = svc.Like(ctx, 2, p1.ID)
	require.NoError(t, err)
	assert.True(t, matched)

	var n int64
	appCtx.DB.Model(&db.Match{}).Count(&n)
	assert.Equal(t, int64(1), n)

	// both feeds are now empty
	for _, uid := range []uint64{1, 2} {
		batch, err := svc.Feed(ctx, uid, 0)
		require.NoError(t, err)
		assert.Empty(t, batch)
	}
}

func TestPassNeverMatches(t *testing.T) {
	ctx := context.Background()
	appCtx, _ := testutil.NewAppContext(t)
	svc := swipe.NewService(appCtx)

	testutil.CreateUser(t, appCtx.DB, 1, "alice")
	testutil.CreateUser(t, appCtx.DB, 2, "bob")
	p1 := testutil.CreatePost(t, appCtx.DB, 1, "p1", base)
	p2 := testutil.CreatePost(t, appCtx.DB, 2, "p2", base)

	_, err := svc.Like(ctx, 1, p2.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Pass(ctx, 2, p1.ID))

	var n int64
	appCtx.DB.Model(&db.Match{}).Count(&n)
	assert.Equal(t, int64(0), n)

	batch, err := svc.Feed(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, batch, "passed post must not come back")
}

func TestFlipLikeToPassKeepsMatch(t *testing.T) {
	ctx := context.Background()
	appCtx, _ := testutil.NewAppContext(t)
	svc := swipe.NewService(appCtx)
	decisions := repository.NewDecisionRepository(appCtx.DB)

	testutil.CreateUser(t, appCtx.DB, 1, "alice")
	testutil.CreateUser(t, appCtx.DB, 2, "bob")
	p1 := testutil.CreatePost(t, appCtx.DB, 1, "p1", base)
	p2 := testutil.CreatePost(t, appCtx.DB, 2, "p2", base)

	_, err := svc.Like(ctx, 1, p2.ID)
	require.NoError(t, err)
	matched, err := svc.Like(ctx, 2, p1.ID)
	require.NoError(t, err)
	require.True(t, matched)

	require.NoError(t, svc.Pass(ctx, 2, p1.ID))

	kind, ok, err := decisions.Get(ctx, 2, p1.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, repository.Pass, kind)

	// there is no unmatch path
	ok, err = repository.NewMatchRepository(appCtx.DB).IsMatched(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDecisionOnMissingOrRetractedPost(t *testing.T) {
	ctx := context.Background()
	appCtx, _ := testutil.NewAppContext(t)
	svc := swipe.NewService(appCtx)
	posts := repository.NewPostRepository(appCtx.DB)

	testutil.CreateUser(t, appCtx.DB, 1, "alice")
	testutil.CreateUser(t, appCtx.DB, 2, "bob")
	p2 := testutil.CreatePost(t, appCtx.DB, 2, "p2", base)
	_, err := posts.Deactivate(ctx, p2.ID, 2)
	require.NoError(t, err)

	_, err = svc.Like(ctx, 1, p2.ID)
	assert.Equal(t, svcErr.KindNotFound, svcErr.KindOf(err))

	err = svc.Pass(ctx, 1, p2.ID+100)
	assert.Equal(t, svcErr.KindNotFound, svcErr.KindOf(err))

	var likes, passes int64
	appCtx.DB.Model(&db.Like{}).Count(&likes)
	appCtx.DB.Model(&db.Pass{}).Count(&passes)
	assert.Zero(t, likes)
	assert.Zero(t, passes)
}

func TestSelfLikeRecordedWithoutMatch(t *testing.T) {
	ctx := context.Background()
	appCtx, _ := testutil.NewAppContext(t)
	svc := swipe.NewService(appCtx)

	testutil.CreateUser(t, appCtx.DB, 1, "alice")
	a1 := testutil.CreatePost(t, appCtx.DB, 1, "a1", base)
	a2 := testutil.CreatePost(t, appCtx.DB, 1, "a2", base)

	for _, p := range []db.CodePost{a1, a2} {
		matched, err := svc.Like(ctx, 1, p.ID)
		require.NoError(t, err)
		assert.False(t, matched)
	}

	var n int64
	appCtx.DB.Model(&db.Match{}).Count(&n)
	assert.Zero(t, n)
}

func TestDecisionInvalidatesOwnerCounter(t *testing.T) {
	ctx := context.Background()
	appCtx, mr := testutil.NewAppContext(t)
	svc := swipe.NewService(appCtx)

	testutil.CreateUser(t, appCtx.DB, 1, "alice")
	testutil.CreateUser(t, appCtx.DB, 2, "bob")
	p2 := testutil.CreatePost(t, appCtx.DB, 2, "p2", base)

	_, err := appCtx.RedisCache.SetLikesReceived(ctx, 2, 7, 0)
	require.NoError(t, err)
	key := appCtx.RedisCache.KeyForLikesReceived(2)
	require.True(t, mr.Exists(key))

	_, err = svc.Like(ctx, 1, p2.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))
}

func TestDecisionSurvivesCacheOutage(t *testing.T) {
	ctx := context.Background()
	appCtx, mr := testutil.NewAppContext(t)
	svc := swipe.NewService(appCtx)

	testutil.CreateUser(t, appCtx.DB, 1, "alice")
	testutil.CreateUser(t, appCtx.DB, 2, "bob")
	p2 := testutil.CreatePost(t, appCtx.DB, 2, "p2", base)

	mr.Close()
	_, err := svc.Like(ctx, 1, p2.ID)
	require.NoError(t, err)
}

func TestConcurrentReciprocalLikesYieldOneMatch(t *testing.T) {
	ctx := context.Background()
	appCtx, _ := testutil.NewAppContext(t)
	svc := swipe.NewService(appCtx)

	testutil.CreateUser(t, appCtx.DB, 1, "alice")
	testutil.CreateUser(t, appCtx.DB, 2, "bob")
	p1 := testutil.CreatePost(t, appCtx.DB, 1, "p1", base)
	p2 := testutil.CreatePost(t, appCtx.DB, 2, "p2", base)

	const rounds = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		matched int
		errs    []error
	)
	like := func(user, post uint64) {
		defer wg.Done()
		ok, err := svc.Like(ctx, user, post)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
		}
		if ok {
			matched++
		}
	}
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go like(1, p2.ID)
		go like(2, p1.ID)
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Positive(t, matched)

	var n int64
	appCtx.DB.Model(&db.Match{}).Count(&n)
	assert.Equal(t, int64(1), n)
}
