package job

import (
	"Inkstone/internal/pkg/consts"
	redispkg "Inkstone/internal/pkg/redis"
	"Inkstone/internal/service"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type refreshRecorder struct {
	service.PostService

	calls int
	limit int
}

func (s *refreshRecorder) RefreshPopularPosts(_ context.Context, limit int) error {
	s.calls++
	s.limit = limit
	return nil
}

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redispkg.Rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redispkg.Rdb = nil })
	return mr
}

// 空闲锁下任务必须拿到锁并真正触发刷新，结束后释放锁
func TestPopularPostsJobRefreshes(t *testing.T) {
	mr := setupTestRedis(t)
	svc := &refreshRecorder{}

	NewPopularPostsJob(svc).Run()

	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, popularWarmCount, svc.limit)
	assert.False(t, mr.Exists(consts.PopularRefreshLock))
}

// 锁被其他实例持有时跳过本轮
func TestPopularPostsJobSkipsWhenLockHeld(t *testing.T) {
	mr := setupTestRedis(t)
	require.NoError(t, mr.Set(consts.PopularRefreshLock, "other-instance"))

	svc := &refreshRecorder{}
	NewPopularPostsJob(svc).Run()

	assert.Zero(t, svc.calls)
	// 不是自己持有的锁不能被释放
	assert.True(t, mr.Exists(consts.PopularRefreshLock))
}
