package job

import (
	"Inkstone/internal/pkg/consts"
	"Inkstone/internal/pkg/redis"
	"Inkstone/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// 预热数量大于接口默认返回量，避免截断后缓存反复回源
const popularWarmCount = 50

// PopularPostsJob 定时重建热门榜缓存
// 分布式锁保证多实例部署时同一周期只刷一次
type PopularPostsJob struct {
	postSvc service.PostService
}

func NewPopularPostsJob(postSvc service.PostService) *PopularPostsJob {
	return &PopularPostsJob{
		postSvc: postSvc,
	}
}

func (s *PopularPostsJob) Run() {
	ctx := context.Background()
	log.Info("start popular posts refresh job")

	lockValue := uuid.NewString()
	locked, err := redis.TryLock(ctx, consts.PopularRefreshLock, lockValue, 5*time.Minute, 1)
	if err != nil {
		log.Error("acquire popular refresh lock failed", "err", err)
		return
	}
	if !locked {
		log.Info("popular refresh lock held by another instance, skip")
		return
	}
	defer redis.UnLock(ctx, consts.PopularRefreshLock, lockValue)

	if err = s.postSvc.RefreshPopularPosts(ctx, popularWarmCount); err != nil {
		log.Error("refresh popular posts failed", "err", err)
		return
	}

	log.Info("popular posts refresh job finished")
}
