package wire

import (
	"Inkstone/internal/api"
	"Inkstone/internal/api/config"
	"Inkstone/internal/api/handler"
	"Inkstone/internal/job"
	"Inkstone/internal/pkg/cron"
	"Inkstone/internal/pkg/event"
	"Inkstone/internal/pkg/kafka"
	"Inkstone/internal/pkg/security"
	"Inkstone/internal/repository"
	"Inkstone/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, producer *kafka.EventProducer, cfg *config.Config) (*ApplicationContainer, error) {
	postRepo := repository.NewPostRepository(db)

	postService := service.NewPostService(postRepo, producer)
	// 消费链路注入 Noop，入站事件处理不再触发出站事件
	statsService := service.NewPostService(postRepo, event.NewNoopPublisher())

	tokenValidator := security.NewTokenValidator(cfg.Auth.Secret)
	authClient := security.NewAuthClient(cfg.Auth)

	handlers := &api.HandlersGroup{
		PostHandler: handler.NewPostHandler(postService),
	}

	router := api.SetupRouter(handlers, tokenValidator, authClient, cfg)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, statsService, producer)
	if err != nil {
		return nil, err
	}

	popularPostsJob := job.NewPopularPostsJob(postService)
	cronMgr := cron.NewCronManager(popularPostsJob)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
