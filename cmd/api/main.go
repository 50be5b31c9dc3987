package main

import (
	"context"
	"fmt"
	"time"

	"clipstream/internal/api/handler"
	"clipstream/internal/api/middleware"
	"clipstream/internal/api/router"
	"clipstream/internal/config"
	infraES "clipstream/internal/infra/elasticsearch"
	infraKafka "clipstream/internal/infra/kafka"
	infraMinio "clipstream/internal/infra/minio"
	infraMongo "clipstream/internal/infra/mongo"
	infraRedis "clipstream/internal/infra/redis"
	"clipstream/internal/repository"
	"clipstream/internal/service"
	"clipstream/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 加载配置文件
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 初始化文档库
	if err := infraMongo.Init(&cfg.Mongo); err != nil {
		logger.Fatal("Failed to init mongo", zap.Error(err))
	}
	defer infraMongo.Close()

	// 初始化Redis（可选，失败则缓存退化为直查）
	if err := infraRedis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis init failed, video detail cache disabled", zap.Error(err))
	}
	defer infraRedis.Close()

	// 初始化MinIO
	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		logger.Fatal("Failed to init minio", zap.Error(err))
	}

	// 初始化Kafka生产者
	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer infraKafka.CloseProducer()

	// 初始化 Elasticsearch（可选，失败则搜索降级到文档库）
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, search will fallback to document store", zap.Error(err))
	} else {
		defer infraES.Close()
	}

	// 初始化依赖（Repository -> Service -> Handler）
	db := infraMongo.Get()
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// 建立索引
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer indexCancel()
	for _, ensure := range []func(context.Context) error{
		userRepo.EnsureIndexes,
		videoRepo.EnsureIndexes,
		commentRepo.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			logger.Fatal("Failed to ensure indexes", zap.Error(err))
		}
	}

	assets := infraMinio.NewAssetStore(&cfg.MinIO)
	eventTopic := cfg.Kafka.Topics["video_events"]

	userService := service.NewUserService(userRepo)
	videoService := service.NewVideoService(videoRepo, commentRepo, assets, &cfg.Video, eventTopic)
	commentService := service.NewCommentService(commentRepo)
	searchService := service.NewSearchService(videoRepo)

	userHandler := handler.NewUserHandler(userService)
	videoHandler := handler.NewVideoHandler(videoService)
	commentHandler := handler.NewCommentHandler(commentService)
	searchHandler := handler.NewSearchHandler(searchService)

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())

	// 注册业务路由
	router.Setup(r, userHandler, videoHandler, commentHandler, searchHandler)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("mongo", cfg.Mongo.Database),
		zap.String("redis", cfg.Redis.Addr()),
		zap.String("minio", cfg.MinIO.Endpoint),
		zap.String("event_topic", eventTopic),
	)

	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
