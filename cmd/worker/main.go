package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipstream/internal/config"
	infraES "clipstream/internal/infra/elasticsearch"
	infraKafka "clipstream/internal/infra/kafka"
	"clipstream/pkg/logger"

	"go.uber.org/zap"
)

// 索引同步 worker：消费视频事件，把视频文档同步到 Elasticsearch
func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Fatal("Failed to init elasticsearch", zap.Error(err))
	}
	defer infraES.Close()

	ensureCtx, ensureCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := infraES.EnsureVideoIndex(ensureCtx); err != nil {
		ensureCancel()
		logger.Fatal("Failed to ensure video index", zap.Error(err))
	}
	ensureCancel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	eventTopic := cfg.Kafka.Topics["video_events"]
	groupID := "clipstream-index-worker"

	logger.Info("Index worker started",
		zap.String("topic", eventTopic),
		zap.String("group", groupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	infraKafka.StartVideoEventConsumer(ctx, cfg.Kafka.Brokers, eventTopic, groupID, handleVideoEvent)
	logger.Info("Index worker stopped")
}

func handleVideoEvent(ev *infraKafka.VideoEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch ev.Type {
	case infraKafka.EventVideoDeleted:
		return infraES.DeleteVideo(ctx, ev.VideoID)
	case infraKafka.EventVideoCreated, infraKafka.EventVideoUpdated, infraKafka.EventVideoPublished:
		occurred := time.Unix(ev.OccurredAt, 0).UTC()
		if ev.OccurredAt == 0 {
			occurred = time.Now().UTC()
		}
		return infraES.IndexVideo(ctx, &infraES.VideoDoc{
			ID:          ev.VideoID,
			OwnerID:     ev.OwnerID,
			Title:       ev.Title,
			Description: ev.Description,
			Duration:    ev.Duration,
			Views:       ev.Views,
			IsPublished: ev.IsPublished,
			CreatedAt:   occurred.Format(time.RFC3339),
			UpdatedAt:   occurred.Format(time.RFC3339),
		})
	default:
		logger.Warn("Unknown video event type", zap.String("type", ev.Type))
		return nil
	}
}
