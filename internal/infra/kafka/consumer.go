package kafka

import (
	"context"
	"encoding/json"
	"time"

	"clipstream/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventHandler 处理视频变更事件的回调函数
type EventHandler func(ev *VideoEvent) error

// StartVideoEventConsumer 启动视频事件消费者（阻塞，需在 goroutine 中运行）
// ctx 取消后会自动停止
func StartVideoEventConsumer(ctx context.Context, brokers []string, topic, groupID string, handler EventHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka video event consumer stopped")
	}()

	logger.Info("Kafka video event consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var ev VideoEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			logger.Error("Failed to unmarshal video event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		if err := handler(&ev); err != nil {
			logger.Error("Failed to handle video event",
				zap.String("type", ev.Type),
				zap.String("video_id", ev.VideoID),
				zap.Error(err),
			)
		}
	}
}
