package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clipstream/internal/config"
	"clipstream/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var producer *kafka.Writer

// 视频事件类型
const (
	EventVideoCreated   = "video.created"
	EventVideoUpdated   = "video.updated"
	EventVideoDeleted   = "video.deleted"
	EventVideoPublished = "video.publish_toggled"
)

// VideoEvent 视频变更事件消息体，worker 据此维护搜索索引
type VideoEvent struct {
	Type        string  `json:"type"`
	VideoID     string  `json:"video_id"`
	OwnerID     string  `json:"owner_id,omitempty"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	Views       int64   `json:"views,omitempty"`
	IsPublished bool    `json:"is_published"`
	OccurredAt  int64   `json:"occurred_at"`
}

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	producer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// SendVideoEvent 发送视频变更事件
// 生产者未初始化时静默跳过（事件属于尽力而为的旁路，不阻塞主流程）
func SendVideoEvent(ctx context.Context, topic string, ev *VideoEvent) error {
	if producer == nil {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal video event: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte("video-" + ev.VideoID),
		Value: payload,
	}

	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send video event: %w", err)
	}

	logger.Info("Video event sent",
		zap.String("type", ev.Type),
		zap.String("video_id", ev.VideoID),
		zap.String("topic", topic),
	)

	return nil
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
