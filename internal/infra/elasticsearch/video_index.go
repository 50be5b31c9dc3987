package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clipstream/internal/config"
	"clipstream/internal/model"
	"clipstream/pkg/logger"

	"go.uber.org/zap"
)

// VideoDoc 搜索索引里的视频文档结构
type VideoDoc struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Views       int64   `json:"views"`
	IsPublished bool    `json:"is_published"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// VideoToDoc 将视频文档转换为索引文档
func VideoToDoc(v *model.Video) *VideoDoc {
	return &VideoDoc{
		ID:          v.ID.Hex(),
		OwnerID:     v.Owner.Hex(),
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   v.UpdatedAt.Format(time.RFC3339),
	}
}

const videoIndexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "id":           {"type": "keyword"},
      "owner_id":     {"type": "keyword"},
      "title":        {"type": "text"},
      "description":  {"type": "text"},
      "duration":     {"type": "double"},
      "views":        {"type": "long"},
      "is_published": {"type": "boolean"},
      "created_at":   {"type": "date"},
      "updated_at":   {"type": "date"}
    }
  }
}`

// VideoIndexName 返回配置的视频索引名
func VideoIndexName() string {
	cfg := config.GetElasticsearch()
	if name := cfg.Index["videos"]; name != "" {
		return name
	}
	return "videos"
}

// EnsureVideoIndex 创建视频索引（已存在则跳过）
func EnsureVideoIndex(ctx context.Context) error {
	index := VideoIndexName()

	exists, err := IndicesExists(ctx, index)
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	if exists {
		return nil
	}

	resp, err := IndicesCreate(ctx, index, bytes.NewReader([]byte(videoIndexMapping)))
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return fmt.Errorf("create index %s failed: %s", index, resp.String())
	}

	logger.Info("Elasticsearch video index created", zap.String("index", index))
	return nil
}

// IndexVideo 写入/覆盖一条视频索引文档
func IndexVideo(ctx context.Context, doc *VideoDoc) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal video doc: %w", err)
	}

	resp, err := Index(ctx, VideoIndexName(), doc.ID, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("index video %s: %w", doc.ID, err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return fmt.Errorf("index video %s failed: %s", doc.ID, resp.String())
	}
	return nil
}

// DeleteVideo 删除一条视频索引文档（不存在视为成功）
func DeleteVideo(ctx context.Context, videoID string) error {
	resp, err := Delete(ctx, VideoIndexName(), videoID)
	if err != nil {
		return fmt.Errorf("delete video %s from index: %w", videoID, err)
	}
	defer resp.Body.Close()
	if resp.IsError() && resp.StatusCode != 404 {
		return fmt.Errorf("delete video %s from index failed: %s", videoID, resp.String())
	}
	return nil
}
