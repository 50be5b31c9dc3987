package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"clipstream/internal/config"
	infraKafka "clipstream/internal/infra/kafka"
	infraRedis "clipstream/internal/infra/redis"
	"clipstream/internal/model"
	"clipstream/internal/repository"
	"clipstream/pkg/apperr"
	"clipstream/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AssetStore 对象存储适配器接口：上传本地文件换取 URL，按 URL 补偿删除
type AssetStore interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Remove(ctx context.Context, rawURL string) error
}

// ListRequest 视频列表请求参数（未解析的原始形态）
type ListRequest struct {
	Page     int64
	Limit    int64
	Query    string
	UserID   string
	SortBy   string
	SortType string
}

// PublishInput 视频发布输入，两个本地文件路径来自上传中间件
type PublishInput struct {
	OwnerID       primitive.ObjectID
	Title         string
	Description   string
	Duration      float64
	VideoPath     string
	ThumbnailPath string
}

// UpdateInput 视频更新输入；ThumbnailPath 非空时先上传新封面再提交更新
type UpdateInput struct {
	Title         *string
	Description   *string
	ThumbnailPath string
}

type VideoService struct {
	videoRepo   repository.VideoRepository
	commentRepo repository.CommentRepository
	assets      AssetStore
	videoCfg    *config.VideoConfig
	eventTopic  string
}

// NewVideoService 创建视频服务
// eventTopic 为空时不发事件；Redis 未初始化时缓存退化为直查
func NewVideoService(
	videoRepo repository.VideoRepository,
	commentRepo repository.CommentRepository,
	assets AssetStore,
	videoCfg *config.VideoConfig,
	eventTopic string,
) *VideoService {
	return &VideoService{
		videoRepo:   videoRepo,
		commentRepo: commentRepo,
		assets:      assets,
		videoCfg:    videoCfg,
		eventTopic:  eventTopic,
	}
}

// List 过滤/排序/分页列出视频，空结果是成功而非错误
func (s *VideoService) List(ctx context.Context, req ListRequest) ([]model.Video, int64, error) {
	var ownerID *primitive.ObjectID
	if req.UserID != "" {
		oid, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			return nil, 0, apperr.Validation("invalid user id")
		}
		ownerID = &oid
	}

	query := repository.BuildVideoListQuery(repository.ListParams{
		Page:     req.Page,
		Limit:    req.Limit,
		Query:    req.Query,
		OwnerID:  ownerID,
		SortBy:   req.SortBy,
		SortType: req.SortType,
	})

	videos, total, err := s.videoRepo.List(ctx, query)
	if err != nil {
		return nil, 0, apperr.Persistence("failed to list videos", err)
	}
	return videos, total, nil
}

// Publish 发布视频：先后上传视频文件与封面，两者都成功后才落库
// 封面上传失败时对已上传的视频文件做补偿删除；补偿也失败则返回带标记的存储错误，
// 任何一步失败都不会留下半创建的视频文档
func (s *VideoService) Publish(ctx context.Context, in PublishInput) (*model.Video, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation("title and description are required")
	}
	if in.VideoPath == "" || in.ThumbnailPath == "" {
		return nil, apperr.Validation("video file and thumbnail are required")
	}
	if in.OwnerID.IsZero() {
		return nil, apperr.Validation("owner is required")
	}

	videoURL, err := s.assets.Upload(ctx, in.VideoPath)
	if err != nil {
		return nil, apperr.Storage("failed to upload video file", err)
	}

	thumbURL, err := s.assets.Upload(ctx, in.ThumbnailPath)
	if err != nil {
		if cleanupErr := s.assets.Remove(ctx, videoURL); cleanupErr != nil {
			logger.Error("Orphaned video asset left in object storage",
				zap.String("url", videoURL),
				zap.Error(cleanupErr),
			)
			return nil, apperr.StorageCleanupFailed("failed to upload thumbnail, video asset cleanup also failed", err)
		}
		return nil, apperr.Storage("failed to upload thumbnail", err)
	}

	video := &model.Video{
		Owner:       in.OwnerID,
		Title:       in.Title,
		Description: in.Description,
		VideoFile:   videoURL,
		Thumbnail:   thumbURL,
		Duration:    in.Duration,
		IsPublished: false,
	}

	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, apperr.Persistence("failed to create video", err)
	}

	s.emitEvent(ctx, infraKafka.EventVideoCreated, video)

	return video, nil
}

// Get 获取视频详情，缓存命中则直接返回，否则回源并写缓存
// 观看数自增是尽力而为的旁路，不影响读取结果
func (s *VideoService) Get(ctx context.Context, id primitive.ObjectID) (*model.Video, error) {
	if cached := s.cacheGet(ctx, id); cached != nil {
		return cached, nil
	}

	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, apperr.Persistence("failed to fetch video", err)
	}

	if err := s.videoRepo.IncrementViews(ctx, id); err != nil {
		logger.Warn("Failed to increment video views", zap.String("video_id", id.Hex()), zap.Error(err))
	} else {
		video.Views++
	}

	s.cacheSet(ctx, video)

	return video, nil
}

// Update 更新视频的 title/description/thumbnail
// title 与 description 至少要有一个；新封面先上传成功才提交文档更新
func (s *VideoService) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) (*model.Video, error) {
	if in.Title == nil && in.Description == nil {
		return nil, apperr.Validation("at least one of title and description is required")
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.Validation("title cannot be empty")
	}

	update := repository.VideoUpdate{
		Title:       in.Title,
		Description: in.Description,
	}

	if in.ThumbnailPath != "" {
		thumbURL, err := s.assets.Upload(ctx, in.ThumbnailPath)
		if err != nil {
			return nil, apperr.Storage("failed to upload thumbnail", err)
		}
		update.Thumbnail = &thumbURL
	}

	video, err := s.videoRepo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, apperr.Persistence("failed to update video", err)
	}

	s.cacheDel(ctx, id)
	s.emitEvent(ctx, infraKafka.EventVideoUpdated, video)

	return video, nil
}

// Delete 删除视频；删除不存在的 id 返回 NotFound
// 级联策略开启时连带删除该视频的全部评论
func (s *VideoService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.videoRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("video not found")
		}
		return apperr.Persistence("failed to delete video", err)
	}

	if s.videoCfg != nil && s.videoCfg.CascadeComments {
		deleted, err := s.commentRepo.DeleteByVideo(ctx, id)
		if err != nil {
			return apperr.Persistence("video deleted but cascading comment deletion failed", err)
		}
		logger.Info("Cascaded comment deletion",
			zap.String("video_id", id.Hex()),
			zap.Int64("deleted", deleted),
		)
	}

	s.cacheDel(ctx, id)
	s.emitEvent(ctx, infraKafka.EventVideoDeleted, &model.Video{ID: id})

	return nil
}

// TogglePublished 原子翻转发布标志并返回翻转后的文档
func (s *VideoService) TogglePublished(ctx context.Context, id primitive.ObjectID) (*model.Video, error) {
	video, err := s.videoRepo.TogglePublished(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, apperr.Persistence("failed to toggle publish flag", err)
	}

	s.cacheDel(ctx, id)
	s.emitEvent(ctx, infraKafka.EventVideoPublished, video)

	return video, nil
}

func (s *VideoService) emitEvent(ctx context.Context, eventType string, video *model.Video) {
	if s.eventTopic == "" {
		return
	}

	ev := &infraKafka.VideoEvent{
		Type:        eventType,
		VideoID:     video.ID.Hex(),
		OwnerID:     video.Owner.Hex(),
		Title:       video.Title,
		Description: video.Description,
		Duration:    video.Duration,
		Views:       video.Views,
		IsPublished: video.IsPublished,
		OccurredAt:  time.Now().Unix(),
	}

	if err := infraKafka.SendVideoEvent(ctx, s.eventTopic, ev); err != nil {
		logger.Warn("Failed to send video event",
			zap.String("type", eventType),
			zap.String("video_id", ev.VideoID),
			zap.Error(err),
		)
	}
}

func (s *VideoService) cacheKey(id primitive.ObjectID) string {
	return "video:detail:" + id.Hex()
}

func (s *VideoService) cacheGet(ctx context.Context, id primitive.ObjectID) *model.Video {
	rdb := infraRedis.Get()
	if rdb == nil {
		return nil
	}

	raw, err := rdb.Get(ctx, s.cacheKey(id)).Bytes()
	if err != nil {
		return nil
	}

	var video model.Video
	if err := json.Unmarshal(raw, &video); err != nil {
		return nil
	}
	return &video
}

func (s *VideoService) cacheSet(ctx context.Context, video *model.Video) {
	rdb := infraRedis.Get()
	if rdb == nil || s.videoCfg == nil || s.videoCfg.CacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(video)
	if err != nil {
		return
	}

	if err := rdb.Set(ctx, s.cacheKey(video.ID), raw, s.videoCfg.CacheTTLDuration()).Err(); err != nil {
		logger.Warn("Failed to cache video detail", zap.String("video_id", video.ID.Hex()), zap.Error(err))
	}
}

func (s *VideoService) cacheDel(ctx context.Context, id primitive.ObjectID) {
	rdb := infraRedis.Get()
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, s.cacheKey(id)).Err(); err != nil {
		logger.Warn("Failed to invalidate video cache", zap.String("video_id", id.Hex()), zap.Error(err))
	}
}
