package handler

import (
	"os"
	"path/filepath"
	"strings"

	"clipstream/internal/api/dto"
	"clipstream/internal/api/middleware"
	"clipstream/internal/api/response"
	"clipstream/internal/service"
	"clipstream/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxVideoSize = 500 * 1024 * 1024
const maxThumbnailSize = 10 * 1024 * 1024

var allowedVideoExt = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true,
	".mkv": true, ".flv": true, ".webm": true,
}

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

type VideoHandler struct {
	videoService *service.VideoService
}

func NewVideoHandler(videoService *service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// List GET /api/v1/videos（公开，不需要登录）
func (h *VideoHandler) List(c *gin.Context) {
	var req dto.VideoListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	videos, total, err := h.videoService.List(c.Request.Context(), service.ListRequest{
		Page:     req.Page,
		Limit:    req.Limit,
		Query:    req.Query,
		UserID:   req.UserID,
		SortBy:   req.SortBy,
		SortType: req.SortType,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = int64(len(videos))
	}

	response.OK(c, "videos fetched successfully", dto.VideoListData{
		Videos: videos,
		Total:  total,
		Page:   page,
		Limit:  limit,
	})
}

// Publish POST /api/v1/videos
func (h *VideoHandler) Publish(c *gin.Context) {
	var req dto.VideoPublishRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid request parameters: "+err.Error())
		return
	}

	videoFile, err := c.FormFile("videoFile")
	if err != nil {
		response.BadRequest(c, "video file is required")
		return
	}
	thumbnail, err := c.FormFile("thumbnail")
	if err != nil {
		response.BadRequest(c, "thumbnail file is required")
		return
	}

	if !allowedVideoExt[strings.ToLower(filepath.Ext(videoFile.Filename))] {
		response.BadRequest(c, "unsupported video format, allowed: mp4, avi, mov, mkv, flv, webm")
		return
	}
	if videoFile.Size == 0 || videoFile.Size > maxVideoSize {
		response.BadRequest(c, "invalid video file size (must be non-empty, max 500MB)")
		return
	}
	if !allowedImageExt[strings.ToLower(filepath.Ext(thumbnail.Filename))] {
		response.BadRequest(c, "unsupported thumbnail format, allowed: jpg, jpeg, png, webp")
		return
	}
	if thumbnail.Size == 0 || thumbnail.Size > maxThumbnailSize {
		response.BadRequest(c, "invalid thumbnail file size (must be non-empty, max 10MB)")
		return
	}

	currentUserID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		return
	}

	videoPath, err := saveUploadTemp(c, videoFile)
	if err != nil {
		logger.Error("Save uploaded video failed", zap.Error(err))
		response.InternalError(c, "failed to process uploaded video")
		return
	}
	defer os.Remove(videoPath)

	thumbPath, err := saveUploadTemp(c, thumbnail)
	if err != nil {
		logger.Error("Save uploaded thumbnail failed", zap.Error(err))
		response.InternalError(c, "failed to process uploaded thumbnail")
		return
	}
	defer os.Remove(thumbPath)

	video, err := h.videoService.Publish(c.Request.Context(), service.PublishInput{
		OwnerID:       currentUserID,
		Title:         req.Title,
		Description:   req.Description,
		Duration:      req.Duration,
		VideoPath:     videoPath,
		ThumbnailPath: thumbPath,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "video published successfully", video)
}

// Get GET /api/v1/videos/:videoId（公开，每次成功读取计一次播放）
func (h *VideoHandler) Get(c *gin.Context) {
	videoID, ok := parseObjectIDParam(c, "videoId")
	if !ok {
		response.BadRequest(c, "invalid video id")
		return
	}

	video, err := h.videoService.Get(c.Request.Context(), videoID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "video fetched successfully", video)
}

// Update PATCH /api/v1/videos/:videoId
func (h *VideoHandler) Update(c *gin.Context) {
	videoID, ok := parseObjectIDParam(c, "videoId")
	if !ok {
		response.BadRequest(c, "invalid video id")
		return
	}

	var req dto.VideoUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid request parameters: "+err.Error())
		return
	}

	in := service.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
	}

	if thumbnail, err := c.FormFile("thumbnail"); err == nil {
		if !allowedImageExt[strings.ToLower(filepath.Ext(thumbnail.Filename))] {
			response.BadRequest(c, "unsupported thumbnail format, allowed: jpg, jpeg, png, webp")
			return
		}
		if thumbnail.Size == 0 || thumbnail.Size > maxThumbnailSize {
			response.BadRequest(c, "invalid thumbnail file size (must be non-empty, max 10MB)")
			return
		}
		thumbPath, err := saveUploadTemp(c, thumbnail)
		if err != nil {
			logger.Error("Save uploaded thumbnail failed", zap.Error(err))
			response.InternalError(c, "failed to process uploaded thumbnail")
			return
		}
		defer os.Remove(thumbPath)
		in.ThumbnailPath = thumbPath
	}

	video, err := h.videoService.Update(c.Request.Context(), videoID, in)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "video updated successfully", video)
}

// Delete DELETE /api/v1/videos/:videoId
func (h *VideoHandler) Delete(c *gin.Context) {
	videoID, ok := parseObjectIDParam(c, "videoId")
	if !ok {
		response.BadRequest(c, "invalid video id")
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), videoID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "video deleted successfully", nil)
}

// TogglePublish POST /api/v1/videos/:videoId/toggle-publish
func (h *VideoHandler) TogglePublish(c *gin.Context) {
	videoID, ok := parseObjectIDParam(c, "videoId")
	if !ok {
		response.BadRequest(c, "invalid video id")
		return
	}

	video, err := h.videoService.TogglePublished(c.Request.Context(), videoID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "publish status toggled successfully", video)
}
