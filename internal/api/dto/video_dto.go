package dto

import "clipstream/internal/model"

// VideoPublishRequest 视频发布请求（multipart/form-data，文件字段单独处理）
type VideoPublishRequest struct {
	Title       string  `form:"title" binding:"required,min=1,max=200"`
	Description string  `form:"description" binding:"required"`
	Duration    float64 `form:"duration" binding:"omitempty,gte=0"`
}

// VideoUpdateRequest 视频更新请求（multipart/form-data，封面文件可选）
type VideoUpdateRequest struct {
	Title       *string `form:"title" binding:"omitempty,min=1,max=200"`
	Description *string `form:"description"`
}

// VideoListRequest 视频列表查询参数
type VideoListRequest struct {
	Page     int64  `form:"page" binding:"omitempty,gte=1"`
	Limit    int64  `form:"limit" binding:"omitempty,gte=1"`
	Query    string `form:"query"`
	UserID   string `form:"userId"`
	SortBy   string `form:"sortBy"`
	SortType string `form:"sortType"`
}

// VideoListData 视频列表响应数据
type VideoListData struct {
	Videos []model.Video `json:"videos"`
	Total  int64         `json:"total"`
	Page   int64         `json:"page"`
	Limit  int64         `json:"limit"`
}
