package dto

// SearchRequest 视频搜索请求
type SearchRequest struct {
	Keyword string `form:"q" binding:"required,min=1,max=100"`
	Page    int64  `form:"page" binding:"omitempty,gte=1"`
	Limit   int64  `form:"limit" binding:"omitempty,gte=1"`
}
