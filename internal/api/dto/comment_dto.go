package dto

import "clipstream/internal/model"

// CommentAddRequest 添加评论请求
type CommentAddRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

// CommentUpdateRequest 更新评论请求
type CommentUpdateRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

// CommentListData 评论列表响应数据
type CommentListData struct {
	Comments []model.CommentWithOwner `json:"comments"`
	Total    int                      `json:"total"`
}
