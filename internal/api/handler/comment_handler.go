package handler

import (
	"clipstream/internal/api/dto"
	"clipstream/internal/api/middleware"
	"clipstream/internal/api/response"
	"clipstream/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List GET /api/v1/videos/:videoId/comments（公开）
func (h *CommentHandler) List(c *gin.Context) {
	videoID, ok := parseObjectIDParam(c, "videoId")
	if !ok {
		response.BadRequest(c, "invalid video id")
		return
	}

	comments, err := h.commentService.ListForVideo(c.Request.Context(), videoID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "comments fetched successfully", dto.CommentListData{
		Comments: comments,
		Total:    len(comments),
	})
}

// Add POST /api/v1/videos/:videoId/comments
func (h *CommentHandler) Add(c *gin.Context) {
	videoID, ok := parseObjectIDParam(c, "videoId")
	if !ok {
		response.BadRequest(c, "invalid video id")
		return
	}

	var req dto.CommentAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request parameters: "+err.Error())
		return
	}

	currentUserID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		return
	}

	comment, err := h.commentService.Add(c.Request.Context(), videoID, currentUserID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "comment added successfully", comment)
}

// Update PATCH /api/v1/comments/:commentId
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, ok := parseObjectIDParam(c, "commentId")
	if !ok {
		response.BadRequest(c, "invalid comment id")
		return
	}

	var req dto.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request parameters: "+err.Error())
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), commentID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "comment updated successfully", comment)
}

// Delete DELETE /api/v1/comments/:commentId
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := parseObjectIDParam(c, "commentId")
	if !ok {
		response.BadRequest(c, "invalid comment id")
		return
	}

	comment, err := h.commentService.Delete(c.Request.Context(), commentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "comment deleted successfully", comment)
}
