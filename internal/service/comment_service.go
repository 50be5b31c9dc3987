package service

import (
	"context"
	"errors"
	"strings"

	"clipstream/internal/model"
	"clipstream/internal/repository"
	"clipstream/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CommentService struct {
	commentRepo repository.CommentRepository
}

// NewCommentService 创建评论服务
func NewCommentService(commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

// Add 发表评论，content 非空、video/owner 引用齐全才允许创建
func (s *CommentService) Add(ctx context.Context, videoID, ownerID primitive.ObjectID, content string) (*model.Comment, error) {
	if videoID.IsZero() || ownerID.IsZero() {
		return nil, apperr.Validation("video id and owner id are required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("comment cannot be empty")
	}

	comment := &model.Comment{
		Content: content,
		Video:   videoID,
		Owner:   ownerID,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, apperr.Persistence("failed to create comment", err)
	}
	return comment, nil
}

// ListForVideo 列出某视频的评论（带作者三字段摘要），零条评论是成功
func (s *CommentService) ListForVideo(ctx context.Context, videoID primitive.ObjectID) ([]model.CommentWithOwner, error) {
	if videoID.IsZero() {
		return nil, apperr.Validation("video id is required")
	}

	comments, err := s.commentRepo.ListForVideo(ctx, videoID)
	if err != nil {
		return nil, apperr.Persistence("failed to list comments", err)
	}
	return comments, nil
}

// Update 更新评论内容并返回更新后的文档
func (s *CommentService) Update(ctx context.Context, id primitive.ObjectID, content string) (*model.Comment, error) {
	if id.IsZero() {
		return nil, apperr.Validation("comment id is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("comment cannot be empty")
	}

	comment, err := s.commentRepo.Update(ctx, id, content)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, apperr.Persistence("failed to update comment", err)
	}
	return comment, nil
}

// Delete 删除评论并返回删除前的文档；删除不存在的 id 返回 NotFound
func (s *CommentService) Delete(ctx context.Context, id primitive.ObjectID) (*model.Comment, error) {
	if id.IsZero() {
		return nil, apperr.Validation("comment id is required")
	}

	comment, err := s.commentRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, apperr.Persistence("failed to delete comment", err)
	}
	return comment, nil
}
