package service

import (
	"context"
	"errors"
	"strings"

	"clipstream/internal/model"
	"clipstream/internal/repository"
	"clipstream/pkg/apperr"
	"clipstream/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterInput 用户注册输入
type RegisterInput struct {
	Username string
	FullName string
	Password string
	Avatar   string
}

type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register 注册用户身份（评论作者联表查询的目标集合）
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.FullName) == "" {
		return nil, apperr.Validation("username and full name are required")
	}
	if len(in.Password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Persistence("failed to hash password", err)
	}

	user := &model.User{
		Username: strings.ToLower(strings.TrimSpace(in.Username)),
		FullName: strings.TrimSpace(in.FullName),
		Avatar:   in.Avatar,
		Password: hash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Validation("username already taken")
		}
		return nil, apperr.Persistence("failed to create user", err)
	}
	return user, nil
}

// GetProfile 获取用户公开信息
func (s *UserService) GetProfile(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Persistence("failed to fetch user", err)
	}
	return user, nil
}
