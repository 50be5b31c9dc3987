package handler

import (
	"clipstream/internal/api/dto"
	"clipstream/internal/api/response"
	"clipstream/internal/service"
	"clipstream/pkg/logger"
	"clipstream/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register POST /api/v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request parameters: "+err.Error())
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex())
	if err != nil {
		logger.Error("Generate token failed", zap.Error(err))
		response.InternalError(c, "failed to issue token")
		return
	}

	response.Created(c, "user registered successfully", dto.AuthData{
		User:  user,
		Token: token,
	})
}

// GetProfile GET /api/v1/users/:userId（公开）
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "user fetched successfully", user)
}
