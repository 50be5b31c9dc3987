package dto

import "clipstream/internal/model"

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	FullName string `json:"fullName" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Avatar   string `json:"avatar" binding:"omitempty,url"`
}

// AuthData 注册/登录响应数据
type AuthData struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}
