package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCollection 用户集合名
const UserCollection = "users"

// 用户文档字段名
const (
	UserFieldUsername = "username"
	UserFieldFullName = "fullName"
	UserFieldAvatar   = "avatar"
)

// User 用户身份文档
// 评论列表的 $lookup 目标集合；Password 序列化时忽略
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	FullName  string             `bson:"fullName" json:"full_name"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	Password  string             `bson:"password" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}

// Summary 返回用户的三字段投影
func (u *User) Summary() OwnerSummary {
	return OwnerSummary{
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}
