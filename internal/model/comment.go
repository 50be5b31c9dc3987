package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentCollection 评论集合名
const CommentCollection = "comments"

// 评论文档字段名（与 Video 同理，查询侧与写入侧共用）
const (
	CommentFieldContent   = "content"
	CommentFieldVideo     = "video"
	CommentFieldOwner     = "owner"
	CommentFieldCreatedAt = "createdAt"
	CommentFieldUpdatedAt = "updatedAt"
)

// Comment 评论文档模型
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	Video     primitive.ObjectID `bson:"video" json:"video"`
	Owner     primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}

// OwnerSummary 评论作者的三字段投影
// 对外只暴露这三个字段，绝不返回完整用户文档；形状变更需要升版本
type OwnerSummary struct {
	Username string `bson:"username" json:"username"`
	FullName string `bson:"fullName" json:"full_name"`
	Avatar   string `bson:"avatar" json:"avatar"`
}

// CommentWithOwner 评论列表的聚合结果：评论 + 作者摘要
// owner 字段在 $lookup 后被作者摘要覆盖（原始 owner 引用不再单独返回）
type CommentWithOwner struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Content   string             `bson:"content" json:"content"`
	Video     primitive.ObjectID `bson:"video" json:"video"`
	Owner     OwnerSummary       `bson:"owner" json:"owner"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}
