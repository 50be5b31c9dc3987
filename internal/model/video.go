package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoCollection 视频集合名
const VideoCollection = "videos"

// 视频文档字段名。写入路径（bson tag）与查询路径（filter/sort）共用同一组常量，
// 字段名只写一份，避免查询侧拼错字段后悄悄返回未过滤结果。
const (
	VideoFieldOwner       = "owner"
	VideoFieldTitle       = "title"
	VideoFieldDescription = "description"
	VideoFieldThumbnail   = "thumbnail"
	VideoFieldVideoFile   = "videoFile"
	VideoFieldDuration    = "duration"
	VideoFieldViews       = "views"
	VideoFieldIsPublished = "isPublished"
	VideoFieldCreatedAt   = "createdAt"
	VideoFieldUpdatedAt   = "updatedAt"
)

// Video 视频文档模型
// VideoFile/Thumbnail 保存对象存储的访问 URL；文档只在两个资源都上传成功后才落库
type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	VideoFile   string             `bson:"videoFile" json:"video_file"`
	Thumbnail   string             `bson:"thumbnail" json:"thumbnail"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	IsPublished bool               `bson:"isPublished" json:"is_published"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
}
