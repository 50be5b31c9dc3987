package repository

import (
	"context"
	"time"

	"clipstream/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VideoUpdate 视频可变字段的部分更新，nil 字段不写
type VideoUpdate struct {
	Title       *string
	Description *string
	Thumbnail   *string
}

// VideoRepository 视频文档的存取接口
// 未命中统一返回 mongo.ErrNoDocuments，由上层翻译成业务错误
type VideoRepository interface {
	List(ctx context.Context, q ListQuery) ([]model.Video, int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Video, error)
	Create(ctx context.Context, video *model.Video) error
	Update(ctx context.Context, id primitive.ObjectID, update VideoUpdate) (*model.Video, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	TogglePublished(ctx context.Context, id primitive.ObjectID) (*model.Video, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type videoRepository struct {
	coll *mongo.Collection
}

// NewVideoRepository 创建视频仓储
func NewVideoRepository(db *mongo.Database) VideoRepository {
	return &videoRepository{coll: db.Collection(model.VideoCollection)}
}

// EnsureIndexes 创建查询路径依赖的索引
func (r *videoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: model.VideoFieldOwner, Value: 1}, {Key: model.VideoFieldCreatedAt, Value: -1}}},
		{Keys: bson.D{{Key: model.VideoFieldCreatedAt, Value: -1}}},
	})
	return err
}

// List 按查询规格列出视频，空结果返回空切片而非错误
func (r *videoRepository) List(ctx context.Context, q ListQuery) ([]model.Video, int64, error) {
	filter := q.Filter.Document()

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(q.Sort).
		SetSkip(q.Skip).
		SetLimit(q.Limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	videos := make([]model.Video, 0, q.Limit)
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// GetByID 根据 ID 获取视频
func (r *videoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Video, error) {
	var video model.Video
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&video); err != nil {
		return nil, err
	}
	return &video, nil
}

// Create 插入视频文档
func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	now := time.Now()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, video)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		video.ID = oid
	}
	return nil
}

// Update 部分更新并返回更新后的文档
func (r *videoRepository) Update(ctx context.Context, id primitive.ObjectID, update VideoUpdate) (*model.Video, error) {
	set := bson.D{}
	if update.Title != nil {
		set = append(set, bson.E{Key: model.VideoFieldTitle, Value: *update.Title})
	}
	if update.Description != nil {
		set = append(set, bson.E{Key: model.VideoFieldDescription, Value: *update.Description})
	}
	if update.Thumbnail != nil {
		set = append(set, bson.E{Key: model.VideoFieldThumbnail, Value: *update.Thumbnail})
	}
	set = append(set, bson.E{Key: model.VideoFieldUpdatedAt, Value: time.Now()})

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video model.Video
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&video)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// Delete 删除视频文档，未命中返回 mongo.ErrNoDocuments
func (r *videoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// TogglePublished 单条原子翻转发布标志并返回翻转后的文档
// 用聚合管道更新代替取出-改-存回，并发翻转不会丢更新
func (r *videoRepository) TogglePublished(ctx context.Context, id primitive.ObjectID) (*model.Video, error) {
	pipeline := bson.A{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: model.VideoFieldIsPublished, Value: bson.D{
				{Key: "$not", Value: bson.A{"$" + model.VideoFieldIsPublished}},
			}},
			{Key: model.VideoFieldUpdatedAt, Value: "$$NOW"},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video model.Video
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, pipeline, opts).Decode(&video)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// IncrementViews 观看数原子 +1
func (r *videoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: model.VideoFieldViews, Value: 1}}}},
	)
	return err
}
