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

// CommentRepository 评论文档的存取接口
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListForVideo(ctx context.Context, videoID primitive.ObjectID) ([]model.CommentWithOwner, error)
	Update(ctx context.Context, id primitive.ObjectID, content string) (*model.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*model.Comment, error)
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type commentRepository struct {
	coll *mongo.Collection
}

// NewCommentRepository 创建评论仓储
func NewCommentRepository(db *mongo.Database) CommentRepository {
	return &commentRepository{coll: db.Collection(model.CommentCollection)}
}

// EnsureIndexes 创建按视频查评论的索引
func (r *commentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: model.CommentFieldVideo, Value: 1}, {Key: model.CommentFieldCreatedAt, Value: -1}},
	})
	return err
}

// Create 插入评论文档
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, comment)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		comment.ID = oid
	}
	return nil
}

// ListForVideo 列出某视频的全部评论，单次聚合联表取作者摘要
// $lookup 的子管道固定投影 username/fullName/avatar 三个字段，完整用户文档不出库
func (r *commentRepository) ListForVideo(ctx context.Context, videoID primitive.ObjectID) ([]model.CommentWithOwner, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: model.CommentFieldVideo, Value: videoID},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: model.CommentFieldCreatedAt, Value: -1},
		}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: model.UserCollection},
			{Key: "localField", Value: model.CommentFieldOwner},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: model.CommentFieldOwner},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: bson.D{
					{Key: model.UserFieldUsername, Value: 1},
					{Key: model.UserFieldFullName, Value: 1},
					{Key: model.UserFieldAvatar, Value: 1},
				}}},
			}},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + model.CommentFieldOwner},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	comments := make([]model.CommentWithOwner, 0)
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Update 更新评论内容并返回更新后的文档
func (r *commentRepository) Update(ctx context.Context, id primitive.ObjectID, content string) (*model.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment model.Comment
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: model.CommentFieldContent, Value: content},
			{Key: model.CommentFieldUpdatedAt, Value: time.Now()},
		}}},
		opts,
	).Decode(&comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete 删除评论并返回删除前的文档
func (r *commentRepository) Delete(ctx context.Context, id primitive.ObjectID) (*model.Comment, error) {
	var comment model.Comment
	err := r.coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteByVideo 删除某视频的全部评论，返回删除条数（级联策略开启时使用）
func (r *commentRepository) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.D{{Key: model.CommentFieldVideo, Value: videoID}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
