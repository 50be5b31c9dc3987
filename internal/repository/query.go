package repository

import (
	"regexp"

	"clipstream/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 分页默认值；非法输入一律钳制回默认值，绝不产生负偏移
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// 排序字段白名单，白名单外的 sortBy 按未指定处理
var allowedSortFields = map[string]bool{
	model.VideoFieldTitle:       true,
	model.VideoFieldDescription: true,
	model.VideoFieldDuration:    true,
	model.VideoFieldViews:       true,
	model.VideoFieldCreatedAt:   true,
}

// ListParams 视频列表的原始请求参数
type ListParams struct {
	Page     int64
	Limit    int64
	Query    string
	OwnerID  *primitive.ObjectID
	SortBy   string
	SortType string
}

// VideoFilter 显式的过滤规格：按作者、按标题/描述子串，或两者组合
// 过滤文档只能由它生成，不允许在调用方拼散的 bson.M
type VideoFilter struct {
	OwnerID *primitive.ObjectID
	Text    string
}

// Document 生成 MongoDB 过滤文档
// 文本匹配是大小写不敏感的子串匹配，作用于 title 与 description 的逻辑 OR
func (f VideoFilter) Document() bson.D {
	filter := bson.D{}

	if f.OwnerID != nil {
		filter = append(filter, bson.E{Key: model.VideoFieldOwner, Value: *f.OwnerID})
	}

	if f.Text != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Text), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: model.VideoFieldTitle, Value: pattern}},
			bson.D{{Key: model.VideoFieldDescription, Value: pattern}},
		}})
	}

	return filter
}

// ListQuery 解析后的列表查询规格：过滤 + 排序 + 分页窗口
type ListQuery struct {
	Filter VideoFilter
	Sort   bson.D
	Skip   int64
	Limit  int64
}

// BuildVideoListQuery 将请求参数翻译成查询规格，纯函数、无副作用
// sortBy 与 sortType 必须同时出现才生效，sortType 为 "desc" 降序、其余一律升序；
// 未指定排序时按创建时间降序，保证窗口是确定的
func BuildVideoListQuery(p ListParams) ListQuery {
	page := p.Page
	if page < 1 {
		page = DefaultPage
	}

	limit := p.Limit
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	sort := bson.D{{Key: model.VideoFieldCreatedAt, Value: -1}}
	if p.SortBy != "" && p.SortType != "" && allowedSortFields[p.SortBy] {
		order := 1
		if p.SortType == "desc" {
			order = -1
		}
		sort = bson.D{{Key: p.SortBy, Value: order}}
	}

	return ListQuery{
		Filter: VideoFilter{OwnerID: p.OwnerID, Text: p.Query},
		Sort:   sort,
		Skip:   (page - 1) * limit,
		Limit:  limit,
	}
}
