package repository

import (
	"reflect"
	"strings"
	"testing"

	"clipstream/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildVideoListQueryDefaults(t *testing.T) {
	q := BuildVideoListQuery(ListParams{})

	assert.Equal(t, int64(0), q.Skip)
	assert.Equal(t, int64(DefaultLimit), q.Limit)
	assert.Equal(t, bson.D{{Key: model.VideoFieldCreatedAt, Value: -1}}, q.Sort)
	assert.Empty(t, q.Filter.Document())
}

func TestBuildVideoListQueryClampsPagination(t *testing.T) {
	cases := []struct {
		name      string
		page      int64
		limit     int64
		wantSkip  int64
		wantLimit int64
	}{
		{"negative page", -3, 10, 0, 10},
		{"zero page", 0, 10, 0, 10},
		{"negative limit", 2, -1, 10, 10},
		{"zero limit", 2, 0, 10, 10},
		{"limit above cap", 1, MaxLimit + 1, 0, DefaultLimit},
		{"valid window", 3, 20, 40, 20},
		{"limit at cap", 2, MaxLimit, MaxLimit, MaxLimit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := BuildVideoListQuery(ListParams{Page: tc.page, Limit: tc.limit})
			assert.Equal(t, tc.wantSkip, q.Skip)
			assert.Equal(t, tc.wantLimit, q.Limit)
			assert.GreaterOrEqual(t, q.Skip, int64(0))
		})
	}
}

func TestBuildVideoListQuerySort(t *testing.T) {
	// sortBy 与 sortType 必须同时出现才生效
	q := BuildVideoListQuery(ListParams{SortBy: model.VideoFieldViews})
	assert.Equal(t, bson.D{{Key: model.VideoFieldCreatedAt, Value: -1}}, q.Sort)

	q = BuildVideoListQuery(ListParams{SortType: "desc"})
	assert.Equal(t, bson.D{{Key: model.VideoFieldCreatedAt, Value: -1}}, q.Sort)

	q = BuildVideoListQuery(ListParams{SortBy: model.VideoFieldViews, SortType: "desc"})
	assert.Equal(t, bson.D{{Key: model.VideoFieldViews, Value: -1}}, q.Sort)

	// desc 以外的取值一律升序
	q = BuildVideoListQuery(ListParams{SortBy: model.VideoFieldTitle, SortType: "asc"})
	assert.Equal(t, bson.D{{Key: model.VideoFieldTitle, Value: 1}}, q.Sort)

	q = BuildVideoListQuery(ListParams{SortBy: model.VideoFieldDuration, SortType: "whatever"})
	assert.Equal(t, bson.D{{Key: model.VideoFieldDuration, Value: 1}}, q.Sort)

	// 白名单外的字段按未指定处理
	q = BuildVideoListQuery(ListParams{SortBy: "owner", SortType: "desc"})
	assert.Equal(t, bson.D{{Key: model.VideoFieldCreatedAt, Value: -1}}, q.Sort)

	q = BuildVideoListQuery(ListParams{SortBy: "videoFile; drop collection", SortType: "desc"})
	assert.Equal(t, bson.D{{Key: model.VideoFieldCreatedAt, Value: -1}}, q.Sort)
}

func TestVideoFilterDocument(t *testing.T) {
	owner := primitive.NewObjectID()

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, VideoFilter{}.Document())
	})

	t.Run("owner only", func(t *testing.T) {
		doc := VideoFilter{OwnerID: &owner}.Document()
		require.Len(t, doc, 1)
		assert.Equal(t, model.VideoFieldOwner, doc[0].Key)
		assert.Equal(t, owner, doc[0].Value)
	})

	t.Run("text only", func(t *testing.T) {
		doc := VideoFilter{Text: "gopher"}.Document()
		require.Len(t, doc, 1)
		assert.Equal(t, "$or", doc[0].Key)

		branches, ok := doc[0].Value.(bson.A)
		require.True(t, ok)
		require.Len(t, branches, 2)

		title := branches[0].(bson.D)
		assert.Equal(t, model.VideoFieldTitle, title[0].Key)
		desc := branches[1].(bson.D)
		assert.Equal(t, model.VideoFieldDescription, desc[0].Key)

		re := title[0].Value.(primitive.Regex)
		assert.Equal(t, "gopher", re.Pattern)
		assert.Equal(t, "i", re.Options)
	})

	t.Run("combined", func(t *testing.T) {
		doc := VideoFilter{OwnerID: &owner, Text: "go"}.Document()
		require.Len(t, doc, 2)
		assert.Equal(t, model.VideoFieldOwner, doc[0].Key)
		assert.Equal(t, "$or", doc[1].Key)
	})

	t.Run("regex metacharacters are escaped", func(t *testing.T) {
		doc := VideoFilter{Text: "c++ (tutorial).mp4"}.Document()
		branches := doc[0].Value.(bson.A)
		re := branches[0].(bson.D)[0].Value.(primitive.Regex)
		assert.NotContains(t, re.Pattern, "c++")
		assert.Contains(t, re.Pattern, `c\+\+`)
	})
}

// 排序白名单与过滤路径引用的字段名必须和文档的 bson tag 一致
func TestFieldConstantsMatchBSONTags(t *testing.T) {
	tags := map[string]bool{}
	typ := reflect.TypeOf(model.Video{})
	for i := 0; i < typ.NumField(); i++ {
		tag := strings.Split(typ.Field(i).Tag.Get("bson"), ",")[0]
		if tag != "" && tag != "-" {
			tags[tag] = true
		}
	}

	for field := range allowedSortFields {
		assert.Truef(t, tags[field], "sort field %q has no matching bson tag", field)
	}
	assert.True(t, tags[model.VideoFieldOwner])
	assert.True(t, tags[model.VideoFieldTitle])
	assert.True(t, tags[model.VideoFieldDescription])
	assert.True(t, tags[model.VideoFieldIsPublished])
}
