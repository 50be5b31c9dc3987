package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"clipstream/internal/config"
	"clipstream/internal/model"
	"clipstream/internal/repository"
	"clipstream/pkg/apperr"
	"clipstream/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout", ""); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeVideoRepo 内存实现，按需注入错误
type fakeVideoRepo struct {
	mu      sync.Mutex
	videos  map[primitive.ObjectID]*model.Video
	lastQ   repository.ListQuery
	listErr error
	getErr  error
	incErr  error
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: map[primitive.ObjectID]*model.Video{}}
}

func (r *fakeVideoRepo) put(v *model.Video) *model.Video {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videos[v.ID] = v
	return v
}

func (r *fakeVideoRepo) List(ctx context.Context, q repository.ListQuery) ([]model.Video, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQ = q
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	out := make([]model.Video, 0, len(r.videos))
	for _, v := range r.videos {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVideoRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	v, ok := r.videos[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *v
	return &copied, nil
}

func (r *fakeVideoRepo) Create(ctx context.Context, video *model.Video) error {
	if video.ID.IsZero() {
		video.ID = primitive.NewObjectID()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *video
	r.videos[video.ID] = &copied
	return nil
}

func (r *fakeVideoRepo) Update(ctx context.Context, id primitive.ObjectID, update repository.VideoUpdate) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if update.Title != nil {
		v.Title = *update.Title
	}
	if update.Description != nil {
		v.Description = *update.Description
	}
	if update.Thumbnail != nil {
		v.Thumbnail = *update.Thumbnail
	}
	copied := *v
	return &copied, nil
}

func (r *fakeVideoRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.videos, id)
	return nil
}

func (r *fakeVideoRepo) TogglePublished(ctx context.Context, id primitive.ObjectID) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	v.IsPublished = !v.IsPublished
	copied := *v
	return &copied, nil
}

func (r *fakeVideoRepo) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incErr != nil {
		return r.incErr
	}
	if v, ok := r.videos[id]; ok {
		v.Views++
	}
	return nil
}

func (r *fakeVideoRepo) EnsureIndexes(ctx context.Context) error { return nil }

// fakeCommentRepo 只关心视频服务用到的级联删除
type fakeCommentRepo struct {
	mu         sync.Mutex
	byVideo    map[primitive.ObjectID]int64
	deleteErr  error
	cascadedTo []primitive.ObjectID
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{byVideo: map[primitive.ObjectID]int64{}}
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byVideo[comment.Video]++
	return nil
}

func (r *fakeCommentRepo) ListForVideo(ctx context.Context, videoID primitive.ObjectID) ([]model.CommentWithOwner, error) {
	return []model.CommentWithOwner{}, nil
}

func (r *fakeCommentRepo) Update(ctx context.Context, id primitive.ObjectID, content string) (*model.Comment, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id primitive.ObjectID) (*model.Comment, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *fakeCommentRepo) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	n := r.byVideo[videoID]
	delete(r.byVideo, videoID)
	r.cascadedTo = append(r.cascadedTo, videoID)
	return n, nil
}

func (r *fakeCommentRepo) EnsureIndexes(ctx context.Context) error { return nil }

// fakeAssetStore 记录上传与删除调用，可按路径注入失败
type fakeAssetStore struct {
	mu        sync.Mutex
	uploaded  []string
	removed   []string
	failPaths map[string]error
	removeErr error
}

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{failPaths: map[string]error{}}
}

func (s *fakeAssetStore) Upload(ctx context.Context, localPath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failPaths[localPath]; err != nil {
		return "", err
	}
	url := "http://assets.local/bucket/" + localPath
	s.uploaded = append(s.uploaded, url)
	return url, nil
}

func (s *fakeAssetStore) Remove(ctx context.Context, rawURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removed = append(s.removed, rawURL)
	return nil
}

func newVideoServiceForTest(repo *fakeVideoRepo, comments *fakeCommentRepo, assets *fakeAssetStore, cfg *config.VideoConfig) *VideoService {
	if cfg == nil {
		cfg = &config.VideoConfig{}
	}
	return NewVideoService(repo, comments, assets, cfg, "")
}

func validPublishInput() PublishInput {
	return PublishInput{
		OwnerID:       primitive.NewObjectID(),
		Title:         "go concurrency patterns",
		Description:   "channels and pipelines",
		Duration:      318.5,
		VideoPath:     "video.mp4",
		ThumbnailPath: "thumb.jpg",
	}
}

func TestListRejectsInvalidUserID(t *testing.T) {
	svc := newVideoServiceForTest(newFakeVideoRepo(), newFakeCommentRepo(), newFakeAssetStore(), nil)

	_, _, err := svc.List(context.Background(), ListRequest{UserID: "not-a-hex-id"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListBuildsQueryFromRequest(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newVideoServiceForTest(repo, newFakeCommentRepo(), newFakeAssetStore(), nil)

	owner := primitive.NewObjectID()
	_, _, err := svc.List(context.Background(), ListRequest{
		Page:     3,
		Limit:    5,
		Query:    "golang",
		UserID:   owner.Hex(),
		SortBy:   model.VideoFieldViews,
		SortType: "desc",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), repo.lastQ.Skip)
	assert.Equal(t, int64(5), repo.lastQ.Limit)
	assert.Equal(t, "golang", repo.lastQ.Filter.Text)
	require.NotNil(t, repo.lastQ.Filter.OwnerID)
	assert.Equal(t, owner, *repo.lastQ.Filter.OwnerID)
}

func TestListEmptyResultIsSuccess(t *testing.T) {
	svc := newVideoServiceForTest(newFakeVideoRepo(), newFakeCommentRepo(), newFakeAssetStore(), nil)

	videos, total, err := svc.List(context.Background(), ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, videos)
	assert.Equal(t, int64(0), total)
}

func TestPublishValidation(t *testing.T) {
	repo := newFakeVideoRepo()
	assets := newFakeAssetStore()
	svc := newVideoServiceForTest(repo, newFakeCommentRepo(), assets, nil)

	cases := []struct {
		name   string
		mutate func(*PublishInput)
	}{
		{"missing title", func(in *PublishInput) { in.Title = "   " }},
		{"missing description", func(in *PublishInput) { in.Description = "" }},
		{"missing video file", func(in *PublishInput) { in.VideoPath = "" }},
		{"missing thumbnail", func(in *PublishInput) { in.ThumbnailPath = "" }},
		{"missing owner", func(in *PublishInput) { in.OwnerID = primitive.NilObjectID }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validPublishInput()
			tc.mutate(&in)

			_, err := svc.Publish(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}

	// 校验失败不应触碰对象存储，也不应落库
	assert.Empty(t, assets.uploaded)
	assert.Empty(t, repo.videos)
}

func TestPublishSuccess(t *testing.T) {
	repo := newFakeVideoRepo()
	assets := newFakeAssetStore()
	svc := newVideoServiceForTest(repo, newFakeCommentRepo(), assets, nil)

	in := validPublishInput()
	video, err := svc.Publish(context.Background(), in)
	require.NoError(t, err)

	assert.False(t, video.ID.IsZero())
	assert.Equal(t, in.OwnerID, video.Owner)
	assert.False(t, video.IsPublished)
	assert.Contains(t, video.VideoFile, "video.mp4")
	assert.Contains(t, video.Thumbnail, "thumb.jpg")
	assert.Len(t, assets.uploaded, 2)
	assert.Len(t, repo.videos, 1)
}

func TestPublishThumbnailFailureCleansUpVideoAsset(t *testing.T) {
	repo := newFakeVideoRepo()
	assets := newFakeAssetStore()
	assets.failPaths["thumb.jpg"] = errors.New("connection reset")
	svc := newVideoServiceForTest(repo, newFakeCommentRepo(), assets, nil)

	_, err := svc.Publish(context.Background(), validPublishInput())
	require.Error(t, err)

	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
	assert.False(t, apperr.IsCleanupFailed(err))
	assert.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(err))

	// 已上传的视频文件被补偿删除，文档库无残留
	require.Len(t, assets.removed, 1)
	assert.Contains(t, assets.removed[0], "video.mp4")
	assert.Empty(t, repo.videos)
}

func TestPublishCleanupFailureIsFlagged(t *testing.T) {
	repo := newFakeVideoRepo()
	assets := newFakeAssetStore()
	assets.failPaths["thumb.jpg"] = errors.New("connection reset")
	assets.removeErr = errors.New("remove timed out")
	svc := newVideoServiceForTest(repo, newFakeCommentRepo(), assets, nil)

	_, err := svc.Publish(context.Background(), validPublishInput())
	require.Error(t, err)

	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
	assert.True(t, apperr.IsCleanupFailed(err))
	assert.Empty(t, repo.videos)
}

func TestGetNotFound(t *testing.T) {
	svc := newVideoServiceForTest(newFakeVideoRepo(), newFakeCommentRepo(), newFakeAssetStore(), nil)

	_, err := svc.Get(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))
}

func TestGetIncrementsViews(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newVideoServiceForTest(repo, newFakeCommentRepo(), newFakeAssetStore(), nil)

	v := repo.put(&model.Video{Title: "t", Description: "d", Views: 41})

	got, err := svc.Get(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Views)
	assert.Equal(t, int64(42), repo.videos[v.ID].Views)
}

func TestGetSurvivesViewCounterFailure(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newVideoServiceForTest(repo, newFakeCommentRepo(), newFakeAssetStore(), nil)

	v := repo.put(&model.Video{Title: "t", Views: 7})
	repo.incErr = errors.New("write concern error")

	got, err := svc.Get(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Views)
}

func TestUpdateValidation(t *testing.T) {
	svc := newVideoServiceForTest(newFakeVideoRepo(), newFakeCommentRepo(), newFakeAssetStore(), nil)
	id := primitive.NewObjectID()

	_, err := svc.Update(context.Background(), id, UpdateInput{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	empty := "  "
	_, err = svc.Update(context.Background(), id, UpdateInput{Title: &empty})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateNotFound(t *testing.T) {
	svc := newVideoServiceForTest(newFakeVideoRepo(), newFakeCommentRepo(), newFakeAssetStore(), nil)

	title := "new title"
	_, err := svc.Update(context.Background(), primitive.NewObjectID(), UpdateInput{Title: &title})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateFields(t *testing.T) {
	repo := newFakeVideoRepo()
	assets := newFakeAssetStore()
	svc := newVideoServiceForTest(repo, newFakeCommentRepo(), assets, nil)

	v := repo.put(&model.Video{Title: "old", Description: "old desc", Thumbnail: "old.jpg"})

	title := "new title"
	got, err := svc.Update(context.Background(), v.ID, UpdateInput{Title: &title, ThumbnailPath: "new-thumb.jpg"})
	require.NoError(t, err)

	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, "old desc", got.Description)
	assert.Contains(t, got.Thumbnail, "new-thumb.jpg")
	assert.Len(t, assets.uploaded, 1)
}

func TestUpdateThumbnailUploadFailureLeavesDocumentUntouched(t *testing.T) {
	repo := newFakeVideoRepo()
	assets := newFakeAssetStore()
	assets.failPaths["new-thumb.jpg"] = errors.New("bucket unavailable")
	svc := newVideoServiceForTest(repo, newFakeCommentRepo(), assets, nil)

	v := repo.put(&model.Video{Title: "old", Thumbnail: "old.jpg"})

	title := "new title"
	_, err := svc.Update(context.Background(), v.ID, UpdateInput{Title: &title, ThumbnailPath: "new-thumb.jpg"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))

	assert.Equal(t, "old", repo.videos[v.ID].Title)
	assert.Equal(t, "old.jpg", repo.videos[v.ID].Thumbnail)
}

func TestDeleteNotFound(t *testing.T) {
	svc := newVideoServiceForTest(newFakeVideoRepo(), newFakeCommentRepo(), newFakeAssetStore(), nil)

	err := svc.Delete(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteWithoutCascadeKeepsComments(t *testing.T) {
	repo := newFakeVideoRepo()
	comments := newFakeCommentRepo()
	svc := newVideoServiceForTest(repo, comments, newFakeAssetStore(), &config.VideoConfig{CascadeComments: false})

	v := repo.put(&model.Video{Title: "t"})
	comments.byVideo[v.ID] = 3

	require.NoError(t, svc.Delete(context.Background(), v.ID))
	assert.Empty(t, repo.videos)
	assert.Equal(t, int64(3), comments.byVideo[v.ID])
	assert.Empty(t, comments.cascadedTo)
}

func TestDeleteWithCascadeRemovesComments(t *testing.T) {
	repo := newFakeVideoRepo()
	comments := newFakeCommentRepo()
	svc := newVideoServiceForTest(repo, comments, newFakeAssetStore(), &config.VideoConfig{CascadeComments: true})

	v := repo.put(&model.Video{Title: "t"})
	comments.byVideo[v.ID] = 3

	require.NoError(t, svc.Delete(context.Background(), v.ID))
	assert.Empty(t, repo.videos)
	assert.NotContains(t, comments.byVideo, v.ID)
	assert.Equal(t, []primitive.ObjectID{v.ID}, comments.cascadedTo)
}

func TestDeleteReportsCascadeFailure(t *testing.T) {
	repo := newFakeVideoRepo()
	comments := newFakeCommentRepo()
	comments.deleteErr = errors.New("network partition")
	svc := newVideoServiceForTest(repo, comments, newFakeAssetStore(), &config.VideoConfig{CascadeComments: true})

	v := repo.put(&model.Video{Title: "t"})

	err := svc.Delete(context.Background(), v.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	// 视频文档本身已删除
	assert.Empty(t, repo.videos)
}

func TestTogglePublishedFlips(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newVideoServiceForTest(repo, newFakeCommentRepo(), newFakeAssetStore(), nil)

	v := repo.put(&model.Video{Title: "t", IsPublished: false})

	got, err := svc.TogglePublished(context.Background(), v.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublished)

	got, err = svc.TogglePublished(context.Background(), v.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPublished)
}

func TestTogglePublishedNotFound(t *testing.T) {
	svc := newVideoServiceForTest(newFakeVideoRepo(), newFakeCommentRepo(), newFakeAssetStore(), nil)

	_, err := svc.TogglePublished(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// 对照实验：读-改-写式的翻转在并发交错下丢失更新
// 两次翻转本应回到初始状态，这里强制两个调用都先读旧值再写，最终状态被破坏
func TestNaiveReadModifyWriteLosesToggles(t *testing.T) {
	repo := newFakeVideoRepo()
	v := repo.put(&model.Video{Title: "t", IsPublished: false})

	var readsDone sync.WaitGroup
	readsDone.Add(2)

	naiveToggle := func() {
		repo.mu.Lock()
		cur := repo.videos[v.ID].IsPublished
		repo.mu.Unlock()

		readsDone.Done()
		readsDone.Wait()

		repo.mu.Lock()
		repo.videos[v.ID].IsPublished = !cur
		repo.mu.Unlock()
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			naiveToggle()
		}()
	}
	wg.Wait()

	// 偶数次翻转应当回到 false，丢失更新后停在 true
	assert.True(t, repo.videos[v.ID].IsPublished)
}

// 并发翻转 N 次，原子翻转保证最终状态只取决于 N 的奇偶
func TestTogglePublishedConcurrent(t *testing.T) {
	for _, n := range []int{10, 11} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			repo := newFakeVideoRepo()
			svc := newVideoServiceForTest(repo, newFakeCommentRepo(), newFakeAssetStore(), nil)

			v := repo.put(&model.Video{Title: "t", IsPublished: false})

			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := svc.TogglePublished(context.Background(), v.ID)
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			want := n%2 == 1
			assert.Equal(t, want, repo.videos[v.ID].IsPublished)
		})
	}
}
