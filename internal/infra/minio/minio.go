package minio

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"clipstream/internal/config"
	"clipstream/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var client *minio.Client

// Init 初始化 MinIO 客户端并确保 Bucket 存在
func Init(cfg *config.MinIOConfig) error {
	var err error
	client, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("MinIO bucket created", zap.String("bucket", cfg.Bucket))
	}

	// 资源 URL 直接写进视频文档供前端访问，bucket 需要公开读
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, cfg.Bucket)
	if err := client.SetBucketPolicy(ctx, cfg.Bucket, policy); err != nil {
		return fmt.Errorf("failed to set public policy for %s: %w", cfg.Bucket, err)
	}

	logger.Info("MinIO connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)

	return nil
}

// Get 获取 MinIO 客户端实例
func Get() *minio.Client {
	return client
}

// AssetStore 对象存储适配器：本地文件路径 -> 可访问 URL
// 单次调用，无重试、无幂等键；失败直接上抛给调用方
type AssetStore struct {
	endpoint string
	bucket   string
	useSSL   bool
}

// NewAssetStore 创建对象存储适配器
func NewAssetStore(cfg *config.MinIOConfig) *AssetStore {
	return &AssetStore{
		endpoint: cfg.Endpoint,
		bucket:   cfg.Bucket,
		useSSL:   cfg.UseSSL,
	}
}

// Upload 上传本地文件，返回公开访问 URL
func (s *AssetStore) Upload(ctx context.Context, localPath string) (string, error) {
	objectName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(localPath))

	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := client.FPutObject(ctx, s.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to minio: %w", localPath, err)
	}

	return s.publicURL(objectName), nil
}

// Remove 按 URL 删除对象，用于第二个资源上传失败后的补偿删除
func (s *AssetStore) Remove(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse asset url %s: %w", rawURL, err)
	}

	objectName := strings.TrimPrefix(u.Path, "/"+s.bucket+"/")
	if objectName == "" || objectName == u.Path {
		return fmt.Errorf("asset url %s does not belong to bucket %s", rawURL, s.bucket)
	}

	if err := client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s from minio: %w", objectName, err)
	}
	return nil
}

func (s *AssetStore) publicURL(objectName string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, s.endpoint, path.Join(s.bucket, objectName))
}
