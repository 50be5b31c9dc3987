package handler

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseObjectIDParam 解析路径参数中的文档 ID
func parseObjectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// saveUploadTemp 将 multipart 文件落到临时目录，返回本地路径
// 调用方负责在请求结束后清理
func saveUploadTemp(c *gin.Context, file *multipart.FileHeader) (string, error) {
	dir := filepath.Join(os.TempDir(), "clipstream-uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "*-"+filepath.Base(file.Filename))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	dst := f.Name()
	f.Close()

	if err := c.SaveUploadedFile(file, dst); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("save uploaded file: %w", err)
	}
	return dst, nil
}
