package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别，决定对外的 HTTP 状态码
type Kind int

const (
	// KindValidation 调用方输入缺失或非法 -> 400
	KindValidation Kind = iota + 1
	// KindNotFound 引用的实体不存在 -> 404
	KindNotFound
	// KindStorage 外部对象存储上传/删除失败 -> 500
	KindStorage
	// KindPersistence 底层文档库操作失败 -> 500
	KindPersistence
)

// Error 带类别的业务错误
// CleanupFailed 仅对 KindStorage 有意义：第二个资源上传失败后，
// 对第一个已上传资源的补偿删除也失败了（存储里残留了孤儿对象）
type Error struct {
	Kind          Kind
	Message       string
	CleanupFailed bool
	Err           error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation 构造调用方输入错误
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound 构造实体不存在错误
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Storage 构造对象存储错误
func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// StorageCleanupFailed 构造补偿删除也失败的存储错误
func StorageCleanupFailed(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, CleanupFailed: true, Err: err}
}

// Persistence 构造文档库错误
func Persistence(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf 取出错误类别；非 *Error 一律按 KindPersistence 处理
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// HTTPStatus 类别到 HTTP 状态码的统一映射
// NotFound 固定 404，不再按操作各自返回 400/500
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsCleanupFailed 补偿删除是否失败
func IsCleanupFailed(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.CleanupFailed
}
