package response

import (
	"net/http"

	"clipstream/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Response 统一成功响应
type Response struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// ErrorResponse 统一错误响应
type ErrorResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status:  http.StatusOK,
		Data:    data,
		Message: message,
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Status:  http.StatusCreated,
		Data:    data,
		Message: message,
	})
}

func Fail(c *gin.Context, statusCode int, message string, details ...string) {
	errs := details
	if errs == nil {
		errs = []string{}
	}
	c.JSON(statusCode, ErrorResponse{
		Status:  statusCode,
		Message: message,
		Errors:  errs,
	})
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message)
}

// Error 将业务错误映射为对应状态码的错误响应
func Error(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	var details []string
	if apperr.IsCleanupFailed(err) {
		details = append(details, "asset cleanup failed, orphaned object may remain in storage")
	}
	Fail(c, status, err.Error(), details...)
}
