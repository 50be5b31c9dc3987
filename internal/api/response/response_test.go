package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipstream/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestOKEnvelope(t *testing.T) {
	c, w := setup()
	OK(c, "fetched", gin.H{"id": "abc"})

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(200), body["status"])
	assert.Equal(t, "fetched", body["message"])
	assert.Equal(t, "abc", body["data"].(map[string]interface{})["id"])
	assert.NotContains(t, body, "errors")
}

func TestFailEnvelopeHasErrorsArray(t *testing.T) {
	c, w := setup()
	BadRequest(c, "title is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(400), body["status"])
	assert.Equal(t, "title is required", body["message"])

	// errors 恒为数组，空时也序列化为 []
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, errs)
	assert.NotContains(t, body, "data")
}

func TestErrorMapsAppErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("bad"), http.StatusBadRequest},
		{"not found", apperr.NotFound("gone"), http.StatusNotFound},
		{"storage", apperr.Storage("upload failed", nil), http.StatusInternalServerError},
		{"persistence", apperr.Persistence("db down", nil), http.StatusInternalServerError},
		{"unclassified", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := setup()
			Error(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestErrorFlagsCleanupFailure(t *testing.T) {
	c, w := setup()
	Error(c, apperr.StorageCleanupFailed("orphan left behind", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	assert.Contains(t, body.Errors[0], "cleanup failed")
}
