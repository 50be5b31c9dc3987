package handler

import (
	"clipstream/internal/api/dto"
	"clipstream/internal/api/response"
	"clipstream/internal/service"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search GET /api/v1/search/videos（公开）
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	result, err := h.searchService.SearchVideos(c.Request.Context(), service.SearchRequest{
		Keyword: req.Keyword,
		Page:    req.Page,
		Limit:   req.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "search completed successfully", result)
}
