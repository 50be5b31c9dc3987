package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	infraES "clipstream/internal/infra/elasticsearch"
	"clipstream/internal/repository"
	"clipstream/pkg/apperr"
	"clipstream/pkg/logger"

	"go.uber.org/zap"
)

// SearchRequest 搜索请求参数
type SearchRequest struct {
	Keyword string
	Page    int64
	Limit   int64
}

// SearchResult 搜索结果
type SearchResult struct {
	Items []infraES.VideoDoc `json:"items"`
	Total int64              `json:"total"`
	Page  int64              `json:"page"`
	Limit int64              `json:"limit"`
}

type SearchService struct {
	videoRepo repository.VideoRepository
}

// NewSearchService 创建搜索服务
func NewSearchService(videoRepo repository.VideoRepository) *SearchService {
	return &SearchService{videoRepo: videoRepo}
}

// SearchVideos 搜索视频：ES 优先，不可用或失败时降级到文档库子串匹配
func (s *SearchService) SearchVideos(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if req.Page < 1 {
		req.Page = repository.DefaultPage
	}
	if req.Limit < 1 || req.Limit > repository.MaxLimit {
		req.Limit = repository.DefaultLimit
	}

	if infraES.Available() {
		result, err := s.searchFromES(ctx, req)
		if err == nil {
			return result, nil
		}
		logger.Warn("ES search failed, fallback to document store", zap.Error(err))
	}

	return s.searchFromDB(ctx, req)
}

func (s *SearchService) searchFromES(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	query := map[string]interface{}{
		"from": (req.Page - 1) * req.Limit,
		"size": req.Limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  req.Keyword,
						"fields": []string{"title^2", "description"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"is_published": true},
				},
			},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	resp, err := infraES.Search(ctx, infraES.VideoIndexName(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, fmt.Errorf("es search failed: %s", resp.String())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source infraES.VideoDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode es response: %w", err)
	}

	items := make([]infraES.VideoDoc, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, hit.Source)
	}

	return &SearchResult{
		Items: items,
		Total: parsed.Hits.Total.Value,
		Page:  req.Page,
		Limit: req.Limit,
	}, nil
}

func (s *SearchService) searchFromDB(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	query := repository.BuildVideoListQuery(repository.ListParams{
		Page:  req.Page,
		Limit: req.Limit,
		Query: req.Keyword,
	})

	videos, total, err := s.videoRepo.List(ctx, query)
	if err != nil {
		return nil, apperr.Persistence("failed to search videos", err)
	}

	items := make([]infraES.VideoDoc, 0, len(videos))
	for i := range videos {
		items = append(items, *infraES.VideoToDoc(&videos[i]))
	}

	return &SearchResult{
		Items: items,
		Total: total,
		Page:  req.Page,
		Limit: req.Limit,
	}, nil
}
