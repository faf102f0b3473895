// Package recommend 以查詢字串在向量空間中找出最相近的食譜
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"recipe-recommender/internal/core/artifact"
	"recipe-recommender/internal/core/cache"
	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/core/text"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
	"recipe-recommender/internal/pkg/metrics"
)

// DefaultTopK 預設回傳筆數
const DefaultTopK = 10

// Result 一次推薦的結果
type Result struct {
	Query           string           `json:"query"`
	Recommendations []recipe.Display `json:"recommendations"`
	CacheHit        bool             `json:"cache_hit"`
}

// Service 推薦服務；artifacts 唯讀，可被多個 goroutine 同時使用
type Service struct {
	artifacts *artifact.Set
	cache     cache.Store
	topK      int
	limits    config.RecommendConfig
}

// NewService 創建推薦服務，store 可為 nil
func NewService(artifacts *artifact.Set, cfg config.RecommendConfig, store cache.Store) *Service {
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{
		artifacts: artifacts,
		cache:     store,
		topK:      topK,
		limits:    cfg,
	}
}

// TopK 設定的回傳筆數上限
func (s *Service) TopK() int {
	return s.topK
}

// Validate 檢查使用者輸入
func (s *Service) Validate(ingredients string, totalTime int) error {
	maxTime := s.limits.MaxTotalTime
	if maxTime <= 0 {
		maxTime = 120
	}
	if totalTime < 0 || totalTime > maxTime {
		return common.NewValidationError(fmt.Sprintf("total_time must be between 0 and %d", maxTime))
	}
	if s.limits.MaxIngredients > 0 && utf8.RuneCountInString(ingredients) > s.limits.MaxIngredients {
		return common.NewValidationError(fmt.Sprintf("ingredients must be at most %d characters", s.limits.MaxIngredients))
	}
	return nil
}

// Recommend 回傳依距離由近到遠排序、最多 TopK 筆的食譜
func (s *Service) Recommend(ctx context.Context, ingredients string, totalTime int) ([]recipe.Display, error) {
	res, err := s.Query(ctx, ingredients, totalTime)
	if err != nil {
		return nil, err
	}
	return res.Recommendations, nil
}

// Query 與 Recommend 相同，另外回傳正規化後的查詢字串
func (s *Service) Query(ctx context.Context, ingredients string, totalTime int) (*Result, error) {
	start := time.Now()
	query := text.Normalize(ingredients, totalTime)

	res, err := s.query(ctx, query)
	duration := time.Since(start)

	metrics.RecordRecommendation(err, duration)
	if err != nil {
		common.LogRecommendation(query, 0, duration, err)
		return nil, err
	}
	common.LogRecommendation(query, len(res.Recommendations), duration, nil)
	return res, nil
}

func (s *Service) query(ctx context.Context, query string) (*Result, error) {
	if s == nil || s.artifacts == nil || s.artifacts.Index == nil || s.artifacts.Vectorizer == nil || s.artifacts.Dataset == nil {
		return nil, common.ErrArtifactsNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cache.Key(query, s.topK)
	if cached, ok := s.fromCache(ctx, key); ok {
		return &Result{Query: query, Recommendations: cached, CacheHit: true}, nil
	}

	vec, err := s.artifacts.Vectorizer.Transform(query)
	if err != nil {
		return nil, fmt.Errorf("failed to vectorize query: %w", err)
	}

	neighbors, err := s.artifacts.Index.KNeighbors(vec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("nearest neighbor query failed: %w", err)
	}

	out := make([]recipe.Display, 0, len(neighbors))
	for i, n := range neighbors {
		rec, err := s.artifacts.Dataset.At(n.Row)
		if err != nil {
			return nil, common.ErrIndexMisaligned.Wrap(err)
		}
		out = append(out, rec.ToDisplay(i+1, n.Distance))
	}

	s.toCache(ctx, key, out)
	return &Result{Query: query, Recommendations: out}, nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]recipe.Display, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取推薦快取失敗", zap.Error(err))
		}
		metrics.RecordCacheMiss()
		return nil, false
	}

	var out []recipe.Display
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		common.LogWarn("推薦快取內容無法解析", zap.Error(err))
		metrics.RecordCacheMiss()
		return nil, false
	}
	metrics.RecordCacheHit()
	return out, true
}

func (s *Service) toCache(ctx context.Context, key string, results []recipe.Display) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		common.LogWarn("推薦結果序列化失敗", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(raw)); err != nil {
		common.LogWarn("寫入推薦快取失敗", zap.Error(err))
	}
}
