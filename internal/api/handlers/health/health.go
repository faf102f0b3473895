package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-recommender/internal/core/artifact"
	"recipe-recommender/internal/core/cache"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
)

// context 中的鍵，由路由注入
const (
	ConfigKey    = "config"
	ArtifactsKey = "artifacts"
	CacheKey     = "cache"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Artifacts *ArtifactStatus        `json:"artifacts,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// ArtifactStatus 模型檔案狀態
type ArtifactStatus struct {
	Rows       int  `json:"rows"`
	Dimensions int  `json:"dimensions"`
	RowIDs     bool `json:"row_ids"`
}

func artifactStatus(c *gin.Context) *ArtifactStatus {
	v, ok := c.Get(ArtifactsKey)
	if !ok {
		return nil
	}
	set, ok := v.(*artifact.Set)
	if !ok || set == nil || set.Index == nil || set.Dataset == nil {
		return nil
	}
	return &ArtifactStatus{
		Rows:       set.Dataset.Len(),
		Dimensions: set.Index.Dim(),
		RowIDs:     set.Dataset.HasRowIDs(),
	}
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	// 獲取配置
	cfg, exists := c.Get(ConfigKey)
	if !exists {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Configuration not found",
		})
		return
	}
	conf, ok := cfg.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid configuration type",
		})
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   conf.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Artifacts: artifactStatus(c),
	}

	if v, ok := c.Get(CacheKey); ok {
		if store, ok := v.(cache.Store); ok && store != nil {
			response.Cache = store.Stats()
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，模型檔案載入後才算就緒
func ReadinessCheck(c *gin.Context) {
	status := artifactStatus(c)
	if status == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"code":   common.ErrArtifactsNotLoaded.Code,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"rows":   status.Rows,
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
