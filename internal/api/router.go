package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"recipe-recommender/internal/api/handlers/health"
	recommendHandler "recipe-recommender/internal/api/handlers/recommend"
	"recipe-recommender/internal/api/middleware"
	"recipe-recommender/internal/core/artifact"
	"recipe-recommender/internal/core/cache"
	recommendService "recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
)

// SetupRouter 設置路由；artifacts 為 nil 時 /ready 回報未就緒，推薦請求回 500
func SetupRouter(cfg *config.Config, artifacts *artifact.Set, store cache.Store) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	tmpl, err := recommendHandler.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 設置超時並注入依賴
	timeout := cfg.Server.RequestTimeout
	router.Use(func(c *gin.Context) {
		if timeout > 0 {
			ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
			defer cancel()
			c.Request = c.Request.WithContext(ctx)
		}

		c.Set(health.ConfigKey, cfg)
		c.Set(health.ArtifactsKey, artifacts)
		if store != nil {
			c.Set(health.CacheKey, store)
		}

		c.Next()

		if c.Request.Context().Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			common.WriteErrorResponse(c, common.ErrGatewayTimeout, cfg.App.Debug)
		}
	})

	svc := recommendService.NewService(artifacts, cfg.Recommend, store)
	handler := recommendHandler.NewHandler(svc, recommendHandler.FormDefaults{
		Ingredients: recommendHandler.DefaultIngredients,
		TotalTime:   cfg.Recommend.DefaultTime,
		MaxTime:     cfg.Recommend.MaxTotalTime,
	}, cfg.App.Debug)

	// 頁面
	router.GET("/", handler.ShowPage)
	router.POST("/", handler.SubmitPage)

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由組
	api := router.Group("/api/v1")
	{
		recipes := api.Group("/recipes")
		recipes.POST("/recommend", middleware.Deduplication(cfg.DedupWindow), handler.HandleRecommend)
	}

	router.NoRoute(func(c *gin.Context) {
		common.WriteErrorResponse(c, common.ErrNotFound, false)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("artifacts_loaded", artifacts != nil),
		zap.Bool("cache_enabled", store != nil),
		zap.Int("top_k", svc.TopK()),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
