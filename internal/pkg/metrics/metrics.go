// Package metrics 推薦服務的 Prometheus 指標
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationsTotal 推薦查詢次數，依結果分類
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_recommendations_total",
			Help: "Total number of recommendation queries",
		},
		[]string{"outcome"},
	)

	// RecommendationDuration 推薦查詢耗時
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_recommendation_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// CacheLookupsTotal 結果快取查詢次數
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_recommendation_cache_lookups_total",
			Help: "Total number of recommendation cache lookups",
		},
		[]string{"result"},
	)

	// ArtifactRows 已載入資料集的列數
	ArtifactRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipe_artifact_rows",
			Help: "Number of recipe rows in the loaded dataset",
		},
	)
)

// RecordRecommendation 記錄一次推薦查詢
func RecordRecommendation(err error, duration time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordCacheHit 記錄快取命中
func RecordCacheHit() {
	CacheLookupsTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss 記錄快取未命中
func RecordCacheMiss() {
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}
