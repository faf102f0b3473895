package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recommendHandler "recipe-recommender/internal/api/handlers/recommend"
	"recipe-recommender/internal/core/artifact"
	"recipe-recommender/internal/core/cache"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestRouterWith(t, func(*config.Config) {})
}

func newTestRouterWith(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()
	cfg := config.Default()
	cfg.App.Debug = false
	cfg.RateLimit.Enabled = false
	mutate(cfg)

	set, err := artifact.Load(context.Background(), testutil.WriteArtifacts(t), nil)
	require.NoError(t, err)

	store := cache.NewManager(cfg.Cache)
	t.Cleanup(func() { _ = store.Close() })

	router, err := SetupRouter(cfg, set, store)
	require.NoError(t, err)
	return router
}

func postForm(router *gin.Engine, ingredients, totalTime string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("ingredients", ingredients)
	form.Set("total_time", totalTime)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIndexPageIdle(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Recipe Recommendation App")
	assert.Contains(t, body, "Enter Ingredients (comma-separated)")
	assert.Contains(t, body, "Enter Total Time (minutes)")
	assert.Contains(t, body, "rice, brinjal")
	assert.Contains(t, body, `value="60"`)
	assert.Contains(t, body, "Get Recommendations")
	assert.Contains(t, body, "How it Works")
	assert.NotContains(t, body, "Similar to Your Input")
	assert.NotContains(t, body, "recipe-block")
}

func TestSubmitReplacesPreviousResults(t *testing.T) {
	router := newTestRouter(t)

	first := postForm(router, "rice, brinjal", "60")
	require.Equal(t, http.StatusOK, first.Code)
	body := first.Body.String()
	assert.Contains(t, body, "Top 10 Recipes Similar to Your Input:")
	assert.Contains(t, body, "1. <strong>Brinjal Rice</strong>")
	assert.Equal(t, 3, strings.Count(body, `class="recipe-block"`))
	assert.Contains(t, body, "<strong>Total Time:</strong> 60 minutes")
	assert.Contains(t, body, "<strong>Serving:</strong> 4")

	second := postForm(router, "chicken curry", "30")
	require.Equal(t, http.StatusOK, second.Code)
	body = second.Body.String()
	assert.Contains(t, body, "1. <strong>Chicken Curry</strong>")
	assert.NotContains(t, body, "1. <strong>Brinjal Rice</strong>")
	assert.Equal(t, 3, strings.Count(body, `class="recipe-block"`))
	assert.Contains(t, body, `value="30"`)
}

func TestSubmitRejectsTimeOutOfRange(t *testing.T) {
	router := newTestRouter(t)

	for _, v := range []string{"121", "-1", "abc"} {
		w := postForm(router, "rice", v)
		assert.Equal(t, http.StatusBadRequest, w.Code, v)
		assert.Contains(t, w.Body.String(), `class="error"`, v)
		assert.NotContains(t, w.Body.String(), "recipe-block", v)
	}
}

func TestRecommendAPI(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(map[string]interface{}{"ingredients": "Rice, Brinjal", "total_time": 60})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/recommend", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp recommendHandler.RecommendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rice brinjal 60 minut", resp.Query)
	assert.Equal(t, 3, resp.Count)
	require.Len(t, resp.Recommendations, 3)
	assert.Equal(t, "Brinjal Rice", resp.Recommendations[0].RecipeName)
	assert.Equal(t, 1, resp.Recommendations[0].Rank)
}

func TestRecommendAPIValidation(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/recommend", strings.NewReader(`{"ingredients":"rice","total_time":500}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func sendRecommendJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/recommend", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRecommendAPIRepeatedRequestsAreIndependent(t *testing.T) {
	router := newTestRouter(t)

	first := sendRecommendJSON(router, `{"ingredients":"rice"}`)
	second := sendRecommendJSON(router, `{"ingredients":"rice"}`)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b recommendHandler.RecommendResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.Recommendations, b.Recommendations)
}

func TestRecommendAPIDeduplicatesWhenEnabled(t *testing.T) {
	router := newTestRouterWith(t, func(c *config.Config) { c.DedupWindow = time.Minute })

	assert.Equal(t, http.StatusOK, sendRecommendJSON(router, `{"ingredients":"rice"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, sendRecommendJSON(router, `{"ingredients":"rice"}`).Code)
}

func TestRecommendAPIAcceptsLongIngredients(t *testing.T) {
	router := newTestRouter(t)

	long := strings.Repeat("rice, brinjal, ", 400)
	body, _ := json.Marshal(map[string]interface{}{"ingredients": long, "total_time": 60})
	w := sendRecommendJSON(router, string(body))

	require.Equal(t, http.StatusOK, w.Code)
	var resp recommendHandler.RecommendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Brinjal Rice", resp.Recommendations[0].RecipeName)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	artifacts, ok := resp["artifacts"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), artifacts["rows"])
}

func TestNotReadyWithoutArtifacts(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	router, err := SetupRouter(cfg, nil, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = postForm(router, "rice", "60")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSetupRouterRequiresConfig(t *testing.T) {
	_, err := SetupRouter(nil, nil, nil)
	assert.Error(t, err)
}
