// Package recommend 食譜推薦的 HTML 頁面與 JSON API
package recommend

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	recommendService "recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/pkg/common"
)

// DefaultIngredients 表單預設的食材
const DefaultIngredients = "rice, brinjal"

//go:embed templates/*.html
var templateFS embed.FS

// Recommender 處理器所需的推薦服務
type Recommender interface {
	Query(ctx context.Context, ingredients string, totalTime int) (*recommendService.Result, error)
	Validate(ingredients string, totalTime int) error
	TopK() int
}

// FormDefaults 表單初始值與滑桿範圍
type FormDefaults struct {
	Ingredients string
	TotalTime   int
	MaxTime     int
}

// Page 頁面資料；Shown 為 false 時只顯示表單
type Page struct {
	Title       string
	Ingredients string
	TotalTime   int
	MaxTime     int
	TopK        int
	Error       string
	Shown       bool
	Results     []recipe.Display
}

// RecommendRequest JSON API 請求
type RecommendRequest struct {
	Ingredients string `json:"ingredients"`
	TotalTime   *int   `json:"total_time"`
}

// RecommendResponse JSON API 響應
type RecommendResponse struct {
	Query           string           `json:"query"`
	Count           int              `json:"count"`
	CacheHit        bool             `json:"cache_hit"`
	Recommendations []recipe.Display `json:"recommendations"`
}

// Handler 推薦處理器
type Handler struct {
	svc      Recommender
	defaults FormDefaults
	debug    bool
}

// NewHandler 創建推薦處理器
func NewHandler(svc Recommender, defaults FormDefaults, debug bool) *Handler {
	if defaults.MaxTime <= 0 {
		defaults.MaxTime = 120
	}
	return &Handler{svc: svc, defaults: defaults, debug: debug}
}

// Templates 解析內嵌的頁面模板
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"minutes": formatMinutes,
	}).ParseFS(templateFS, "templates/*.html")
}

func formatMinutes(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (h *Handler) page() Page {
	return Page{
		Title:       "Recipe Recommendation App",
		Ingredients: h.defaults.Ingredients,
		TotalTime:   h.defaults.TotalTime,
		MaxTime:     h.defaults.MaxTime,
		TopK:        h.svc.TopK(),
	}
}

// ShowPage 顯示空白表單
func (h *Handler) ShowPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.page())
}

// SubmitPage 處理表單送出，每次送出都以新結果取代舊結果
func (h *Handler) SubmitPage(c *gin.Context) {
	page := h.page()
	page.Ingredients = c.PostForm("ingredients")

	rawTime := strings.TrimSpace(c.DefaultPostForm("total_time", strconv.Itoa(h.defaults.TotalTime)))
	totalTime, err := strconv.Atoi(rawTime)
	if err != nil {
		page.Error = "total_time must be an integer"
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}
	page.TotalTime = totalTime

	if err := h.svc.Validate(page.Ingredients, totalTime); err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}

	res, err := h.svc.Query(c.Request.Context(), page.Ingredients, totalTime)
	if err != nil {
		common.LogError("推薦頁面查詢失敗",
			zap.Error(err),
			zap.String("request_id", common.RequestID(c)),
		)
		page.Error = "Failed to get recommendations"
		if h.debug {
			page.Error += ": " + err.Error()
		}
		c.HTML(common.StatusOf(err), "index.html", page)
		return
	}

	page.Shown = true
	page.Results = res.Recommendations
	c.HTML(http.StatusOK, "index.html", page)
}

// HandleRecommend JSON API
func (h *Handler) HandleRecommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorResponse(c, common.NewValidationError("invalid request body"), h.debug)
		return
	}

	totalTime := h.defaults.TotalTime
	if req.TotalTime != nil {
		totalTime = *req.TotalTime
	}

	if err := h.svc.Validate(req.Ingredients, totalTime); err != nil {
		common.WriteErrorResponse(c, err, h.debug)
		return
	}

	res, err := h.svc.Query(c.Request.Context(), req.Ingredients, totalTime)
	if err != nil {
		common.LogError("推薦 API 查詢失敗",
			zap.Error(err),
			zap.String("request_id", common.RequestID(c)),
		)
		common.WriteErrorResponse(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, RecommendResponse{
		Query:           res.Query,
		Count:           len(res.Recommendations),
		CacheHit:        res.CacheHit,
		Recommendations: res.Recommendations,
	})
}
