package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-recommender/internal/pkg/common"
)

// dedupCache 請求指紋與最後一次出現的時間
type dedupCache struct {
	sync.Mutex
	requests  map[string]time.Time
	lastSweep time.Time
}

// sweep 清掉超過 10 倍窗口的指紋，呼叫端須持有鎖
func (d *dedupCache) sweep(now time.Time, window time.Duration) {
	if now.Sub(d.lastSweep) < 10*window {
		return
	}
	for k, t := range d.requests {
		if now.Sub(t) > 10*window {
			delete(d.requests, k)
		}
	}
	d.lastSweep = now
}

// Deduplication 相同 POST 在 window 內重複送出時回傳 429；window 為 0 時不做任何事
func Deduplication(window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	cache := &dedupCache{requests: make(map[string]time.Time), lastSweep: time.Now()}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}
			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		fingerprint := c.Request.Method + ":" + c.Request.URL.Path + ":" + c.ClientIP()
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		now := time.Now()
		cache.Lock()
		cache.sweep(now, window)
		if lastTime, exists := cache.requests[fingerprint]; exists && now.Sub(lastTime) <= window {
			cache.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "Request too frequent",
			})
			return
		}
		cache.requests[fingerprint] = now
		cache.Unlock()

		c.Next()
	}
}
