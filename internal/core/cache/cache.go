// Package cache 推薦結果快取，支援程序內記憶體與 Redis 兩種後端
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
)

// Store 快取後端；未命中時回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Stats() map[string]interface{}
	Close() error
}

// New 依設定建立快取；停用時回傳 nil
func New(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}
	if cfg.Cache.RedisAddr != "" {
		store, err := NewRedisStore(cfg.Cache)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return NewManager(cfg.Cache), nil
}

// Key 由正規化查詢與 k 產生快取鍵
func Key(query string, k int) string {
	hash := sha256.Sum256([]byte(query))
	return fmt.Sprintf("recommend:%d:%s", k, hex.EncodeToString(hash[:]))
}
