package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recipe-recommender/internal/pkg/common"
)

// Source 開啟模型檔案
type Source interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// DefaultSource 本地路徑用 os.Open，http(s) URL 用 resty 下載
type DefaultSource struct {
	client *resty.Client
}

// NewDefaultSource 創建檔案來源
func NewDefaultSource(timeout time.Duration, retries int) *DefaultSource {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json, text/csv, */*")

	return &DefaultSource{client: client}
}

// Open 開啟檔案或下載遠端檔案
func (s *DefaultSource) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !isRemote(location) {
		return os.Open(location)
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(location)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
	}

	body := resp.RawBody()
	if resp.StatusCode() >= 400 {
		if body != nil {
			body.Close()
		}
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", location, resp.StatusCode())
	}

	common.LogInfo("遠端模型檔案已連線",
		zap.String("location", location),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("耗時", time.Since(start)),
	)
	return body, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
