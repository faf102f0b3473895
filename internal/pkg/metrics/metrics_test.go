package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRecommendation(t *testing.T) {
	okBefore := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("error"))

	RecordRecommendation(nil, time.Millisecond)
	RecordRecommendation(errors.New("boom"), time.Millisecond)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(RecommendationsTotal.WithLabelValues("ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(RecommendationsTotal.WithLabelValues("error")))
}

func TestRecordCache(t *testing.T) {
	hits := testutil.ToFloat64(CacheLookupsTotal.WithLabelValues("hit"))
	RecordCacheHit()
	RecordCacheMiss()
	assert.Equal(t, hits+1, testutil.ToFloat64(CacheLookupsTotal.WithLabelValues("hit")))
}
