package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-recommender/internal/core/artifact"
	"recipe-recommender/internal/core/cache"
	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/core/vector"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
	"recipe-recommender/internal/testutil"
)

func loadFixture(t *testing.T) *artifact.Set {
	t.Helper()
	set, err := artifact.Load(context.Background(), testutil.WriteArtifacts(t), nil)
	require.NoError(t, err)
	return set
}

func loadGenerated(t *testing.T, n int) *artifact.Set {
	t.Helper()
	model, vectorizer, dataset := testutil.GeneratedArtifacts(n)
	set, err := artifact.Load(context.Background(), testutil.WriteArtifactFiles(t, model, vectorizer, dataset), nil)
	require.NoError(t, err)
	return set
}

func names(results []recipe.Display) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.RecipeName
	}
	return out
}

func TestRecommendOrdersNearestFirst(t *testing.T) {
	svc := NewService(loadFixture(t), config.RecommendConfig{TopK: 10}, nil)

	results, err := svc.Recommend(context.Background(), "Rice, Brinjal", 60)
	require.NoError(t, err)

	assert.Equal(t, testutil.ExpectedRiceBrinjalOrder, names(results))
	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.LessOrEqual(t, results[i-1].Distance, r.Distance)
		}
	}

	top := results[0]
	assert.Equal(t, "rice, brinjal, salt", top.Ingredients)
	assert.Equal(t, "Cook the rice. Fry the brinjal.", top.Directions)
	assert.Equal(t, 60.0, top.TotalTime)
	assert.Equal(t, "Total Fat 5g", top.Nutrition)
	assert.Equal(t, "4", top.Servings)
	assert.Equal(t, "https://img.example/brinjal-rice.jpg", top.ImgSrc)
}

func TestRecommendSmallDatasetReturnsAllRows(t *testing.T) {
	svc := NewService(loadFixture(t), config.RecommendConfig{TopK: 10}, nil)

	results, err := svc.Recommend(context.Background(), "chicken curry", 30)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, "Chicken Curry", results[0].RecipeName)
}

func TestRecommendBoundedByTopK(t *testing.T) {
	set := loadGenerated(t, 25)

	results, err := NewService(set, config.RecommendConfig{TopK: 10}, nil).Recommend(context.Background(), "term7", 60)
	require.NoError(t, err)
	assert.Len(t, results, 10)
	assert.Equal(t, "Recipe 7", results[0].RecipeName)

	results, err = NewService(set, config.RecommendConfig{TopK: 5}, nil).Recommend(context.Background(), "term7", 60)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	results, err = NewService(set, config.RecommendConfig{}, nil).Recommend(context.Background(), "term7", 60)
	require.NoError(t, err)
	assert.Len(t, results, DefaultTopK)
}

func TestRecommendEmptyIngredients(t *testing.T) {
	svc := NewService(loadFixture(t), config.RecommendConfig{TopK: 10}, nil)

	res, err := svc.Query(context.Background(), "", 60)
	require.NoError(t, err)
	assert.Equal(t, "60 minut", res.Query)
	assert.Len(t, res.Recommendations, 3)
}

func TestRecommendOutOfVocabulary(t *testing.T) {
	svc := NewService(loadFixture(t), config.RecommendConfig{TopK: 10}, nil)

	results, err := svc.Recommend(context.Background(), "quinoa kale", 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRecommendDeterministic(t *testing.T) {
	svc := NewService(loadFixture(t), config.RecommendConfig{TopK: 10}, nil)

	first, err := svc.Recommend(context.Background(), "rice, brinjal", 60)
	require.NoError(t, err)
	second, err := svc.Recommend(context.Background(), "rice, brinjal", 60)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecommendWithoutArtifactsFails(t *testing.T) {
	svc := NewService(nil, config.RecommendConfig{TopK: 10}, nil)

	results, err := svc.Recommend(context.Background(), "rice", 60)
	assert.Nil(t, results)
	assert.True(t, errors.Is(err, common.ErrArtifactsNotLoaded))

	var nilSvc *Service
	_, err = nilSvc.Recommend(context.Background(), "rice", 60)
	assert.True(t, errors.Is(err, common.ErrArtifactsNotLoaded))
}

// misalignedIndex 回傳超出資料集範圍的列位置
type misalignedIndex struct {
	vector.NeighborIndex
}

func (m misalignedIndex) KNeighbors(vector.Sparse, int) ([]vector.Neighbor, error) {
	return []vector.Neighbor{{Row: 0}, {Row: 42}}, nil
}

func TestRecommendMisalignedIndexFails(t *testing.T) {
	set := loadFixture(t)
	broken := &artifact.Set{
		Index:      misalignedIndex{set.Index},
		Vectorizer: set.Vectorizer,
		Dataset:    set.Dataset,
	}

	_, err := NewService(broken, config.RecommendConfig{TopK: 10}, nil).Recommend(context.Background(), "rice", 60)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrIndexMisaligned))
	assert.True(t, errors.Is(err, recipe.ErrRowOutOfRange))
}

func TestRecommendCancelledContext(t *testing.T) {
	svc := NewService(loadFixture(t), config.RecommendConfig{TopK: 10}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Recommend(ctx, "rice", 60)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRecommendUsesCache(t *testing.T) {
	store := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	t.Cleanup(func() { _ = store.Close() })
	svc := NewService(loadFixture(t), config.RecommendConfig{TopK: 10}, store)

	first, err := svc.Query(context.Background(), "rice, brinjal", 60)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := svc.Query(context.Background(), "RICE brinjal", 60)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

func TestValidate(t *testing.T) {
	svc := NewService(nil, config.RecommendConfig{TopK: 10, MaxTotalTime: 120, MaxIngredients: 10}, nil)

	assert.NoError(t, svc.Validate("rice", 0))
	assert.NoError(t, svc.Validate("rice", 120))
	assert.True(t, common.IsValidationError(svc.Validate("rice", -1)))
	assert.True(t, common.IsValidationError(svc.Validate("rice", 121)))
	assert.True(t, common.IsValidationError(svc.Validate("rice, brinjal, onion", 60)))
}

func TestValidateWithoutIngredientsLimit(t *testing.T) {
	svc := NewService(nil, config.RecommendConfig{TopK: 10, MaxTotalTime: 120}, nil)

	assert.NoError(t, svc.Validate(strings.Repeat("rice, ", 5000), 60))
}
