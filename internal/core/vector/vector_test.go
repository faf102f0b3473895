package vector

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSparseSortsAndMerges(t *testing.T) {
	s, err := NewSparse([]int{3, 1, 3}, []float64{1, 2, 4})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, s.Indices)
	assert.Equal(t, []float64{2, 5}, s.Values)
	assert.Equal(t, 3, s.MaxIndex())

	_, err = NewSparse([]int{1}, []float64{1, 2})
	assert.Error(t, err)
	_, err = NewSparse([]int{-1}, []float64{1})
	assert.Error(t, err)
}

func TestSparseDotAndNorm(t *testing.T) {
	a, _ := NewSparse([]int{0, 2}, []float64{3, 4})
	b, _ := NewSparse([]int{2, 5}, []float64{2, 7})

	assert.Equal(t, 8.0, a.Dot(b))
	assert.Equal(t, 5.0, a.Norm())
	assert.InDelta(t, 1.0, a.Normalized().Norm(), 1e-12)
	assert.True(t, Sparse{}.IsZero())
	assert.Equal(t, -1, Sparse{}.MaxIndex())
}

func newTestTFIDF(t *testing.T) *TFIDF {
	t.Helper()
	v, err := NewTFIDF(TFIDFFile{
		Vocabulary: map[string]int{"rice": 0, "brinjal": 1, "chicken": 2, "minut": 3},
		IDF:        []float64{1.5, 2.0, 1.2, 1.0},
	})
	require.NoError(t, err)
	return v
}

func TestTFIDFTransform(t *testing.T) {
	v := newTestTFIDF(t)

	vec, err := v.Transform("rice rice brinjal 60 minut")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, vec.Indices)
	assert.InDelta(t, 1.0, vec.Norm(), 1e-12)

	raw := []float64{2 * 1.5, 1 * 2.0, 1 * 1.0}
	n := math.Sqrt(raw[0]*raw[0] + raw[1]*raw[1] + raw[2]*raw[2])
	for i := range raw {
		assert.InDelta(t, raw[i]/n, vec.Values[i], 1e-12)
	}
}

func TestTFIDFOutOfVocabularyIsZero(t *testing.T) {
	v := newTestTFIDF(t)

	vec, err := v.Transform("kale quinoa")
	require.NoError(t, err)
	assert.True(t, vec.IsZero())
	assert.Equal(t, 0, vec.Len())
}

func TestTFIDFSublinearAndDecode(t *testing.T) {
	v, err := DecodeTFIDF(strings.NewReader(`{"vocabulary":{"rice":0,"dal":1},"idf":[1,1],"sublinear_tf":true,"norm":"none"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, v.Dim())

	vec, err := v.Transform("rice rice dal")
	require.NoError(t, err)
	assert.InDelta(t, 1+math.Log(2), vec.Values[0], 1e-12)
	assert.InDelta(t, 1.0, vec.Values[1], 1e-12)
}

func TestNewTFIDFValidation(t *testing.T) {
	_, err := NewTFIDF(TFIDFFile{})
	assert.Error(t, err)

	_, err = NewTFIDF(TFIDFFile{Vocabulary: map[string]int{"a": 0}, IDF: []float64{1, 2}})
	assert.Error(t, err)

	_, err = NewTFIDF(TFIDFFile{Vocabulary: map[string]int{"a": 0, "b": 0}, IDF: []float64{1, 2}})
	assert.Error(t, err)

	_, err = NewTFIDF(TFIDFFile{Vocabulary: map[string]int{"a": 0}, IDF: []float64{1}, Norm: "max"})
	assert.Error(t, err)

	_, err = DecodeTFIDF(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func sparseRow(indices []int, values []float64) IndexRow {
	return IndexRow{Indices: indices, Values: values}
}

func TestBruteForceOrdersNearestFirst(t *testing.T) {
	idx, err := NewBruteForce(IndexFile{
		NFeatures: 3,
		Rows: []IndexRow{
			sparseRow([]int{2}, []float64{1}),          // 與查詢正交
			sparseRow([]int{0}, []float64{1}),          // 完全相同方向
			sparseRow([]int{0, 1}, []float64{1, 1}),    // 45 度
			sparseRow([]int{0, 1}, []float64{1, 0.25}), // 接近
		},
	})
	require.NoError(t, err)

	q, _ := NewSparse([]int{0}, []float64{1})
	got, err := idx.KNeighbors(q, 10)
	require.NoError(t, err)

	require.Len(t, got, 4)
	rows := []int{got[0].Row, got[1].Row, got[2].Row, got[3].Row}
	assert.Equal(t, []int{1, 3, 2, 0}, rows)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
	}
	assert.InDelta(t, 0.0, got[0].Distance, 1e-12)
	assert.InDelta(t, 1.0, got[3].Distance, 1e-12)
}

func TestBruteForceKIsBounded(t *testing.T) {
	idx, err := NewBruteForce(IndexFile{
		NFeatures: 2,
		Rows: []IndexRow{
			sparseRow([]int{0}, []float64{1}),
			sparseRow([]int{1}, []float64{1}),
		},
	})
	require.NoError(t, err)

	q, _ := NewSparse([]int{1}, []float64{1})
	got, err := idx.KNeighbors(q, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Row)

	_, err = idx.KNeighbors(q, 0)
	assert.Error(t, err)
}

func TestBruteForceZeroQueryStillReturnsRows(t *testing.T) {
	idx, err := NewBruteForce(IndexFile{
		NFeatures: 2,
		Rows: []IndexRow{
			sparseRow([]int{0}, []float64{1}),
			sparseRow([]int{1}, []float64{1}),
			sparseRow([]int{0, 1}, []float64{1, 1}),
		},
	})
	require.NoError(t, err)

	got, err := idx.KNeighbors(Sparse{}, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// 距離全部相同時依列位置排序
	assert.Equal(t, 0, got[0].Row)
	assert.Equal(t, 1, got[1].Row)
	assert.Equal(t, 2, got[2].Row)
}

func TestBruteForceEuclidean(t *testing.T) {
	idx, err := NewBruteForce(IndexFile{
		Metric:    MetricEuclidean,
		NFeatures: 2,
		Rows: []IndexRow{
			sparseRow([]int{0}, []float64{3}),
			sparseRow([]int{0}, []float64{1}),
		},
	})
	require.NoError(t, err)

	q, _ := NewSparse([]int{0, 1}, []float64{1, 1})
	got, err := idx.KNeighbors(q, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, got[0].Row)
	assert.InDelta(t, 1.0, got[0].Distance, 1e-9)
	assert.InDelta(t, math.Sqrt(5), got[1].Distance, 1e-9)
}

func TestNewBruteForceValidation(t *testing.T) {
	id := int64(7)
	tests := []struct {
		name string
		file IndexFile
	}{
		{"no rows", IndexFile{NFeatures: 2}},
		{"no features", IndexFile{Rows: []IndexRow{sparseRow([]int{0}, []float64{1})}}},
		{"bad metric", IndexFile{Metric: "manhattan", NFeatures: 1, Rows: []IndexRow{sparseRow([]int{0}, []float64{1})}}},
		{"index overflow", IndexFile{NFeatures: 1, Rows: []IndexRow{sparseRow([]int{1}, []float64{1})}}},
		{"mixed row ids", IndexFile{NFeatures: 1, Rows: []IndexRow{
			{RowID: &id, Indices: []int{0}, Values: []float64{1}},
			sparseRow([]int{0}, []float64{1}),
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBruteForce(tt.file)
			assert.Error(t, err)
		})
	}
}

func TestDecodeBruteForceRowIDs(t *testing.T) {
	idx, err := DecodeBruteForce(strings.NewReader(`{"metric":"cosine","n_features":2,"rows":[
		{"row_id":10,"indices":[0],"values":[1]},
		{"row_id":11,"indices":[1],"values":[1]}]}`))
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, idx.RowIDs())
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, MetricCosine, idx.Metric())
}
