package vector

import (
	"fmt"
	"io"
	"math"
	"sort"

	"recipe-recommender/internal/pkg/common"
)

// Metric 距離度量
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
)

// IndexFile model.json 的格式
type IndexFile struct {
	Metric    Metric     `json:"metric"`
	NFeatures int        `json:"n_features"`
	Rows      []IndexRow `json:"rows"`
}

// IndexRow 一筆訓練向量
type IndexRow struct {
	RowID   *int64    `json:"row_id,omitempty"`
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// BruteForce 暴力掃描的最近鄰索引，建立後唯讀
type BruteForce struct {
	metric Metric
	dim    int
	rows   []Sparse
	norms  []float64
	rowIDs []int64
}

// DecodeBruteForce 從 JSON 讀取索引
func DecodeBruteForce(r io.Reader) (*BruteForce, error) {
	var f IndexFile
	if err := common.DecodeJSON(r, &f); err != nil {
		return nil, fmt.Errorf("failed to decode neighbor index: %w", err)
	}
	return NewBruteForce(f)
}

// NewBruteForce 驗證並建立索引；row_id 必須全有或全無
func NewBruteForce(f IndexFile) (*BruteForce, error) {
	metric := f.Metric
	if metric == "" {
		metric = MetricCosine
	}
	if metric != MetricCosine && metric != MetricEuclidean {
		return nil, fmt.Errorf("unsupported metric %q", f.Metric)
	}
	if f.NFeatures <= 0 {
		return nil, fmt.Errorf("n_features must be positive, got %d", f.NFeatures)
	}
	if len(f.Rows) == 0 {
		return nil, fmt.Errorf("neighbor index has no rows")
	}

	idx := &BruteForce{
		metric: metric,
		dim:    f.NFeatures,
		rows:   make([]Sparse, len(f.Rows)),
		norms:  make([]float64, len(f.Rows)),
	}

	withIDs := f.Rows[0].RowID != nil
	if withIDs {
		idx.rowIDs = make([]int64, len(f.Rows))
	}

	for i, row := range f.Rows {
		if (row.RowID != nil) != withIDs {
			return nil, fmt.Errorf("row %d: row_id must be present on all rows or none", i)
		}
		vec, err := NewSparse(row.Indices, row.Values)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if vec.MaxIndex() >= f.NFeatures {
			return nil, fmt.Errorf("row %d: index %d exceeds n_features %d", i, vec.MaxIndex(), f.NFeatures)
		}
		idx.rows[i] = vec
		idx.norms[i] = vec.Norm()
		if withIDs {
			idx.rowIDs[i] = *row.RowID
		}
	}

	return idx, nil
}

// Len 索引列數
func (b *BruteForce) Len() int {
	return len(b.rows)
}

// Dim 向量維度
func (b *BruteForce) Dim() int {
	return b.dim
}

// RowIDs 訓練時的資料 ID
func (b *BruteForce) RowIDs() []int64 {
	return b.rowIDs
}

// Metric 距離度量
func (b *BruteForce) Metric() Metric {
	return b.metric
}

// KNeighbors 掃描全部列，距離相同時列位置小的在前。
// 零向量查詢仍會回傳結果
func (b *BruteForce) KNeighbors(query Sparse, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if query.MaxIndex() >= b.dim {
		return nil, fmt.Errorf("query index %d exceeds dimension %d", query.MaxIndex(), b.dim)
	}
	if k > len(b.rows) {
		k = len(b.rows)
	}

	qNorm := query.Norm()
	all := make([]Neighbor, len(b.rows))
	for i, row := range b.rows {
		all[i] = Neighbor{Row: i, Distance: b.distance(query, qNorm, row, b.norms[i])}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Distance < all[j].Distance
	})
	return all[:k], nil
}

func (b *BruteForce) distance(q Sparse, qNorm float64, row Sparse, rowNorm float64) float64 {
	dot := q.Dot(row)
	switch b.metric {
	case MetricEuclidean:
		d2 := qNorm*qNorm + rowNorm*rowNorm - 2*dot
		if d2 < 0 {
			d2 = 0
		}
		return math.Sqrt(d2)
	default:
		if qNorm == 0 || rowNorm == 0 {
			return 1
		}
		return 1 - dot/(qNorm*rowNorm)
	}
}
