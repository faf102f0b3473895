// Package vector 提供查詢向量化與最近鄰搜尋的介面及其 TF-IDF 實作
package vector

import (
	"fmt"
	"math"
	"sort"
)

// Vectorizer 將正規化後的查詢字串轉為向量
type Vectorizer interface {
	Transform(text string) (Sparse, error)
	Dim() int
}

// NeighborIndex 最近鄰索引
type NeighborIndex interface {
	// KNeighbors 依距離由近到遠回傳最多 k 個鄰居
	KNeighbors(query Sparse, k int) ([]Neighbor, error)
	Len() int
	Dim() int
	// RowIDs 訓練時每一列的資料 ID，沒有記錄時為 nil
	RowIDs() []int64
}

// Neighbor 一筆最近鄰結果，Row 為索引中的列位置
type Neighbor struct {
	Row      int
	Distance float64
}

// Sparse 稀疏向量，Indices 嚴格遞增
type Sparse struct {
	Indices []int
	Values  []float64
}

// NewSparse 由未排序的 (index, value) 建立稀疏向量，重複的 index 會相加
func NewSparse(indices []int, values []float64) (Sparse, error) {
	if len(indices) != len(values) {
		return Sparse{}, fmt.Errorf("indices and values length mismatch: %d != %d", len(indices), len(values))
	}

	acc := make(map[int]float64, len(indices))
	for i, idx := range indices {
		if idx < 0 {
			return Sparse{}, fmt.Errorf("negative index %d", idx)
		}
		acc[idx] += values[i]
	}

	s := Sparse{
		Indices: make([]int, 0, len(acc)),
		Values:  make([]float64, 0, len(acc)),
	}
	for idx := range acc {
		s.Indices = append(s.Indices, idx)
	}
	sort.Ints(s.Indices)
	for _, idx := range s.Indices {
		s.Values = append(s.Values, acc[idx])
	}
	return s, nil
}

// Len 非零元素個數
func (s Sparse) Len() int {
	return len(s.Indices)
}

// IsZero 是否為零向量
func (s Sparse) IsZero() bool {
	for _, v := range s.Values {
		if v != 0 {
			return false
		}
	}
	return true
}

// MaxIndex 最大的 index，空向量回傳 -1
func (s Sparse) MaxIndex() int {
	if len(s.Indices) == 0 {
		return -1
	}
	return s.Indices[len(s.Indices)-1]
}

// Dot 內積
func (s Sparse) Dot(o Sparse) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(s.Indices) && j < len(o.Indices) {
		switch {
		case s.Indices[i] == o.Indices[j]:
			sum += s.Values[i] * o.Values[j]
			i++
			j++
		case s.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm L2 範數
func (s Sparse) Norm() float64 {
	return math.Sqrt(s.Dot(s))
}

// Normalized 回傳 L2 正規化後的副本；零向量原樣返回
func (s Sparse) Normalized() Sparse {
	n := s.Norm()
	if n == 0 {
		return s
	}
	out := Sparse{
		Indices: append([]int(nil), s.Indices...),
		Values:  make([]float64, len(s.Values)),
	}
	for i, v := range s.Values {
		out.Values[i] = v / n
	}
	return out
}
