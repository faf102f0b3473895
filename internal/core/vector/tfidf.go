package vector

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"

	"recipe-recommender/internal/pkg/common"
)

// DefaultTokenPattern 與訓練端預設相同：兩個字元以上的 word token
const DefaultTokenPattern = `(?u)\b\w\w+\b`

// TFIDFFile vectorizer.json 的格式
type TFIDFFile struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	Norm         string         `json:"norm"`
	SublinearTF  bool           `json:"sublinear_tf"`
	Lowercase    *bool          `json:"lowercase"`
	TokenPattern string         `json:"token_pattern"`
}

// TFIDF 已訓練好的 TF-IDF 向量化器，建立後唯讀
type TFIDF struct {
	vocabulary  map[string]int
	idf         []float64
	norm        string
	sublinearTF bool
	lowercase   bool
	pattern     *regexp.Regexp
}

// DecodeTFIDF 從 JSON 讀取向量化器
func DecodeTFIDF(r io.Reader) (*TFIDF, error) {
	var f TFIDFFile
	if err := common.DecodeJSON(r, &f); err != nil {
		return nil, fmt.Errorf("failed to decode vectorizer: %w", err)
	}
	return NewTFIDF(f)
}

// NewTFIDF 驗證並建立向量化器
func NewTFIDF(f TFIDFFile) (*TFIDF, error) {
	if len(f.Vocabulary) == 0 {
		return nil, fmt.Errorf("vectorizer vocabulary is empty")
	}
	if len(f.IDF) != len(f.Vocabulary) {
		return nil, fmt.Errorf("idf length %d does not match vocabulary size %d", len(f.IDF), len(f.Vocabulary))
	}

	seen := make([]bool, len(f.IDF))
	for term, idx := range f.Vocabulary {
		if idx < 0 || idx >= len(f.IDF) {
			return nil, fmt.Errorf("term %q has out of range index %d", term, idx)
		}
		if seen[idx] {
			return nil, fmt.Errorf("index %d assigned to more than one term", idx)
		}
		seen[idx] = true
	}

	norm := f.Norm
	switch norm {
	case "":
		norm = "l2"
	case "l1", "l2", "none":
	default:
		return nil, fmt.Errorf("unsupported norm %q", f.Norm)
	}

	pattern := f.TokenPattern
	if pattern == "" {
		pattern = DefaultTokenPattern
	}
	re, err := compileTokenPattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid token pattern %q: %w", pattern, err)
	}

	lowercase := true
	if f.Lowercase != nil {
		lowercase = *f.Lowercase
	}

	return &TFIDF{
		vocabulary:  f.Vocabulary,
		idf:         f.IDF,
		norm:        norm,
		sublinearTF: f.SublinearTF,
		lowercase:   lowercase,
		pattern:     re,
	}, nil
}

// compileTokenPattern Go 的 \w 與 \b 只認 ASCII，(?u) 這裡改寫為 Unicode 字元類別
func compileTokenPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == DefaultTokenPattern {
		return regexp.Compile(`[\p{L}\p{N}_]{2,}`)
	}
	return regexp.Compile(strings.TrimPrefix(pattern, "(?u)"))
}

// Dim 詞彙表大小
func (v *TFIDF) Dim() int {
	return len(v.idf)
}

// Transform 計算 tf * idf 並正規化；詞彙表外的詞權重為 0，
// 全部未知時回傳零向量
func (v *TFIDF) Transform(text string) (Sparse, error) {
	if v.lowercase {
		text = strings.ToLower(text)
	}

	counts := make(map[int]float64)
	for _, term := range v.pattern.FindAllString(text, -1) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	indices := make([]int, 0, len(counts))
	values := make([]float64, 0, len(counts))
	for idx, tf := range counts {
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		indices = append(indices, idx)
		values = append(values, tf*v.idf[idx])
	}

	vec, err := NewSparse(indices, values)
	if err != nil {
		return Sparse{}, err
	}

	switch v.norm {
	case "l2":
		return vec.Normalized(), nil
	case "l1":
		var sum float64
		for _, x := range vec.Values {
			sum += math.Abs(x)
		}
		if sum > 0 {
			for i := range vec.Values {
				vec.Values[i] /= sum
			}
		}
	}
	return vec, nil
}
