// Package artifact 在啟動時載入向量索引、向量化器與食譜資料集
package artifact

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/core/vector"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
)

// Set 啟動時載入的模型檔案，建立後唯讀，可在多個請求間共用
type Set struct {
	Index      vector.NeighborIndex
	Vectorizer vector.Vectorizer
	Dataset    *recipe.Dataset
}

// NewSet 檢查三者一致後建立 Set
func NewSet(index vector.NeighborIndex, vectorizer vector.Vectorizer, dataset *recipe.Dataset) (*Set, error) {
	if index == nil || vectorizer == nil || dataset == nil {
		return nil, common.ErrArtifactLoad.Wrap(fmt.Errorf("index, vectorizer and dataset are all required"))
	}

	s := &Set{Index: index, Vectorizer: vectorizer, Dataset: dataset}
	if err := s.verifyAlignment(); err != nil {
		return nil, common.ErrIndexMisaligned.Wrap(err)
	}
	return s, nil
}

// verifyAlignment 索引第 i 列必須對應資料集第 i 列
func (s *Set) verifyAlignment() error {
	if s.Index.Len() != s.Dataset.Len() {
		return fmt.Errorf("index has %d rows but dataset has %d", s.Index.Len(), s.Dataset.Len())
	}
	if s.Index.Dim() != s.Vectorizer.Dim() {
		return fmt.Errorf("index dimension %d does not match vectorizer vocabulary %d", s.Index.Dim(), s.Vectorizer.Dim())
	}

	ids := s.Index.RowIDs()
	switch {
	case ids != nil && s.Dataset.HasRowIDs():
		for i, id := range ids {
			rec, err := s.Dataset.At(i)
			if err != nil {
				return err
			}
			if rec.RowID == nil || *rec.RowID != id {
				return fmt.Errorf("row %d: index row_id %d does not match dataset row_id", i, id)
			}
		}
	case ids != nil || s.Dataset.HasRowIDs():
		common.LogWarn("只有一邊帶 row_id，僅以列數檢查一致性",
			zap.Bool("index_row_ids", ids != nil),
			zap.Bool("dataset_row_ids", s.Dataset.HasRowIDs()),
		)
	}
	return nil
}

// Load 依設定載入三個模型檔案，任何一個失敗即整體失敗
func Load(ctx context.Context, cfg config.ArtifactsConfig, src Source) (*Set, error) {
	if src == nil {
		src = NewDefaultSource(cfg.FetchTimeout, cfg.FetchRetries)
	}
	start := time.Now()

	var index *vector.BruteForce
	if err := readArtifact(ctx, src, "model", cfg.ModelPath, func(r io.Reader) (err error) {
		index, err = vector.DecodeBruteForce(r)
		return err
	}); err != nil {
		return nil, err
	}

	var vectorizer *vector.TFIDF
	if err := readArtifact(ctx, src, "vectorizer", cfg.VectorizerPath, func(r io.Reader) (err error) {
		vectorizer, err = vector.DecodeTFIDF(r)
		return err
	}); err != nil {
		return nil, err
	}

	var dataset *recipe.Dataset
	if err := readArtifact(ctx, src, "dataset", cfg.DatasetPath, func(r io.Reader) (err error) {
		dataset, err = recipe.ReadCSV(r)
		return err
	}); err != nil {
		return nil, err
	}

	set, err := NewSet(index, vectorizer, dataset)
	if err != nil {
		return nil, err
	}

	common.LogInfo("模型檔案載入完成",
		zap.Int("rows", dataset.Len()),
		zap.Int("features", vectorizer.Dim()),
		zap.String("metric", string(index.Metric())),
		zap.Duration("耗時", time.Since(start)),
	)
	return set, nil
}

func readArtifact(ctx context.Context, src Source, name, location string, decode func(io.Reader) error) error {
	rc, err := src.Open(ctx, location)
	if err != nil {
		return common.ErrArtifactLoad.Wrap(fmt.Errorf("%s %s: %w", name, location, err))
	}
	defer rc.Close()

	if err := decode(rc); err != nil {
		return common.ErrArtifactLoad.Wrap(fmt.Errorf("%s %s: %w", name, location, err))
	}

	common.LogDebug("模型檔案已讀取",
		zap.String("artifact", name),
		zap.String("location", location),
	)
	return nil
}
