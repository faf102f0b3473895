// Package testutil 測試用的小型模型檔案
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"recipe-recommender/internal/infrastructure/config"
)

// VectorizerJSON 八個詞的詞彙表，idf 全為 1
const VectorizerJSON = `{
  "vocabulary": {"rice": 0, "brinjal": 1, "chicken": 2, "curri": 3, "minut": 4, "lettuc": 5, "tomato": 6, "salad": 7},
  "idf": [1, 1, 1, 1, 1, 1, 1, 1],
  "norm": "l2",
  "sublinear_tf": false
}`

// ModelJSON 三列索引，與 DatasetCSV 的列順序相同
const ModelJSON = `{
  "metric": "cosine",
  "n_features": 8,
  "rows": [
    {"row_id": 0, "indices": [0, 1, 4], "values": [0.57735, 0.57735, 0.57735]},
    {"row_id": 1, "indices": [0, 2, 3, 4], "values": [0.5, 0.5, 0.5, 0.5]},
    {"row_id": 2, "indices": [5, 6, 7], "values": [0.57735, 0.57735, 0.57735]}
  ]
}`

// DatasetCSV 三筆食譜
const DatasetCSV = `row_id,recipe_name,ingredients,directions,total_time,nutrition,servings,img_src
0,Brinjal Rice,"rice, brinjal, salt",Cook the rice. Fry the brinjal.,60,Total Fat 5g,4,https://img.example/brinjal-rice.jpg
1,Chicken Curry,"chicken, curry paste, rice",Simmer the chicken in curry.,60,Total Fat 12g,6,https://img.example/chicken-curry.jpg
2,Garden Salad,"lettuce, tomato",Toss the salad.,10,Total Fat 1g,2,https://img.example/salad.jpg
`

// 依距離排序後的名稱，查詢為 "rice, brinjal" 60 分鐘
var ExpectedRiceBrinjalOrder = []string{"Brinjal Rice", "Chicken Curry", "Garden Salad"}

// WriteArtifacts 將三個檔案寫到暫存目錄
func WriteArtifacts(t *testing.T) config.ArtifactsConfig {
	t.Helper()
	return WriteArtifactFiles(t, ModelJSON, VectorizerJSON, DatasetCSV)
}

// WriteArtifactFiles 寫入自訂內容，空字串表示不建立該檔案
func WriteArtifactFiles(t *testing.T, model, vectorizer, dataset string) config.ArtifactsConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.ArtifactsConfig{
		ModelPath:      filepath.Join(dir, "model.json"),
		VectorizerPath: filepath.Join(dir, "vectorizer.json"),
		DatasetPath:    filepath.Join(dir, "pre_processed.csv"),
	}
	write := func(path, content string) {
		if content == "" {
			return
		}
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write(cfg.ModelPath, model)
	write(cfg.VectorizerPath, vectorizer)
	write(cfg.DatasetPath, dataset)
	return cfg
}

// GeneratedArtifacts n 列、n 維的模型檔案，第 i 列只有 term{i}；
// 資料集名稱為 Recipe {i}
func GeneratedArtifacts(n int) (model, vectorizer, dataset string) {
	var vocab, idf, rows []string
	var csv strings.Builder
	csv.WriteString("recipe_name,ingredients,directions,total_time,nutrition,servings,img_src\n")
	for i := 0; i < n; i++ {
		vocab = append(vocab, fmt.Sprintf(`"term%d": %d`, i, i))
		idf = append(idf, "1")
		rows = append(rows, fmt.Sprintf(`{"indices": [%d], "values": [1]}`, i))
		fmt.Fprintf(&csv, "Recipe %d,term%d,Cook.,%d,n,1,https://img.example/%d.jpg\n", i, i, i, i)
	}
	model = fmt.Sprintf(`{"metric":"cosine","n_features":%d,"rows":[%s]}`, n, strings.Join(rows, ","))
	vectorizer = fmt.Sprintf(`{"vocabulary":{%s},"idf":[%s]}`, strings.Join(vocab, ","), strings.Join(idf, ","))
	return model, vectorizer, csv.String()
}
