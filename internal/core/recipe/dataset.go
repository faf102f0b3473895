// Package recipe 食譜資料集與推薦結果的資料結構
package recipe

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// 資料集欄位
const (
	ColRowID       = "row_id"
	ColName        = "recipe_name"
	ColIngredients = "ingredients"
	ColDirections  = "directions"
	ColTotalTime   = "total_time"
	ColNutrition   = "nutrition"
	ColServings    = "servings"
	ColImgSrc      = "img_src"
)

// RequiredColumns 必要欄位
var RequiredColumns = []string{
	ColName, ColIngredients, ColDirections, ColTotalTime, ColNutrition, ColServings, ColImgSrc,
}

// ErrRowOutOfRange 列位置超出資料集範圍
var ErrRowOutOfRange = errors.New("row out of range")

// Dataset 以列位置存取的唯讀食譜資料集
type Dataset struct {
	records []Record
	hasIDs  bool
}

// NewDataset 由記錄建立資料集
func NewDataset(records []Record) *Dataset {
	d := &Dataset{records: records}
	if len(records) > 0 {
		d.hasIDs = records[0].RowID != nil
	}
	return d
}

// Len 列數
func (d *Dataset) Len() int {
	return len(d.records)
}

// At 取得第 i 列
func (d *Dataset) At(i int) (Record, error) {
	if i < 0 || i >= len(d.records) {
		return Record{}, fmt.Errorf("%w: %d not in [0, %d)", ErrRowOutOfRange, i, len(d.records))
	}
	return d.records[i], nil
}

// HasRowIDs 資料集是否帶有 row_id 欄位
func (d *Dataset) HasRowIDs() bool {
	return d.hasIDs
}

// ReadCSV 讀取資料集；缺欄位、欄位數不符或數值無法解析都視為損毀
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dataset is empty")
		}
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		// 第一欄可能帶 BOM 或 pandas 輸出的空白索引欄
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, name := range RequiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("dataset missing required column %q", name)
		}
	}
	idCol, hasIDs := cols[ColRowID]

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset: %w", err)
		}

		totalTime, err := parseMinutes(row[cols[ColTotalTime]])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s: %w", line, ColTotalTime, err)
		}

		rec := Record{
			Name:        row[cols[ColName]],
			Ingredients: row[cols[ColIngredients]],
			Directions:  row[cols[ColDirections]],
			TotalTime:   totalTime,
			Nutrition:   row[cols[ColNutrition]],
			Servings:    row[cols[ColServings]],
			ImgSrc:      row[cols[ColImgSrc]],
		}
		if hasIDs {
			id, err := strconv.ParseInt(strings.TrimSpace(row[idCol]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s: %w", line, ColRowID, err)
			}
			rec.RowID = &id
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("dataset has no rows")
	}
	return NewDataset(records), nil
}

// parseMinutes 空值視為 0
func parseMinutes(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
