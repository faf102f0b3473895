package recipe

// Record 資料集中的一筆食譜，載入後不可變
type Record struct {
	RowID       *int64
	Name        string
	Ingredients string
	Directions  string
	TotalTime   float64
	Nutrition   string
	Servings    string
	ImgSrc      string
}

// Display 推薦結果中的一筆，Rank 從 1 開始
type Display struct {
	Rank        int     `json:"rank"`
	RecipeName  string  `json:"recipe_name"`
	Ingredients string  `json:"ingredients"`
	Directions  string  `json:"directions"`
	TotalTime   float64 `json:"total_time"`
	Nutrition   string  `json:"nutrition"`
	Servings    string  `json:"servings"`
	ImgSrc      string  `json:"img_src"`
	Distance    float64 `json:"distance"`
}

// ToDisplay 投影為顯示欄位
func (r Record) ToDisplay(rank int, distance float64) Display {
	return Display{
		Rank:        rank,
		RecipeName:  r.Name,
		Ingredients: r.Ingredients,
		Directions:  r.Directions,
		TotalTime:   r.TotalTime,
		Nutrition:   r.Nutrition,
		Servings:    r.Servings,
		ImgSrc:      r.ImgSrc,
		Distance:    distance,
	}
}
