// Package text 將使用者輸入的食材與時間轉為與訓練資料一致的查詢字串
package text

import (
	"fmt"
	"strings"
)

// TimeUnit 查詢字串中時間的單位
const TimeUnit = "minutes"

// QueryText 組合食材與時間
func QueryText(ingredients string, totalTime int) string {
	return fmt.Sprintf("%s %d %s", ingredients, totalTime, TimeUnit)
}

// Normalize 轉小寫、切詞、過濾非英數字 token 與停用詞後取詞幹，
// 以單一空白連接。相同輸入永遠得到相同輸出
func Normalize(ingredients string, totalTime int) string {
	tokens := Tokenize(strings.ToLower(QueryText(ingredients, totalTime)))

	stems := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !IsAlphanumeric(token) {
			continue
		}
		if IsStopword(token) || IsPunctuation(token) {
			continue
		}
		stems = append(stems, Stem(token))
	}
	return strings.Join(stems, " ")
}
