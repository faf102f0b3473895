package text

import (
	"strings"
	"unicode"
)

// 一律獨立成 token 的字元
const splitAlways = ";@#$%&?!()[]{}<>\"`"

// 需要從字尾切開的縮寫
var contractionSuffixes = []string{"n't", "'ll", "'re", "'ve", "'s", "'m", "'d"}

// 整個字固定拆成兩段，值為前段長度
var fixedSplits = map[string]int{
	"cannot": 3,
	"d'ye":   1,
	"gimme":  3,
	"gonna":  3,
	"gotta":  3,
	"lemme":  3,
	"more'n": 4,
	"wanna":  3,
	"'tis":   2,
	"'twas":  2,
}

// Tokenize 以 Treebank 規則切詞：標點獨立、縮寫拆開，
// 小數、千分位與連字號仍留在同一個 token 內
func Tokenize(s string) []string {
	var tokens []string
	for _, chunk := range strings.Fields(s) {
		for _, piece := range splitPunctuation(chunk) {
			tokens = append(tokens, splitWord(piece)...)
		}
	}
	return tokens
}

// splitPunctuation 切開固定標點，以及後面不是數字的逗號與冒號
func splitPunctuation(chunk string) []string {
	runes := []rune(chunk)
	var pieces []string
	start := 0
	flush := func(end int) {
		if end > start {
			pieces = append(pieces, string(runes[start:end]))
		}
	}

	for i, r := range runes {
		split := strings.ContainsRune(splitAlways, r)
		if r == ',' || r == ':' {
			split = i+1 >= len(runes) || !unicode.IsDigit(runes[i+1])
		}
		if !split {
			continue
		}
		flush(i)
		pieces = append(pieces, string(r))
		start = i + 1
	}
	flush(len(runes))
	return pieces
}

// splitWord 處理引號、句尾句點與縮寫
func splitWord(piece string) []string {
	if len(piece) <= 1 {
		return []string{piece}
	}
	if parts, ok := splitFixed(piece); ok {
		return parts
	}

	var head, tail []string
	for len(piece) > 1 && piece[0] == '\'' && !hasContractionSuffix(piece) {
		head = append(head, "'")
		piece = piece[1:]
	}

	// 句尾句點；縮寫如 e.g. 保持原樣
	if strings.HasSuffix(piece, ".") && len(piece) > 1 && !strings.Contains(piece[:len(piece)-1], ".") {
		tail = append(tail, ".")
		piece = piece[:len(piece)-1]
	}

	for len(piece) > 1 && strings.HasSuffix(piece, "'") {
		tail = append([]string{"'"}, tail...)
		piece = piece[:len(piece)-1]
	}

	if parts, ok := splitFixed(piece); ok {
		return append(append(head, parts...), tail...)
	}

	for _, suffix := range contractionSuffixes {
		if len(piece) > len(suffix) && strings.HasSuffix(piece, suffix) {
			tail = append([]string{suffix}, tail...)
			piece = piece[:len(piece)-len(suffix)]
			break
		}
	}

	out := append(head, piece)
	return append(out, tail...)
}

func splitFixed(piece string) ([]string, bool) {
	n, ok := fixedSplits[strings.ToLower(piece)]
	if !ok {
		return nil, false
	}
	return []string{piece[:n], piece[n:]}, true
}

func hasContractionSuffix(piece string) bool {
	for _, suffix := range contractionSuffixes {
		if piece == suffix {
			return true
		}
	}
	return false
}

// IsAlphanumeric token 是否只由字母與數字組成
func IsAlphanumeric(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
