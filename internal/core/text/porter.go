package text

import (
	"strings"
	"unicode/utf8"
)

// 不套用規則、直接對應詞幹的不規則字
var irregularStems = map[string]string{
	"sky":      "sky",
	"skies":    "sky",
	"dying":    "die",
	"lying":    "lie",
	"tying":    "tie",
	"news":     "news",
	"innings":  "inning",
	"inning":   "inning",
	"outings":  "outing",
	"outing":   "outing",
	"cannings": "canning",
	"canning":  "canning",
	"howe":     "howe",
	"proceed":  "proceed",
	"exceed":   "exceed",
	"succeed":  "succeed",
}

// doubleConsonant 規則表中代表「以重複子音結尾」的字尾
const doubleConsonant = "*d"

type stemRule struct {
	suffix      string
	replacement string
	cond        func(stem string) bool
}

// Stem Porter 詞幹，採用與訓練端相同的延伸規則：
// 不規則字查表、兩個字元以下原樣返回、step 1c 只在子音後把 y 改成 i
func Stem(token string) string {
	word := strings.ToLower(token)
	if stem, ok := irregularStems[word]; ok {
		return stem
	}
	if utf8.RuneCountInString(word) <= 2 {
		return word
	}

	word = step1a(word)
	word = step1b(word)
	word = step1c(word)
	word = step2(word)
	word = step3(word)
	word = step4(word)
	word = step5a(word)
	return step5b(word)
}

func isConsonant(w []rune, i int) bool {
	switch w[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !isConsonant(w, i-1)
	}
	return true
}

// measure 子音-母音序列中 VC 出現的次數
func measure(stem string) int {
	w := []rune(stem)
	m := 0
	for i := 1; i < len(w); i++ {
		if !isConsonant(w, i-1) && isConsonant(w, i) {
			m++
		}
	}
	return m
}

func positiveMeasure(stem string) bool {
	return measure(stem) > 0
}

func measureAboveOne(stem string) bool {
	return measure(stem) > 1
}

func containsVowel(stem string) bool {
	w := []rune(stem)
	for i := range w {
		if !isConsonant(w, i) {
			return true
		}
	}
	return false
}

func endsDoubleConsonant(word string) bool {
	w := []rune(word)
	n := len(w)
	return n >= 2 && w[n-1] == w[n-2] && isConsonant(w, n-1)
}

// endsCVC 子音-母音-子音結尾（最後不是 w x y），或兩個字元的母音-子音
func endsCVC(word string) bool {
	w := []rune(word)
	n := len(w)
	if n >= 3 && isConsonant(w, n-3) && !isConsonant(w, n-2) && isConsonant(w, n-1) {
		switch w[n-1] {
		case 'w', 'x', 'y':
		default:
			return true
		}
	}
	return n == 2 && !isConsonant(w, 0) && isConsonant(w, 1)
}

func trimRunes(word string, n int) string {
	w := []rune(word)
	return string(w[:len(w)-n])
}

// applyRules 第一個符合字尾的規則決定結果；條件不成立時不再嘗試後面的規則
func applyRules(word string, rules []stemRule) string {
	for _, r := range rules {
		if r.suffix == doubleConsonant {
			if !endsDoubleConsonant(word) {
				continue
			}
			stem := trimRunes(word, 2)
			if r.cond == nil || r.cond(stem) {
				return stem + r.replacement
			}
			return word
		}
		if strings.HasSuffix(word, r.suffix) {
			stem := strings.TrimSuffix(word, r.suffix)
			if r.cond == nil || r.cond(stem) {
				return stem + r.replacement
			}
			return word
		}
	}
	return word
}

func step1a(word string) string {
	// dies -> die，但 flies -> fli
	if strings.HasSuffix(word, "ies") && utf8.RuneCountInString(word) == 4 {
		return strings.TrimSuffix(word, "ies") + "ie"
	}
	return applyRules(word, []stemRule{
		{"sses", "ss", nil},
		{"ies", "i", nil},
		{"ss", "ss", nil},
		{"s", "", nil},
	})
}

func step1b(word string) string {
	// died -> die，但 spied -> spi
	if strings.HasSuffix(word, "ied") {
		if utf8.RuneCountInString(word) == 4 {
			return strings.TrimSuffix(word, "ied") + "ie"
		}
		return strings.TrimSuffix(word, "ied") + "i"
	}

	if strings.HasSuffix(word, "eed") {
		stem := strings.TrimSuffix(word, "eed")
		if measure(stem) > 0 {
			return stem + "ee"
		}
		return word
	}

	var stem string
	matched := false
	for _, suffix := range []string{"ed", "ing"} {
		if strings.HasSuffix(word, suffix) {
			stem = strings.TrimSuffix(word, suffix)
			if containsVowel(stem) {
				matched = true
				break
			}
		}
	}
	if !matched {
		return word
	}

	last, _ := utf8.DecodeLastRuneInString(stem)
	return applyRules(stem, []stemRule{
		{"at", "ate", nil},
		{"bl", "ble", nil},
		{"iz", "ize", nil},
		{doubleConsonant, string(last), func(string) bool {
			return last != 'l' && last != 's' && last != 'z'
		}},
		{"", "e", func(s string) bool {
			return measure(s) == 1 && endsCVC(s)
		}},
	})
}

func step1c(word string) string {
	return applyRules(word, []stemRule{
		{"y", "i", func(s string) bool {
			w := []rune(s)
			return len(w) > 1 && isConsonant(w, len(w)-1)
		}},
	})
}

func step2(word string) string {
	// alli -> al 先做，成功後再跑一次 step2
	if strings.HasSuffix(word, "alli") && positiveMeasure(strings.TrimSuffix(word, "alli")) {
		return step2(strings.TrimSuffix(word, "alli") + "al")
	}

	return applyRules(word, []stemRule{
		{"ational", "ate", positiveMeasure},
		{"tional", "tion", positiveMeasure},
		{"enci", "ence", positiveMeasure},
		{"anci", "ance", positiveMeasure},
		{"izer", "ize", positiveMeasure},
		{"bli", "ble", positiveMeasure},
		{"alli", "al", positiveMeasure},
		{"entli", "ent", positiveMeasure},
		{"eli", "e", positiveMeasure},
		{"ousli", "ous", positiveMeasure},
		{"ization", "ize", positiveMeasure},
		{"ation", "ate", positiveMeasure},
		{"ator", "ate", positiveMeasure},
		{"alism", "al", positiveMeasure},
		{"iveness", "ive", positiveMeasure},
		{"fulness", "ful", positiveMeasure},
		{"ousness", "ous", positiveMeasure},
		{"aliti", "al", positiveMeasure},
		{"iviti", "ive", positiveMeasure},
		{"biliti", "ble", positiveMeasure},
		{"fulli", "ful", positiveMeasure},
		// logi 的 l 算在詞幹內，讓 geo、theo 這類短詞幹也能套用
		{"logi", "log", func(string) bool {
			return positiveMeasure(strings.TrimSuffix(word, "ogi"))
		}},
	})
}

func step3(word string) string {
	return applyRules(word, []stemRule{
		{"icate", "ic", positiveMeasure},
		{"ative", "", positiveMeasure},
		{"alize", "al", positiveMeasure},
		{"iciti", "ic", positiveMeasure},
		{"ical", "ic", positiveMeasure},
		{"ful", "", positiveMeasure},
		{"ness", "", positiveMeasure},
	})
}

func step4(word string) string {
	return applyRules(word, []stemRule{
		{"al", "", measureAboveOne},
		{"ance", "", measureAboveOne},
		{"ence", "", measureAboveOne},
		{"er", "", measureAboveOne},
		{"ic", "", measureAboveOne},
		{"able", "", measureAboveOne},
		{"ible", "", measureAboveOne},
		{"ant", "", measureAboveOne},
		{"ement", "", measureAboveOne},
		{"ment", "", measureAboveOne},
		{"ent", "", measureAboveOne},
		{"ion", "", func(s string) bool {
			return measureAboveOne(s) && (strings.HasSuffix(s, "s") || strings.HasSuffix(s, "t"))
		}},
		{"ou", "", measureAboveOne},
		{"ism", "", measureAboveOne},
		{"ate", "", measureAboveOne},
		{"iti", "", measureAboveOne},
		{"ous", "", measureAboveOne},
		{"ive", "", measureAboveOne},
		{"ize", "", measureAboveOne},
	})
}

func step5a(word string) string {
	if !strings.HasSuffix(word, "e") {
		return word
	}
	stem := strings.TrimSuffix(word, "e")
	m := measure(stem)
	if m > 1 || (m == 1 && !endsCVC(stem)) {
		return stem
	}
	return word
}

func step5b(word string) string {
	return applyRules(word, []stemRule{
		{"ll", "l", func(string) bool {
			return measureAboveOne(trimRunes(word, 1))
		}},
	})
}
