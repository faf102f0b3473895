package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		// y 前面是母音時保留
		{"honey", "honey"},
		{"soy", "soy"},
		{"parsley", "parsley"},
		{"kidney", "kidney"},
		{"turkey", "turkey"},
		{"curry", "curri"},
		{"happy", "happi"},
		// 不規則字
		{"dying", "die"},
		{"lying", "lie"},
		{"news", "news"},
		{"skies", "sky"},
		{"exceed", "exceed"},
		// 規則
		{"eed", "eed"},
		{"agreed", "agre"},
		{"generous", "gener"},
		{"sauces", "sauc"},
		{"minutes", "minut"},
		{"ties", "tie"},
		{"ponies", "poni"},
		{"caresses", "caress"},
		{"relational", "relat"},
		{"hopping", "hop"},
		{"lettuce", "lettuc"},
		{"rice", "rice"},
		{"brinjal", "brinjal"},
		{"beans", "bean"},
		// 兩個字元以下
		{"60", "60"},
		{"as", "as"},
		{"Honey", "honey"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Stem(tt.in))
		})
	}
}

func TestStemShortTokensDoNotPanic(t *testing.T) {
	letters := "abcdefghijklmnopqrstuvwxyz"
	for _, a := range letters {
		for _, b := range letters {
			for _, c := range letters {
				word := string([]rune{a, b, c})
				assert.NotPanics(t, func() { Stem(word) }, word)
			}
		}
	}
}
