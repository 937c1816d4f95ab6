// Package sequence 将 OB 工序与车间工序顺序表模糊对齐。
package sequence

import (
	"strings"
	"unicode"
)

// compact 小写并移除全部空白
func compact(s string) []rune {
	s = strings.ToLower(strings.TrimSpace(s))
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			out = append(out, r)
		}
	}
	return out
}

func bigrams(s []rune) map[string]int {
	m := make(map[string]int, len(s))
	for i := 0; i+1 < len(s); i++ {
		m[string(s[i:i+2])]++
	}
	return m
}

// Similarity 基于字符二元组多重集的 Dice 系数，取值 [0,1]
func Similarity(a, b string) float64 {
	ra, rb := compact(a), compact(b)
	switch {
	case len(ra) == 0 && len(rb) == 0:
		return 1
	case len(ra) == 0 || len(rb) == 0:
		return 0
	case string(ra) == string(rb):
		return 1
	}

	denom := len(ra) - 1 + len(rb) - 1
	if denom == 0 {
		return 0
	}

	ba, bb := bigrams(ra), bigrams(rb)
	inter := 0
	for k, ca := range ba {
		if cb, ok := bb[k]; ok {
			inter += min(ca, cb)
		}
	}
	return float64(2*inter) / float64(denom)
}
