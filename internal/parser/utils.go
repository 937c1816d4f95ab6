package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	leadingNumberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	digitsOnlyRe    = regexp.MustCompile(`^\d+$`)
)

// NormalizeText 小写、去首尾空白、压缩连续空白
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRe.ReplaceAllString(s, " ")
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ParseLeadingFloat 解析字符串开头的数字（"1.25 min" -> 1.25）
func ParseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	m := leadingNumberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

// IsNumericLike 开头可解析为数字
func IsNumericLike(s string) bool {
	_, ok := ParseLeadingFloat(s)
	return ok
}

// parseFloat 安全转换为浮点数；非数字按 0 处理
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "") // 移除千分位
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(f) {
		return 0
	}
	return f
}

// cellInt 单元格取整（四舍五入，.5 向上）；非数字按 0 处理
func cellInt(c Cell) int {
	if c.Kind == CellNumber {
		return roundHalfUp(c.Number)
	}
	return roundHalfUp(parseFloat(c.Text))
}

// cellFloat 单元格前缀数字；非数字按 0 处理
func cellFloat(c Cell) float64 {
	if c.Kind == CellNumber {
		if !isFinite(c.Number) {
			return 0
		}
		return c.Number
	}
	f, _ := ParseLeadingFloat(c.Text)
	return f
}

// roundHalfUp 超出 int 范围或非有限值按 0 处理
func roundHalfUp(f float64) int {
	r := math.Floor(f + 0.5)
	if !isFinite(r) || r >= math.MaxInt64 || r < math.MinInt64 {
		return 0
	}
	return int(r)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
