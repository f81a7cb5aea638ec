package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber 解析用户录入的数值文本
//
// 支持 "18000"、"18 000,50"、"18 000.5"、"1.234,5" 等写法；空串、"nan"、"None" 等返回 false。
func ParseNumber(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	switch strings.ToLower(s) {
	case "", "nan", "none", "null", "-":
		return 0, false
	}

	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "'", "").Replace(s)

	// 同时出现 , 与 . 时，靠后的一个为小数点
	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}
	if strings.Count(s, ".") > 1 {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}
