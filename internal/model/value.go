package model

import (
	"encoding/json"
	"math"
	"strconv"

	"jamlo/internal/parser"
)

// Value 单元格数值：浮点数或“未录入”（unset）
//
// 未录入与 0 不同：求和时按 0 处理，比较时是独立的取值。
type Value struct {
	num float64
	set bool
}

// Unset 未录入
var Unset = Value{}

// Num 构造已录入数值（NaN/Inf 视为未录入）
func Num(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Unset
	}
	return Value{num: f, set: true}
}

// ParseValue 将用户录入的文本转换为数值，无法解析时返回未录入
func ParseValue(text string) Value {
	f, ok := parser.ParseNumber(text)
	if !ok {
		return Unset
	}
	return Num(f)
}

// IsSet 是否已录入
func (v Value) IsSet() bool { return v.set }

// Float 返回数值及是否已录入
func (v Value) Float() (float64, bool) { return v.num, v.set }

// OrZero 未录入按 0 返回（用于求和）
func (v Value) OrZero() float64 {
	if !v.set {
		return 0
	}
	return v.num
}

// Equal 比较两个值；未录入只与未录入相等
func (v Value) Equal(o Value) bool {
	if v.set != o.set {
		return false
	}
	return !v.set || v.num == o.num
}

func (v Value) String() string {
	if !v.set {
		return "unset"
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

// MarshalJSON 未录入编码为 null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.num)
}

// UnmarshalJSON 接受 null、数字与数字文本（如 "1 234,50"）
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Unset
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = Num(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = ParseValue(s)
	return nil
}
