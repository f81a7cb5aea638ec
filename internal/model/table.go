package model

import (
	"fmt"
	"time"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// Date 返回 UTC 零点的日期
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// TruncateDay 去掉时间部分，保留所在时区的日历日
func TruncateDay(t time.Time) time.Time {
	return Date(t.Year(), int(t.Month()), t.Day())
}

// ParseDate 解析 "2006-01-02"
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ValidMonth 检查月份
func ValidMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return nil
}

// DaysIn 返回某月全部日期（升序）
func DaysIn(year, month int) []time.Time {
	first := Date(year, month, 1)
	n := first.AddDate(0, 1, -1).Day()
	out := make([]time.Time, n)
	for i := range out {
		out[i] = first.AddDate(0, 0, i)
	}
	return out
}

// InMonth 日期是否属于该月
func InMonth(date time.Time, year, month int) bool {
	return date.Year() == year && int(date.Month()) == month
}

// Day 一天的全部指标
type Day struct {
	Date   time.Time
	Values [NumMetrics]Value
	Extra  map[string]Value // 未识别列
}

// Get 读取指标
func (d Day) Get(m Metric) Value { return d.Values[m] }

// Set 设置指标
func (d *Day) Set(m Metric, v Value) { d.Values[m] = v }

func (d Day) clone() Day {
	out := d
	if d.Extra != nil {
		out.Extra = make(map[string]Value, len(d.Extra))
		for k, v := range d.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// MonthTable 一个月的日表：每个日历日一行，按日期升序
type MonthTable struct {
	Year  int
	Month int
	Days  []Day
	Extra []string // 未识别列（保持原始顺序）
}

// NewMonthTable 创建全部指标未录入的月表
func NewMonthTable(year, month int) MonthTable {
	dates := DaysIn(year, month)
	t := MonthTable{Year: year, Month: month, Days: make([]Day, len(dates))}
	for i, d := range dates {
		t.Days[i].Date = d
	}
	return t
}

// Clone 深拷贝
func (t MonthTable) Clone() MonthTable {
	out := MonthTable{Year: t.Year, Month: t.Month}
	if t.Days != nil {
		out.Days = make([]Day, len(t.Days))
		for i, d := range t.Days {
			out.Days[i] = d.clone()
		}
	}
	if t.Extra != nil {
		out.Extra = append([]string(nil), t.Extra...)
	}
	return out
}

// DayIndex 按日期查找行
func (t MonthTable) DayIndex(date time.Time) (int, bool) {
	date = TruncateDay(date)
	for i, d := range t.Days {
		if d.Date.Equal(date) {
			return i, true
		}
	}
	return -1, false
}

// Column 某指标整列
func (t MonthTable) Column(m Metric) []Value {
	out := make([]Value, len(t.Days))
	for i, d := range t.Days {
		out[i] = d.Values[m]
	}
	return out
}

// Equal 内容完全相同（含未识别列）
func (t MonthTable) Equal(o MonthTable) bool {
	if t.Year != o.Year || t.Month != o.Month || len(t.Days) != len(o.Days) || len(t.Extra) != len(o.Extra) {
		return false
	}
	for i := range t.Extra {
		if t.Extra[i] != o.Extra[i] {
			return false
		}
	}
	for i := range t.Days {
		a, b := t.Days[i], o.Days[i]
		if !a.Date.Equal(b.Date) {
			return false
		}
		for m := range a.Values {
			if !a.Values[m].Equal(b.Values[m]) {
				return false
			}
		}
		for _, col := range t.Extra {
			if !a.Extra[col].Equal(b.Extra[col]) {
				return false
			}
		}
	}
	return true
}

// Grid 转换为动态列形式：规范列（注册表顺序）+ 未识别列
func (t MonthTable) Grid() Grid {
	g := Grid{Columns: append(CanonicalNames(), t.Extra...)}
	g.Rows = make([]GridRow, len(t.Days))
	for i, d := range t.Days {
		cells := make(map[string]Value, len(g.Columns))
		for m, v := range d.Values {
			cells[definitions[m].Name] = v
		}
		for _, col := range t.Extra {
			cells[col] = d.Extra[col]
		}
		g.Rows[i] = GridRow{Date: d.Date, Cells: cells}
	}
	return g
}

// Grid 动态列表格（导入、表格存储、编辑请求使用，列名可新可旧）
type Grid struct {
	Columns []string  `json:"columns"`
	Rows    []GridRow `json:"rows"`
}

// GridRow 一行
type GridRow struct {
	Date  time.Time        `json:"date"`
	Cells map[string]Value `json:"cells"`
}

// HasColumn 是否包含列
func (g Grid) HasColumn(name string) bool {
	for _, c := range g.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MonthRecord 一个月的数据与审计日志（导出用）
type MonthRecord struct {
	Table MonthTable
	Audit []AuditEntry
}

// ImportedMonth 从工作簿读到的一个月
type ImportedMonth struct {
	Year  int
	Month int
	Grid  *Grid // 无数据表时为 nil
	Audit []AuditEntry
}
