package model

import "time"

// SplitEditable 按参考日拆分：date <= ref 为可编辑部分，date > ref 为未来部分
//
// 两部分保持原有顺序与列，合并后即为原表。
func SplitEditable(t MonthTable, ref time.Time) (editable, future MonthTable) {
	ref = TruncateDay(ref)
	editable = MonthTable{Year: t.Year, Month: t.Month, Extra: append([]string(nil), t.Extra...)}
	future = MonthTable{Year: t.Year, Month: t.Month, Extra: append([]string(nil), t.Extra...)}
	for _, d := range t.Days {
		if d.Date.After(ref) {
			future.Days = append(future.Days, d.clone())
		} else {
			editable.Days = append(editable.Days, d.clone())
		}
	}
	return editable, future
}

// MissingDays 缺数日：客房收入未录入或 <= 0
func MissingDays(t MonthTable) []time.Time {
	var out []time.Time
	for _, d := range t.Days {
		if d.Values[RoomsNetRevenuePLN].OrZero() <= 0 {
			out = append(out, d.Date)
		}
	}
	return out
}

// FilterIncomplete 只保留给定指标中存在未录入或为 0 的行
func FilterIncomplete(t MonthTable, metrics []Metric) MonthTable {
	out := MonthTable{Year: t.Year, Month: t.Month, Extra: append([]string(nil), t.Extra...)}
	for _, d := range t.Days {
		for _, m := range metrics {
			if d.Values[m].OrZero() == 0 {
				out.Days = append(out.Days, d.clone())
				break
			}
		}
	}
	return out
}
