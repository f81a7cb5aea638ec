// Package audit 计算月表版本之间的变更，并将编辑合并到已存储的月表
package audit

import (
	"fmt"
	"sort"
	"time"

	"jamlo/internal/model"
	"jamlo/internal/service/migrate"
)

// Diff 比较两个版本的月表
//
// 按日期对齐；每个 (日期, 指标) 取值不同（未录入视为独立取值）即产生一条变更，
// 按日期、注册表顺序排列，未识别列排在规范指标之后。只存在于一侧的日期，
// 另一侧视为未录入。
func Diff(prev, next model.MonthTable) model.ChangeSet {
	oldDays := indexDays(prev)
	newDays := indexDays(next)

	dates := make([]time.Time, 0, len(newDays))
	seen := make(map[time.Time]bool, len(oldDays)+len(newDays))
	for _, days := range []map[time.Time]model.Day{oldDays, newDays} {
		for d := range days {
			if !seen[d] {
				seen[d] = true
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	extra := unionExtra(prev.Extra, next.Extra)

	var changes model.ChangeSet
	for _, date := range dates {
		before, after := oldDays[date], newDays[date]
		for m := 0; m < model.NumMetrics; m++ {
			if !before.Values[m].Equal(after.Values[m]) {
				changes = append(changes, model.Change{
					Date:   date,
					Metric: model.Metric(m).Name(),
					Old:    before.Values[m],
					New:    after.Values[m],
				})
			}
		}
		for _, col := range extra {
			if !before.Extra[col].Equal(after.Extra[col]) {
				changes = append(changes, model.Change{Date: date, Metric: col, Old: before.Extra[col], New: after.Extra[col]})
			}
		}
	}
	return changes
}

func indexDays(t model.MonthTable) map[time.Time]model.Day {
	out := make(map[time.Time]model.Day, len(t.Days))
	for _, d := range t.Days {
		out[model.TruncateDay(d.Date)] = d
	}
	return out
}

func unionExtra(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, c := range list {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// ValidateEdit 检查编辑行：日期必须属于该月且不重复
func ValidateEdit(g model.Grid, year, month int) error {
	seen := make(map[time.Time]bool, len(g.Rows))
	for _, row := range g.Rows {
		date := model.TruncateDay(row.Date)
		if !model.InMonth(date, year, month) {
			return fmt.Errorf("%w: %s not in %04d-%02d", model.ErrDateOutsideMonth, date.Format(model.DateLayout), year, month)
		}
		if seen[date] {
			return fmt.Errorf("%w: %s", model.ErrDuplicateDate, date.Format(model.DateLayout))
		}
		seen[date] = true
	}
	return nil
}

// Merge 将编辑表格覆盖到已存储月表
//
// 只覆盖编辑行自身带有的单元格（旧列按改名后的指标计）；其余行列保持原值。
// 显式的未录入单元格会清空原值。编辑中新出现的未识别列追加到 Extra。
// 调用前应先通过 ValidateEdit。
func Merge(stored model.MonthTable, edit model.Grid) (model.MonthTable, migrate.Report) {
	edited, report := migrate.Migrate(edit, stored.Year, stored.Month)
	out := migrate.Table(stored)

	known := make(map[string]bool, len(out.Extra))
	for _, c := range out.Extra {
		known[c] = true
	}
	for _, c := range edited.Extra {
		if !known[c] {
			known[c] = true
			out.Extra = append(out.Extra, c)
		}
	}

	columns := editColumns(edit)
	for _, row := range edit.Rows {
		src, ok := edited.DayIndex(row.Date)
		if !ok {
			continue
		}
		dst, ok := out.DayIndex(row.Date)
		if !ok {
			continue
		}
		for _, m := range report.Present {
			if rowSupplies(row, m, columns) {
				out.Days[dst].Values[m] = edited.Days[src].Values[m]
			}
		}
		for _, col := range edited.Extra {
			if _, ok := row.Cells[col]; !ok {
				continue
			}
			if out.Days[dst].Extra == nil {
				out.Days[dst].Extra = make(map[string]model.Value, len(edited.Extra))
			}
			out.Days[dst].Extra[col] = edited.Days[src].Extra[col]
		}
	}
	return out, report
}

// editColumns 编辑中出现过的全部列名（声明列与单元格键）
func editColumns(g model.Grid) map[string]bool {
	out := make(map[string]bool, len(g.Columns))
	for _, c := range g.Columns {
		out[c] = true
	}
	for _, row := range g.Rows {
		for c := range row.Cells {
			out[c] = true
		}
	}
	return out
}

// rowSupplies 该行是否自带指标 m 的单元格；规范列存在时旧列被丢弃
func rowSupplies(row model.GridRow, m model.Metric, columns map[string]bool) bool {
	name := m.Name()
	if _, ok := row.Cells[name]; ok {
		return true
	}
	if columns[name] {
		return false
	}
	legacy, ok := model.CanonicalToLegacy(name)
	if !ok {
		return false
	}
	_, ok = row.Cells[legacy]
	return ok
}
