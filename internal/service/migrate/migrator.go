// Package migrate 将任意命名（旧列名 / 规范列名混用）的月表统一为规范结构
package migrate

import (
	"log"
	"sort"
	"time"

	"jamlo/internal/model"
)

// Conflict 旧列与规范列同时存在且取值不同（以规范列为准）
type Conflict struct {
	Date      time.Time   `json:"date"`
	Legacy    string      `json:"legacy"`
	Canonical string      `json:"canonical"`
	Discarded model.Value `json:"discarded"`
	Kept      model.Value `json:"kept"`
}

// Report 迁移报告
type Report struct {
	Year       int            `json:"year"`
	Month      int            `json:"month"`
	Renamed    []string       `json:"renamed,omitempty"` // 被改名的旧列
	Added      []string       `json:"added,omitempty"`   // 输入中缺失、补为未录入的规范列
	Conflicts  []Conflict     `json:"conflicts,omitempty"`
	OutOfMonth []time.Time    `json:"outOfMonth,omitempty"`
	Duplicates []time.Time    `json:"duplicates,omitempty"`
	Present    []model.Metric `json:"-"` // 输入中实际提供的规范指标
}

// HasIssues 是否存在需要提示的问题
func (r Report) HasIssues() bool {
	return len(r.Conflicts) > 0 || len(r.OutOfMonth) > 0 || len(r.Duplicates) > 0
}

type columnTarget struct {
	metric model.Metric
	legacy string
}

// Migrate 将动态表格转换为规范月表
//
// 规则：旧列改名为规范列（同名规范列已存在时以规范列为准并丢弃旧列）；
// 缺失的规范列补为未录入；未识别列保留；按日期升序，缺失的日历日补空行，
// 不属于该月的行丢弃并记录；重复日期以最后一行为准。
func Migrate(g model.Grid, year, month int) (model.MonthTable, Report) {
	report := Report{Year: year, Month: month}
	columns := gridColumns(g)

	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	targets := make(map[string]columnTarget)
	var discarded []columnTarget // 被规范列覆盖的旧列
	provided := make(map[model.Metric]bool)
	var extra []string

	for _, col := range columns {
		if m, ok := model.MetricByName(col); ok {
			targets[col] = columnTarget{metric: m}
			provided[m] = true
			continue
		}
		if canonical, ok := model.LegacyToCanonical(col); ok {
			m, _ := model.MetricByName(canonical)
			if present[canonical] {
				discarded = append(discarded, columnTarget{metric: m, legacy: col})
				continue
			}
			targets[col] = columnTarget{metric: m, legacy: col}
			provided[m] = true
			report.Renamed = append(report.Renamed, col)
			continue
		}
		extra = append(extra, col)
	}

	for _, m := range model.Metrics() {
		if provided[m] {
			report.Present = append(report.Present, m)
		} else {
			report.Added = append(report.Added, m.Name())
		}
	}

	table := model.NewMonthTable(year, month)
	if len(extra) > 0 {
		table.Extra = extra
	}
	seen := make(map[int]bool, len(g.Rows))

	for _, row := range g.Rows {
		date := model.TruncateDay(row.Date)
		if !model.InMonth(date, year, month) {
			report.OutOfMonth = append(report.OutOfMonth, date)
			continue
		}
		idx := date.Day() - 1
		if seen[idx] {
			report.Duplicates = append(report.Duplicates, date)
		}
		seen[idx] = true

		day := model.Day{Date: table.Days[idx].Date}
		for col, v := range row.Cells {
			if target, ok := targets[col]; ok {
				day.Values[target.metric] = v
			}
		}
		for _, col := range extra {
			if v, ok := row.Cells[col]; ok {
				if day.Extra == nil {
					day.Extra = make(map[string]model.Value, len(extra))
				}
				day.Extra[col] = v
			}
		}
		for _, d := range discarded {
			legacyValue := row.Cells[d.legacy]
			if legacyValue.IsSet() && !legacyValue.Equal(day.Values[d.metric]) {
				report.Conflicts = append(report.Conflicts, Conflict{
					Date:      date,
					Legacy:    d.legacy,
					Canonical: d.metric.Name(),
					Discarded: legacyValue,
					Kept:      day.Values[d.metric],
				})
			}
		}
		table.Days[idx] = day
	}

	if report.HasIssues() {
		log.Printf("[migrate] %04d-%02d: %d conflicts, %d rows outside month, %d duplicate dates",
			year, month, len(report.Conflicts), len(report.OutOfMonth), len(report.Duplicates))
	}
	return table, report
}

// Table 重新迁移已有月表（幂等）
func Table(t model.MonthTable) model.MonthTable {
	out, _ := Migrate(t.Grid(), t.Year, t.Month)
	return out
}

// gridColumns 列顺序：声明的列在前，只出现在单元格中的列按名称排序追加
func gridColumns(g model.Grid) []string {
	seen := make(map[string]bool, len(g.Columns))
	var out []string
	for _, c := range g.Columns {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	var undeclared []string
	for _, row := range g.Rows {
		for c := range row.Cells {
			if c != "" && !seen[c] {
				seen[c] = true
				undeclared = append(undeclared, c)
			}
		}
	}
	sort.Strings(undeclared)
	return append(out, undeclared...)
}

// AuditEntries 将审计条目中的旧列名改为规范名称，返回改名条数
func AuditEntries(entries []model.AuditEntry) ([]model.AuditEntry, int) {
	out := make([]model.AuditEntry, len(entries))
	renamed := 0
	for i, e := range entries {
		if canonical, ok := model.LegacyToCanonical(e.Metric); ok {
			e.Metric = canonical
			renamed++
		}
		out[i] = e
	}
	return out, renamed
}
