package excel

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"jamlo/internal/model"
	"jamlo/internal/parser"
)

// Workbook 解析结果
type Workbook struct {
	Months  []model.ImportedMonth
	Skipped []string // 无法识别的工作表
}

// Years 工作簿中出现的年份（升序）
func (w *Workbook) Years() []int {
	seen := map[int]bool{}
	var out []int
	for _, m := range w.Months {
		if !seen[m.Year] {
			seen[m.Year] = true
			out = append(out, m.Year)
		}
	}
	sort.Ints(out)
	return out
}

// Parser Excel解析器
type Parser struct {
	loc *time.Location
}

// NewParser 创建解析器；loc 用于解析审计时间
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{loc: loc}
}

// Open 从流中打开工作簿
func (p *Parser) Open(reader io.Reader) (*excelize.File, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return f, nil
}

// Parse 读取全部 WYKONANIE_/AUDYT_ 工作表，按 (年, 月) 升序返回
func (p *Parser) Parse(f *excelize.File) (*Workbook, error) {
	byKey := map[[2]int]*model.ImportedMonth{}
	wb := &Workbook{}

	get := func(year, month int) *model.ImportedMonth {
		k := [2]int{year, month}
		if m, ok := byKey[k]; ok {
			return m
		}
		m := &model.ImportedMonth{Year: year, Month: month}
		byKey[k] = m
		return m
	}

	for _, sheet := range f.GetSheetList() {
		kind, year, month, ok := parser.ParseSheetName(sheet)
		if !ok {
			wb.Skipped = append(wb.Skipped, sheet)
			continue
		}
		switch kind {
		case parser.SheetMonth:
			g, err := ReadGrid(f, sheet)
			if err != nil {
				return nil, err
			}
			get(year, month).Grid = g
		case parser.SheetAudit:
			entries, err := p.ReadAudit(f, sheet)
			if err != nil {
				return nil, err
			}
			m := get(year, month)
			m.Audit = append(m.Audit, entries...)
		}
	}

	for _, m := range byKey {
		wb.Months = append(wb.Months, *m)
	}
	sort.Slice(wb.Months, func(i, j int) bool {
		if wb.Months[i].Year != wb.Months[j].Year {
			return wb.Months[i].Year < wb.Months[j].Year
		}
		return wb.Months[i].Month < wb.Months[j].Month
	})
	return wb, nil
}

// ReadGrid 读取月表工作表：第一行为表头，日期列为 data/date，非数值单元格视为未录入
func ReadGrid(f *excelize.File, sheet string) (*model.Grid, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	g := &model.Grid{}
	if len(rows) == 0 {
		return g, nil
	}

	dateIdx := -1
	colIdx := map[int]string{}
	for i, h := range rows[0] {
		name := parser.NormalizeColumnName(h)
		if name == "" {
			continue
		}
		if dateIdx < 0 && parser.IsDateColumn(name) {
			dateIdx = i
			continue
		}
		if g.HasColumn(name) {
			continue
		}
		colIdx[i] = name
		g.Columns = append(g.Columns, name)
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("sheet %s has no date column", sheet)
	}

	for n, row := range rows[1:] {
		if dateIdx >= len(row) {
			continue
		}
		date, ok := parser.ParseCellDate(row[dateIdx])
		if !ok {
			if strings.TrimSpace(row[dateIdx]) != "" {
				log.Printf("[excel] %s row %d: unreadable date %q skipped", sheet, n+2, row[dateIdx])
			}
			continue
		}
		cells := make(map[string]model.Value, len(g.Columns))
		for i, name := range colIdx {
			if i < len(row) {
				cells[name] = model.ParseValue(row[i])
			} else {
				cells[name] = model.Unset
			}
		}
		g.Rows = append(g.Rows, model.GridRow{Date: date, Cells: cells})
	}
	return g, nil
}

// ReadAudit 读取审计工作表
func (p *Parser) ReadAudit(f *excelize.File, sheet string) ([]model.AuditEntry, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.ToLower(parser.NormalizeColumnName(h))] = i
	}
	for _, h := range AuditHeaders {
		if _, ok := idx[h]; !ok {
			return nil, fmt.Errorf("sheet %s: missing column %s", sheet, h)
		}
	}

	cell := func(row []string, name string) string {
		i := idx[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []model.AuditEntry
	for _, row := range rows[1:] {
		if cell(row, "kolumna") == "" {
			continue
		}
		e := model.AuditEntry{
			User:   cell(row, "kto"),
			Metric: cell(row, "kolumna"),
			Old:    model.ParseValue(cell(row, "stara")),
			New:    model.ParseValue(cell(row, "nowa")),
		}
		if ts, err := time.ParseInLocation(AuditTimeLayout, cell(row, "czas"), p.loc); err == nil {
			e.Time = ts
		}
		if d, ok := parser.ParseCellDate(cell(row, "data")); ok {
			e.Date = d
		}
		out = append(out, e)
	}
	return out, nil
}
