package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"jamlo/internal/model"
	"jamlo/internal/parser"
)

const (
	// DateHeader 日期列表头
	DateHeader = "data"
	// AuditTimeLayout 审计时间格式
	AuditTimeLayout = "2006-01-02 15:04:05"

	defaultSheet = "Sheet1"
)

// AuditHeaders 审计表表头
var AuditHeaders = []string{"czas", "kto", "data", "kolumna", "stara", "nowa"}

// Exporter Excel导出器
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// ExportProgress 导出进度：按已写入的月表计
type ExportProgress struct {
	Stage string
	Sheet string // 刚写入的月表；准备与结束阶段为空
	Done  int
	Total int
}

// Percent 完成百分比
func (p ExportProgress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return p.Done * 100 / p.Total
}

func notify(progress func(ExportProgress), p ExportProgress) {
	if progress != nil {
		progress(p)
	}
}

type sheetStyles struct {
	header int
	date   int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("header style: %w", err)
	}
	dateFmt := "yyyy-mm-dd"
	date, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("date style: %w", err)
	}
	return sheetStyles{header: header, date: date}, nil
}

// ExportAll 导出会话中全部月表：每月一张 WYKONANIE_YYYY_MM，有审计记录的月份另加 AUDYT_YYYY_MM
func (e *Exporter) ExportAll(records []model.MonthRecord, progress func(ExportProgress)) (*excelize.File, error) {
	if len(records) == 0 {
		return nil, model.ErrNothingToExport
	}

	f := excelize.NewFile()
	styles, err := newSheetStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	total := len(records)
	notify(progress, ExportProgress{Stage: "Przygotowanie eksportu", Total: total})
	for i, rec := range records {
		sheet := parser.MonthSheetName(rec.Table.Year, rec.Table.Month)
		if _, err := f.NewSheet(sheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := writeGrid(f, sheet, rec.Table.Grid(), styles); err != nil {
			_ = f.Close()
			return nil, err
		}
		if len(rec.Audit) > 0 {
			if err := writeAudit(f, parser.AuditSheetName(rec.Table.Year, rec.Table.Month), rec.Audit, styles); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
		notify(progress, ExportProgress{Stage: "Zapis " + sheet, Sheet: sheet, Done: i + 1, Total: total})
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(0)
	notify(progress, ExportProgress{Stage: "Eksport zakończony", Done: total, Total: total})
	return f, nil
}

// writeGrid 写入月表：表头 data + 列名，未录入单元格留空
func writeGrid(f *excelize.File, sheet string, g model.Grid, styles sheetStyles) error {
	header := make([]interface{}, 0, len(g.Columns)+1)
	header = append(header, DateHeader)
	for _, c := range g.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header %s: %w", sheet, err)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(header), 1)
	_ = f.SetCellStyle(sheet, "A1", lastCol, styles.header)

	for i, row := range g.Rows {
		r := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetCellValue(sheet, cell, row.Date); err != nil {
			return fmt.Errorf("write date %s!%s: %w", sheet, cell, err)
		}
		for j, col := range g.Columns {
			v, ok := row.Cells[col].Float()
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+2, r)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	if len(g.Rows) > 0 {
		last, _ := excelize.CoordinatesToCellName(1, len(g.Rows)+1)
		_ = f.SetCellStyle(sheet, "A2", last, styles.date)
	}
	_ = f.SetColWidth(sheet, "A", "A", 12)
	return nil
}

// writeAudit 写入审计表（czas, kto, data, kolumna, stara, nowa）
func writeAudit(f *excelize.File, sheet string, entries []model.AuditEntry, styles sheetStyles) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	header := make([]interface{}, len(AuditHeaders))
	for i, h := range AuditHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header %s: %w", sheet, err)
	}
	_ = f.SetCellStyle(sheet, "A1", "F1", styles.header)

	for i, e := range entries {
		row := []interface{}{
			e.Time.Format(AuditTimeLayout),
			e.User,
			e.Date.Format(model.DateLayout),
			e.Metric,
			nil,
			nil,
		}
		if v, ok := e.Old.Float(); ok {
			row[4] = v
		}
		if v, ok := e.New.Float(); ok {
			row[5] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "D", "D", 36)
	return nil
}
