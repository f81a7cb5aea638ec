package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// SheetKind 工作表类型
type SheetKind int

const (
	SheetUnknown SheetKind = iota
	SheetMonth             // WYKONANIE_YYYY_MM
	SheetAudit             // AUDYT_YYYY_MM
)

const (
	MonthSheetPrefix = "WYKONANIE"
	AuditSheetPrefix = "AUDYT"

	// MaxSheetNameLen Excel 工作表名长度上限
	MaxSheetNameLen = 31
)

var sheetNameRe = regexp.MustCompile(`^(WYKONANIE|AUDYT)_(\d{4})_0?(\d{1,2})$`)

// MonthSheetName 月数据表名
func MonthSheetName(year, month int) string {
	return truncateSheetName(fmt.Sprintf("%s_%d_%02d", MonthSheetPrefix, year, month))
}

// AuditSheetName 审计日志表名
func AuditSheetName(year, month int) string {
	return truncateSheetName(fmt.Sprintf("%s_%d_%02d", AuditSheetPrefix, year, month))
}

func truncateSheetName(name string) string {
	if len(name) > MaxSheetNameLen {
		return name[:MaxSheetNameLen]
	}
	return name
}

// ParseSheetName 从表名中提取类型与年月
// 支持格式: "WYKONANIE_2025_03" / "AUDYT_2025_3"
func ParseSheetName(name string) (kind SheetKind, year, month int, ok bool) {
	matches := sheetNameRe.FindStringSubmatch(strings.TrimSpace(name))
	if len(matches) < 4 {
		return SheetUnknown, 0, 0, false
	}
	year, _ = strconv.Atoi(matches[2])
	month, _ = strconv.Atoi(matches[3])
	if month < 1 || month > 12 {
		return SheetUnknown, 0, 0, false
	}
	kind = SheetMonth
	if matches[1] == AuditSheetPrefix {
		kind = SheetAudit
	}
	return kind, year, month, true
}

// NormalizeColumnName 规范化列名，去除空格和换行
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\n", "")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\t", "")
	return strings.Join(strings.Fields(name), "")
}

// IsDateColumn 是否为日期列（"data" 或 "date"）
func IsDateColumn(name string) bool {
	name = NormalizeColumnName(name)
	return strings.EqualFold(name, "data") || strings.EqualFold(name, "date")
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02.01.2006",
	"2006/01/02",
	"02-01-06",
}

// ParseCellDate 解析单元格日期：文本或 Excel 序列号
func ParseCellDate(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}
