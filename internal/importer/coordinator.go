package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"jamlo/internal/service/excel"
	"jamlo/internal/session"
)

// Coordinator 导入协调器：解析工作簿并载入会话
type Coordinator struct {
	session *session.Session
	parser  *excel.Parser
}

// NewCoordinator 创建导入协调器
func NewCoordinator(s *session.Session, loc *time.Location) *Coordinator {
	return &Coordinator{
		session: s,
		parser:  excel.NewParser(loc),
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath string    // 本地文件路径
	Reader   io.Reader // 上传流；非空时优先于 FilePath
	Filename string    // 展示用文件名
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/month/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Report 导入汇总
type Report struct {
	Filename string               `json:"filename"`
	Sheets   int                  `json:"sheets"`
	Skipped  []string             `json:"skipped,omitempty"`
	Result   session.ImportResult `json:"result"`
	Duration time.Duration        `json:"duration"`
}

// Import 执行导入，返回进度通道
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(ctx, opts, progressChan)
	}()

	return progressChan
}

func (c *Coordinator) doImport(ctx context.Context, opts ImportOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()
	name := opts.Filename
	if name == "" {
		name = filepath.Base(opts.FilePath)
	}

	c.sendProgress(progressChan, "start", "Rozpoczęto import skoroszytu", map[string]string{"filename": name})

	reader := opts.Reader
	if reader == nil {
		file, err := os.Open(opts.FilePath)
		if err != nil {
			c.sendProgress(progressChan, "error", fmt.Sprintf("Nie można otworzyć pliku: %v", err), nil)
			return
		}
		defer file.Close()
		reader = file
	}

	f, err := c.parser.Open(reader)
	if err != nil {
		c.sendProgress(progressChan, "error", fmt.Sprintf("Nie można odczytać skoroszytu: %v", err), nil)
		return
	}
	defer f.Close()

	sheets := f.GetSheetList()
	c.sendProgress(progressChan, "info", fmt.Sprintf("Znaleziono %d arkuszy", len(sheets)), map[string]interface{}{
		"total_sheets": len(sheets),
	})

	wb, err := c.parser.Parse(f)
	if err != nil {
		c.sendProgress(progressChan, "error", fmt.Sprintf("Błąd parsowania: %v", err), nil)
		return
	}
	for _, m := range wb.Months {
		rows := 0
		if m.Grid != nil {
			rows = len(m.Grid.Rows)
		}
		c.sendProgress(progressChan, "month", fmt.Sprintf("%04d-%02d: %d wierszy, %d wpisów audytu", m.Year, m.Month, rows, len(m.Audit)), map[string]int{
			"year":  m.Year,
			"month": m.Month,
			"rows":  rows,
			"audit": len(m.Audit),
		})
	}

	result, err := c.session.Import(ctx, wb.Months)
	if err != nil {
		c.sendProgress(progressChan, "error", fmt.Sprintf("Import nie powiódł się: %v", err), nil)
		return
	}

	report := &Report{
		Filename: name,
		Sheets:   len(sheets),
		Skipped:  wb.Skipped,
		Result:   result,
		Duration: time.Since(startTime),
	}
	log.Printf("[importer] %s: %d months in %s", name, result.Months, report.Duration)
	c.sendProgress(progressChan, "done", "Import zakończony", report)
}

// sendProgress 发送进度事件；中间事件非阻塞，done/error 必达
func (c *Coordinator) sendProgress(ch chan ProgressEvent, typ, msg string, data interface{}) {
	event := ProgressEvent{Type: typ, Message: msg, Data: data, Timestamp: time.Now()}
	if typ == "done" || typ == "error" {
		ch <- event
		return
	}
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
