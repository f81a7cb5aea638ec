package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"jamlo/internal/service/excel"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	downloadTTL     = 10 * time.Minute
)

// exportFilename 导出文件名（按会话今天）
func exportFilename(today time.Time) string {
	return fmt.Sprintf("wykonanie-%s.xlsx", today.Format("2006-01-02"))
}

func buildExportContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", filename, url.PathEscape(filename))
}

// Export 导出整个会话为 xlsx 附件
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	records, err := h.session.Records()
	if err != nil {
		writeError(c, err)
		return
	}
	file, err := h.exporter.ExportAll(records, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", buildExportContentDisposition(exportFilename(h.session.Today())))
	c.Header("Content-Type", xlsxContentType)
	if err := file.Write(c.Writer); err != nil {
		log.Printf("[api] failed to write export: %v", err)
	}
}

type exportProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ExportStream 导出（SSE 进度 + 完成后提供一次性下载地址）
// POST /api/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
	records, err := h.session.Records()
	if err != nil {
		writeError(c, err)
		return
	}
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "strumieniowanie nieobsługiwane"})
		return
	}
	setSSEHeaders(c)

	send := func(typ, msg string, data interface{}) {
		b, err := json.Marshal(exportProgressEvent{Type: typ, Message: msg, Data: data, Timestamp: time.Now()})
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	send("start", "Rozpoczęto eksport", map[string]any{"months": len(records)})

	lastPercent := -1
	file, err := h.exporter.ExportAll(records, func(p excel.ExportProgress) {
		percent := p.Percent()
		if percent == lastPercent && p.Sheet == "" {
			return
		}
		lastPercent = percent
		send("progress", p.Stage, map[string]any{"percent": percent, "sheet": p.Sheet})
	})
	if err != nil {
		send("error", "Eksport nie powiódł się: "+err.Error(), map[string]any{})
		return
	}
	defer file.Close()

	dir := h.exportDir
	if dir == "" {
		dir = os.TempDir()
	}
	tempPath := filepath.Join(dir, fmt.Sprintf("jamlo_export_%d_%d.xlsx", time.Now().UnixNano(), os.Getpid()))
	if err := file.SaveAs(tempPath); err != nil {
		send("error", "Zapis pliku eksportu nie powiódł się: "+err.Error(), map[string]any{})
		_ = os.Remove(tempPath)
		return
	}

	token := h.downloads.put(tempPath, exportFilename(h.session.Today()), downloadTTL)
	send("done", "Eksport zakończony", map[string]any{
		"percent":     100,
		"downloadUrl": "/api/export/download/" + token,
	})
}

// DownloadExport 下载导出文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	item, ok := h.downloads.take(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "link do pobrania wygasł"})
		return
	}
	defer os.Remove(item.filePath)

	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plik eksportu nie istnieje"})
		return
	}
	c.Header("Content-Disposition", buildExportContentDisposition(item.filename))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)
}
