package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"jamlo/internal/importer"
)

// Import 导入工作簿（SSE 进度）
// POST /api/import (multipart, 字段 file)
func (h *Handler) Import(c *gin.Context) {
	upload, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brak pliku w żądaniu"})
		return
	}
	file, err := upload.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "nie można odczytać pliku"})
		return
	}
	defer file.Close()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "strumieniowanie nieobsługiwane"})
		return
	}
	setSSEHeaders(c)

	progressChan := h.coordinator.Import(c.Request.Context(), importer.ImportOptions{
		Reader:   file,
		Filename: upload.Filename,
	})
	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}
