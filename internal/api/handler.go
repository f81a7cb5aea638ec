// Package api 会话的 HTTP 接口
package api

import (
	"github.com/gin-gonic/gin"

	"jamlo/internal/importer"
	"jamlo/internal/service/excel"
	"jamlo/internal/session"
)

// Handler API 处理器
type Handler struct {
	session     *session.Session
	coordinator *importer.Coordinator
	exporter    *excel.Exporter
	downloads   *exportDownloadStore
	exportDir   string
}

// NewHandler 创建 API 处理器；exportDir 为空时使用系统临时目录
func NewHandler(s *session.Session, coordinator *importer.Coordinator, exportDir string) *Handler {
	return &Handler{
		session:     s,
		coordinator: coordinator,
		exporter:    excel.NewExporter(),
		downloads:   newExportDownloadStore(),
		exportDir:   exportDir,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 会话状态与列定义
	router.GET("/status", h.GetStatus)
	router.GET("/schema", h.GetSchema)

	// 月表
	router.POST("/years/:year/ensure", h.EnsureYear)
	router.GET("/months/:year/:month", h.GetMonth)
	router.PUT("/months/:year/:month", requireWriter, h.SaveMonth)
	router.GET("/months/:year/:month/audit", h.GetAudit)
	router.GET("/months/:year/:month/missing", h.GetMissing)

	// 指标
	router.GET("/kpi/:year/:month", h.GetKPI)
	router.GET("/kpi/:year", h.GetRoomsYear)

	// 导入导出
	router.POST("/import", requireWriter, h.Import)
	router.POST("/export", h.Export)
	router.POST("/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)
}
