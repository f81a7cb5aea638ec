package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jamlo/internal/model"
)

// GetStatus 会话状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Status())
}

type schemaMetric struct {
	model.MetricDef
	Prefix string `json:"prefix"`
}

type schemaResponse struct {
	Metrics   []schemaMetric    `json:"metrics"`
	Groups    []model.Group     `json:"groups"`
	LegacyMap map[string]string `json:"legacyMap"`
}

// GetSchema 规范列定义、分组与旧列名映射
// GET /api/schema
func (h *Handler) GetSchema(c *gin.Context) {
	defs := model.Definitions()
	metrics := make([]schemaMetric, len(defs))
	for i, d := range defs {
		metrics[i] = schemaMetric{MetricDef: d, Prefix: d.Prefix()}
	}
	c.JSON(http.StatusOK, schemaResponse{
		Metrics:   metrics,
		Groups:    model.Groups(),
		LegacyMap: model.LegacyMap(),
	})
}
