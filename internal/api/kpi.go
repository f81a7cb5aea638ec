package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jamlo/internal/service/calculator"
)

// GetKPI 月度与年初至今指标
// GET /api/kpi/:year/:month
func (h *Handler) GetKPI(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	summary, err := h.session.KPI(c.Request.Context(), year, month)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roundSummary(summary))
}

type roomsYearRow struct {
	Month int `json:"month"`
	calculator.RoomsKPI
}

// GetRoomsYear 全年客房指标矩阵
// GET /api/kpi/:year
func (h *Handler) GetRoomsYear(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	matrix, err := h.session.RoomsYear(c.Request.Context(), year)
	if err != nil {
		writeError(c, err)
		return
	}
	rows := make([]roomsYearRow, len(matrix))
	for i, k := range matrix {
		rows[i] = roomsYearRow{Month: i + 1, RoomsKPI: roundRooms(k)}
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "months": rows})
}
