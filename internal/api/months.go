package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"jamlo/internal/model"
	"jamlo/internal/service/migrate"
)

const (
	viewAll      = "all"
	viewEditable = "editable"
	viewFuture   = "future"
)

type monthRow struct {
	Date  string                 `json:"date"`
	Cells map[string]model.Value `json:"cells"`
}

type monthResponse struct {
	Year     int        `json:"year"`
	Month    int        `json:"month"`
	View     string     `json:"view"`
	Group    string     `json:"group"`
	Today    string     `json:"today"`
	Columns  []string   `json:"columns"`
	Rows     []monthRow `json:"rows"`
	Warnings []string   `json:"warnings,omitempty"`
}

// EnsureYear 初始化某年 12 个月（从表格存储拉取）
// POST /api/years/:year/ensure
func (h *Handler) EnsureYear(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	warnings, err := h.session.EnsureYear(c.Request.Context(), year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "warnings": warnings})
}

// GetMonth 读取月表
// GET /api/months/:year/:month?view=all|editable|future&group=rooms&onlyMissing=true
func (h *Handler) GetMonth(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	view := c.DefaultQuery("view", viewAll)
	if view != viewAll && view != viewEditable && view != viewFuture {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nieznany widok: " + view})
		return
	}
	group := c.DefaultQuery("group", model.GroupAll)
	metrics, ok := model.GroupMetrics(group)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nieznana grupa: " + group})
		return
	}

	tbl, warnings, err := h.session.GetMonthTable(c.Request.Context(), year, month)
	if err != nil {
		writeError(c, err)
		return
	}
	switch view {
	case viewEditable:
		tbl, _ = h.session.SplitEditable(tbl)
	case viewFuture:
		_, tbl = h.session.SplitEditable(tbl)
	}
	if c.Query("onlyMissing") == "true" {
		tbl = model.FilterIncomplete(tbl, metrics)
	}

	columns := make([]string, 0, len(metrics)+len(tbl.Extra))
	for _, m := range metrics {
		columns = append(columns, m.Name())
	}
	withExtra := group == "" || group == model.GroupAll
	if withExtra {
		columns = append(columns, tbl.Extra...)
	}

	rows := make([]monthRow, len(tbl.Days))
	for i, d := range tbl.Days {
		cells := make(map[string]model.Value, len(columns))
		for _, m := range metrics {
			cells[m.Name()] = d.Get(m)
		}
		if withExtra {
			for _, col := range tbl.Extra {
				cells[col] = d.Extra[col]
			}
		}
		rows[i] = monthRow{Date: d.Date.Format(model.DateLayout), Cells: cells}
	}

	c.JSON(http.StatusOK, monthResponse{
		Year:     year,
		Month:    month,
		View:     view,
		Group:    group,
		Today:    h.session.Today().Format(model.DateLayout),
		Columns:  columns,
		Rows:     rows,
		Warnings: warnings,
	})
}

type saveMonthRequest struct {
	User string     `json:"user"`
	Rows []monthRow `json:"rows"`
}

type saveMonthResponse struct {
	Changes   model.ChangeSet    `json:"changes"`
	Conflicts []migrate.Conflict `json:"conflicts,omitempty"`
	Warnings  []string           `json:"warnings,omitempty"`
}

// SaveMonth 保存编辑的行；返回变更集
// PUT /api/months/:year/:month
func (h *Handler) SaveMonth(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	var req saveMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nieprawidłowe żądanie"})
		return
	}

	edit, err := editGrid(req.Rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.session.SaveMonth(c.Request.Context(), year, month, edit, req.User)
	if err != nil {
		writeError(c, err)
		return
	}
	changes := res.Changes
	if changes == nil {
		changes = model.ChangeSet{}
	}
	c.JSON(http.StatusOK, saveMonthResponse{Changes: changes, Conflicts: res.Conflicts, Warnings: res.Warnings})
}

// editGrid 请求行转表格；列为所有单元格键（排序）
func editGrid(rows []monthRow) (model.Grid, error) {
	seen := map[string]bool{}
	g := model.Grid{Rows: make([]model.GridRow, 0, len(rows))}
	for _, r := range rows {
		date, err := model.ParseDate(strings.TrimSpace(r.Date))
		if err != nil {
			return model.Grid{}, err
		}
		for k := range r.Cells {
			if !seen[k] {
				seen[k] = true
				g.Columns = append(g.Columns, k)
			}
		}
		g.Rows = append(g.Rows, model.GridRow{Date: date, Cells: r.Cells})
	}
	sort.Strings(g.Columns)
	return g, nil
}

// GetAudit 月份审计日志
// GET /api/months/:year/:month/audit?order=desc
func (h *Handler) GetAudit(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	entries, err := h.session.Audit(year, month)
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	if c.Query("order") == "desc" {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "month": month, "entries": entries})
}

// GetMissing 缺数日（客房净收入未录入或不大于 0）
// GET /api/months/:year/:month/missing
func (h *Handler) GetMissing(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	days, err := h.session.MissingDays(c.Request.Context(), year, month)
	if err != nil {
		writeError(c, err)
		return
	}
	dates := make([]string, len(days))
	for i, d := range days {
		dates[i] = d.Format(model.DateLayout)
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "month": month, "days": dates})
}
