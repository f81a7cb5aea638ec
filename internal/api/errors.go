package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jamlo/internal/model"
)

// RoleHeader 调用方角色；INV（投资人）只读
const (
	RoleHeader   = "X-Role"
	RoleInvestor = "INV"
)

// requireWriter 拒绝只读角色的写请求
func requireWriter(c *gin.Context) {
	if strings.EqualFold(strings.TrimSpace(c.GetHeader(RoleHeader)), RoleInvestor) {
		writeError(c, model.ErrReadOnly)
		c.Abort()
		return
	}
	c.Next()
}

// statusFor 错误到 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidMonth),
		errors.Is(err, model.ErrDateOutsideMonth),
		errors.Is(err, model.ErrDuplicateDate):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrReadOnly):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotInitialized):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNothingToExport):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// yearMonth 解析路径参数 :year 与 :month
func yearMonth(c *gin.Context) (int, int, bool) {
	year, ok := yearParam(c)
	if !ok {
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || model.ValidMonth(month) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nieprawidłowy miesiąc"})
		return 0, 0, false
	}
	return year, month, true
}

func yearParam(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1900 || year > 9999 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nieprawidłowy rok"})
		return 0, false
	}
	return year, true
}
