package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/architect/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// parseDateQuery 解析 date 查询参数，缺省时取今天
func parseDateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return service.NormalizeDate(time.Now()), true
	}

	date, err := service.ParseDate(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return time.Time{}, false
	}
	return date, true
}

// parseDateField 解析请求体中的日期字段，缺省时取今天
func parseDateField(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return service.NormalizeDate(time.Now()), true
	}

	date, err := service.ParseDate(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return time.Time{}, false
	}
	return date, true
}
