package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"tabledump/internal/service"
	"tabledump/pkg/common"
	"tabledump/pkg/json"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TableHandler struct {
	service *service.TableService
}

func NewTableHandler(service *service.TableService) *TableHandler {
	return &TableHandler{
		service: service,
	}
}

// ListTables 表列表
// GET /api/v1/tables
func (h *TableHandler) ListTables(c *gin.Context) {
	tables, err := h.service.ListTables(c.Request.Context())
	if err != nil {
		logrus.Errorf("list tables error: %v", err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(tables))
}

// GetTable 表内容
// GET /api/v1/tables/:name?limit=N
func (h *TableHandler) GetTable(c *gin.Context) {
	name := c.Param("name")

	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("invalid limit: %q", s)))
			return
		}
		limit = n
	}

	logrus.Debugf("table request: name=%s, limit=%d", name, limit)

	data, err := h.service.ReadTable(c.Request.Context(), name, limit)
	if err != nil {
		if service.IsNotFound(err) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		logrus.Errorf("read table %s error: %v", name, err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(json.RawMessage(data)))
}

// Stats 缓存统计
// GET /api/v1/stats
func (h *TableHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"cache": h.service.Stats(),
	}))
}
