package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	logs := router.Group("/api/audit-logs")
	logs.Use(middleware.RequireRole("admin"))
	{
		logs.GET("", h.ListLogs)
	}
}

// ListLogs returns the caller's trust's audit entries, newest first,
// optionally filtered by action
func (h *AuditHandler) ListLogs(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	params := pagination.Parse(c)

	logs, total, err := h.auditService.ListLogs(c.Request.Context(), trustID, c.Query("action"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, params.Page, params.Limit))
}
