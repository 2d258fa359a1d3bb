package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) RegisterRoutes(router *gin.RouterGroup) {
	events := router.Group("/api/events")
	events.Use(middleware.RequireRole("admin", "trustee", "clerk"))
	{
		events.GET("", h.ListEvents)
	}

	manage := router.Group("/api/events")
	manage.Use(middleware.RequireRole("admin", "trustee"))
	{
		manage.POST("", h.CreateEvent)
		manage.PUT("/:id", h.UpdateEvent)
		manage.DELETE("/:id", h.DeleteEvent)
	}
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	params := pagination.Parse(c)
	events, total, err := h.eventService.ListEvents(c.Request.Context(), trustID, c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, events, total, params.Page, params.Limit))
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	var req service.SaveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), trustID, req, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, event))
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	var req service.SaveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), trustID, c.Param("id"), req, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, event))
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), trustID, c.Param("id"), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Event deleted successfully"))
}
