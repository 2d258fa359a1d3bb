package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type WeddingHandler struct {
	weddingService service.WeddingService
}

func NewWeddingHandler(weddingService service.WeddingService) *WeddingHandler {
	return &WeddingHandler{weddingService: weddingService}
}

func (h *WeddingHandler) RegisterRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/api/wedding-bookings")
	bookings.Use(middleware.RequireRole("admin", "trustee", "clerk"))
	{
		bookings.GET("", h.ListBookings)
		bookings.POST("", h.CreateBooking)
	}

	manage := router.Group("/api/wedding-bookings")
	manage.Use(middleware.RequireRole("admin", "trustee"))
	{
		manage.PATCH("/:id/status", h.UpdateBookingStatus)
	}
}

func (h *WeddingHandler) ListBookings(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	params := pagination.Parse(c)
	bookings, total, err := h.weddingService.ListBookings(c.Request.Context(), trustID, c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, bookings, total, params.Page, params.Limit))
}

// CreateBooking books the wedding hall for a date; one booking per day
func (h *WeddingHandler) CreateBooking(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	booking, err := h.weddingService.CreateBooking(c.Request.Context(), trustID, req, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, booking))
}

// UpdateBookingStatus moves a booking between lifecycle states
func (h *WeddingHandler) UpdateBookingStatus(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	var req service.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	booking, err := h.weddingService.UpdateBookingStatus(c.Request.Context(), trustID, c.Param("id"), req, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}
