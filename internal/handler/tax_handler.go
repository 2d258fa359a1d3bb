package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxHandler struct {
	taxService service.TaxService
}

func NewTaxHandler(taxService service.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

func (h *TaxHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/api/tax-settings")
	settings.Use(middleware.RequireRole("admin", "trustee", "clerk"))
	{
		settings.GET("", h.ListTaxSettings)
		settings.GET("/active", h.GetActiveSetting)
	}

	manage := router.Group("/api/tax-settings")
	manage.Use(middleware.RequireRole("admin", "trustee"))
	{
		manage.POST("", h.SaveTaxSetting)
		manage.DELETE("/:id", h.DeleteTaxSetting)
		manage.POST("/bulk-include-previous-years", h.BulkIncludePreviousYears)
	}

	// Liability report lives under the member resource
	router.GET("/api/members/:code/liability",
		middleware.RequireRole("admin", "trustee", "clerk"), h.GetLiability)
}

// ListTaxSettings returns the trust's tax settings, newest year first
func (h *TaxHandler) ListTaxSettings(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	params := pagination.Parse(c)
	settings, total, err := h.taxService.GetTaxSettings(c.Request.Context(), trustID, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, settings, total, params.Page, params.Limit))
}

// GetActiveSetting returns the active setting for ?year=, or null when the
// year has no active setting
func (h *TaxHandler) GetActiveSetting(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().Year())))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "year must be an integer"))
		return
	}

	setting, err := h.taxService.GetActiveSetting(c.Request.Context(), trustID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, setting))
}

// SaveTaxSetting creates or updates the setting for a year
// @Summary      Save tax setting
// @Description  Creates the tax setting for a year, or updates it if the year is already configured
// @Tags         tax
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SaveTaxSettingRequest  true  "Tax Setting Payload"
// @Success      200      {object}  response.Response{data=service.TaxSettingResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tax-settings [post]
func (h *TaxHandler) SaveTaxSetting(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	var req service.SaveTaxSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	setting, err := h.taxService.SaveTaxSetting(c.Request.Context(), trustID, req, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, setting))
}

// DeleteTaxSetting removes a setting by id
func (h *TaxHandler) DeleteTaxSetting(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	if err := h.taxService.DeleteTaxSetting(c.Request.Context(), trustID, c.Param("id"), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Tax setting deleted successfully"))
}

// BulkIncludePreviousYears toggles the backdating flag on every setting of
// the trust at once
func (h *TaxHandler) BulkIncludePreviousYears(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	var req service.BulkIncludePreviousYearsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.taxService.BulkSetIncludePreviousYears(c.Request.Context(), trustID, *req.IncludePreviousYears, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetLiability computes a member's cumulative tax liability
// @Summary      Get member liability
// @Description  Computes the member's cumulative outstanding tax, current year tax and per-year breakdown
// @Tags         tax
// @Produce      json
// @Security     BearerAuth
// @Param        code            path      string  true   "Member Code"
// @Param        reference_year  query     string  false  "Reference year (defaults to the current year)"
// @Success      200  {object}  response.Response{data=service.LiabilityReport}
// @Failure      400  {object}  response.Response  "Invalid reference year"
// @Failure      404  {object}  response.Response  "Member not found"
// @Router       /api/members/{code}/liability [get]
func (h *TaxHandler) GetLiability(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	referenceYear := c.DefaultQuery("reference_year", strconv.Itoa(time.Now().Year()))

	report, err := h.taxService.ComputeCumulativeLiability(c.Request.Context(), trustID, c.Param("code"), referenceYear)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidReferenceYear):
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		case errors.Is(err, service.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
