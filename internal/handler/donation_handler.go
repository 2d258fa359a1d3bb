package handler

import (
	"fmt"
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DonationHandler struct {
	donationService service.DonationService
}

func NewDonationHandler(donationService service.DonationService) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

func (h *DonationHandler) RegisterRoutes(router *gin.RouterGroup) {
	donations := router.Group("/api/donations")
	donations.Use(middleware.RequireRole("admin", "trustee", "clerk"))
	{
		donations.GET("", h.ListDonations)
		donations.POST("", h.CreateDonation)
		donations.GET("/export", h.ExportDonations)
	}
}

// ListDonations returns the trust's donation ledger with optional filters
func (h *DonationHandler) ListDonations(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	params := pagination.Parse(c)
	donations, total, err := h.donationService.ListDonations(c.Request.Context(), trustID,
		c.Query("purpose"), from, to, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, donations, total, params.Page, params.Limit))
}

// CreateDonation records a donation and issues the receipt number
// @Summary      Record donation
// @Description  Records a donation in the trust's ledger and issues a sequential receipt number
// @Tags         donations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDonationRequest  true  "Donation Payload"
// @Success      201      {object}  response.Response{data=service.DonationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/donations [post]
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	var req service.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	donation, err := h.donationService.CreateDonation(c.Request.Context(), trustID, req, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, donation))
}

// ExportDonations streams the ledger for the period as a CSV attachment
func (h *DonationHandler) ExportDonations(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	filename := fmt.Sprintf("donations-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	if err := h.donationService.ExportCSV(c.Request.Context(), trustID, from, to, c.Writer); err != nil {
		// Headers may already be written; the best we can do is log-and-abort
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
}

// parseDateRange reads optional from/to query params as YYYY-MM-DD. The "to"
// bound is pushed to the end of its day so the range is inclusive.
func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error

	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date format (expected YYYY-MM-DD)")
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date format (expected YYYY-MM-DD)")
		}
		to = to.Add(24*time.Hour - time.Second)
	}
	return from, to, nil
}
