package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	memberService service.MemberService
}

func NewMemberHandler(memberService service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

func (h *MemberHandler) RegisterRoutes(router *gin.RouterGroup) {
	members := router.Group("/api/members")
	members.Use(middleware.RequireRole("admin", "trustee", "clerk"))
	{
		members.GET("", h.ListMembers)
		members.POST("", h.CreateMember)
		members.GET("/:code", h.GetMember)
		members.PUT("/:code", h.UpdateMember)
		members.GET("/:code/tax-records", h.GetTaxRecords)
		members.POST("/:code/tax-payments", h.RecordTaxPayment)
	}

	// Deletion is reserved for admins
	admin := router.Group("/api/members")
	admin.Use(middleware.RequireRole("admin"))
	{
		admin.DELETE("/:code", h.DeleteMember)
	}
}

// ListMembers returns the trust's members with status/search filters
func (h *MemberHandler) ListMembers(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	params := pagination.Parse(c)
	members, total, err := h.memberService.ListMembers(c.Request.Context(), trustID,
		c.Query("status"), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, members, total, params.Page, params.Limit))
}

// CreateMember registers a new member of the trust
func (h *MemberHandler) CreateMember(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	var req service.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	member, err := h.memberService.CreateMember(c.Request.Context(), trustID, req, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, member))
}

// GetMember fetches a member by member code
func (h *MemberHandler) GetMember(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	member, err := h.memberService.GetMemberByCode(c.Request.Context(), trustID, c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, member))
}

// UpdateMember updates a member's profile, addressed by member code
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	var req service.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	// Resolve the code to the member's id first
	member, err := h.memberService.GetMemberByCode(c.Request.Context(), trustID, c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	updated, err := h.memberService.UpdateMember(c.Request.Context(), trustID, member.ID, req, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// DeleteMember soft deletes a member; tax history is retained
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	member, err := h.memberService.GetMemberByCode(c.Request.Context(), trustID, c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	if err := h.memberService.DeleteMember(c.Request.Context(), trustID, member.ID, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Member deleted successfully"))
}

// GetTaxRecords lists the member's tax records, oldest year first
func (h *MemberHandler) GetTaxRecords(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	records, err := h.memberService.GetMemberTaxRecords(c.Request.Context(), trustID, c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, records))
}

// RecordTaxPayment registers a payment against the member for a year
// @Summary      Record tax payment
// @Description  Registers a payment for (member, year); the first payment for a year creates the record
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code     path      string                           true  "Member Code"
// @Param        payload  body      service.RecordTaxPaymentRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=service.TaxRecordResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response  "Member not found"
// @Router       /api/members/{code}/tax-payments [post]
func (h *MemberHandler) RecordTaxPayment(c *gin.Context) {
	trustID, ok := middleware.GetTrustID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Trust not found in context"))
		return
	}

	var req service.RecordTaxPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	record, err := h.memberService.RecordTaxPayment(c.Request.Context(), trustID, c.Param("code"), req, middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}
