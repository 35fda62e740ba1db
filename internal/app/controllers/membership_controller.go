package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/app/models/dto"
	"github.com/yigit/orghub/internal/app/services"
	"github.com/yigit/orghub/internal/middleware"
	"github.com/yigit/orghub/internal/pkg/metrics"
)

// MembershipController handles the members and applicants tables
type MembershipController struct {
	membershipService *services.MembershipService
	metrics           *metrics.Metrics
	logger            zerolog.Logger
}

// NewMembershipController creates a new MembershipController
func NewMembershipController(membershipService *services.MembershipService, m *metrics.Metrics, logger zerolog.Logger) *MembershipController {
	return &MembershipController{
		membershipService: membershipService,
		metrics:           m,
		logger:            logger,
	}
}

// respondAction writes the outcome of a table action
func (c *MembershipController) respondAction(ctx *gin.Context, action string, result *dto.ActionResult, err error) {
	if err != nil {
		c.metrics.TableAction(action, "error")
		middleware.HandleAPIError(ctx, err)
		return
	}

	if !result.Applied {
		c.metrics.TableAction(action, "stale")
		ctx.JSON(http.StatusOK, dto.NewMessageResponse(result, "The selected row no longer exists; nothing was changed"))
		return
	}

	c.metrics.TableAction(action, "applied")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// confirmed reports whether the body or the ?confirm query parameter confirms the action
func confirmed(ctx *gin.Context, bodyConfirm bool) bool {
	if bodyConfirm {
		return true
	}
	confirm, _ := strconv.ParseBool(ctx.Query("confirm"))
	return confirm
}

// ListMembers returns the members table
// @Summary List members
// @Description Members filtered by a case-insensitive substring of any column. Rows are 0-based positions in this filtered listing.
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param search query string false "Search text"
// @Success 200 {object} dto.APIResponse{data=dto.MemberListResponse} "Members retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{id}/members [get]
func (c *MembershipController) ListMembers(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	list, err := c.membershipService.ListMembers(ctx.Request.Context(), principal, id, ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// ListApplicants returns the applicants table
// @Summary List applicants
// @Description Applicants filtered by a case-insensitive substring of any column. Managers only.
// @Tags applicants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param search query string false "Search text"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicantListResponse} "Applicants retrieved successfully"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{id}/applicants [get]
func (c *MembershipController) ListApplicants(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	list, err := c.membershipService.ListApplicants(ctx.Request.Context(), principal, id, ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// EditMemberRow changes the position of the member shown at a row
// @Summary Edit member position by row
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param row path int true "0-based row in the listing filtered by search"
// @Param request body dto.EditMemberRowRequest true "Search the row was taken from and the new position"
// @Success 200 {object} dto.APIResponse{data=dto.ActionResult} "applied=false when the row no longer exists"
// @Failure 400 {object} dto.ErrorResponse "Invalid position"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Router /organizations/{id}/member-rows/{row} [patch]
func (c *MembershipController) EditMemberRow(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}
	row, ok := rowParam(ctx)
	if !ok {
		return
	}

	var req dto.EditMemberRowRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.membershipService.EditMemberRow(ctx.Request.Context(), principal, id, row, req.Search, req.Position)
	c.respondAction(ctx, services.ActionEdit, result, err)
}

// KickMemberRow removes the member shown at a row
// @Summary Kick member by row
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param row path int true "0-based row in the listing filtered by search"
// @Param request body dto.RowActionRequest true "Search the row was taken from; confirm must be true"
// @Success 200 {object} dto.APIResponse{data=dto.ActionResult} "applied=false when the row no longer exists"
// @Failure 400 {object} dto.ErrorResponse "Confirmation required"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Router /organizations/{id}/member-rows/{row}/kick [post]
func (c *MembershipController) KickMemberRow(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}
	row, ok := rowParam(ctx)
	if !ok {
		return
	}

	var req dto.RowActionRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	result, err := c.membershipService.KickMemberRow(ctx.Request.Context(), principal, id, row, req.Search, confirmed(ctx, req.Confirm))
	c.respondAction(ctx, services.ActionKick, result, err)
}

// EditMember changes the position of a member by id
// @Summary Edit member position
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param memberId path string true "Member ID"
// @Param request body dto.EditMemberRequest true "New position"
// @Success 200 {object} dto.APIResponse{data=dto.ActionResult} "Member updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid position"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Member not found"
// @Router /organizations/{id}/members/{memberId} [patch]
func (c *MembershipController) EditMember(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	var req dto.EditMemberRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.membershipService.EditMember(ctx.Request.Context(), principal, id, ctx.Param("memberId"), req.Position)
	c.respondAction(ctx, services.ActionEdit, result, err)
}

// KickMember removes a member by id
// @Summary Kick member
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param memberId path string true "Member ID"
// @Param confirm query bool false "Must be true unless the body confirms"
// @Success 200 {object} dto.APIResponse{data=dto.ActionResult} "Member removed"
// @Failure 400 {object} dto.ErrorResponse "Confirmation required"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Member not found"
// @Router /organizations/{id}/members/{memberId} [delete]
func (c *MembershipController) KickMember(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	var req dto.ConfirmRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	result, err := c.membershipService.KickMember(ctx.Request.Context(), principal, id, ctx.Param("memberId"), confirmed(ctx, req.Confirm))
	c.respondAction(ctx, services.ActionKick, result, err)
}

// AcceptApplicantRow accepts the applicant shown at a row
// @Summary Accept applicant by row
// @Description Removes the applicant and appends an Active member joined today
// @Tags applicants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param row path int true "0-based row in the listing filtered by search"
// @Param request body dto.RowActionRequest true "Search the row was taken from; confirm must be true"
// @Success 200 {object} dto.APIResponse{data=dto.ActionResult} "applied=false when the row no longer exists"
// @Failure 400 {object} dto.ErrorResponse "Confirmation required"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Router /organizations/{id}/applicant-rows/{row}/accept [post]
func (c *MembershipController) AcceptApplicantRow(ctx *gin.Context) {
	c.applicantRowAction(ctx, services.ActionAccept, c.membershipService.AcceptApplicantRow)
}

// DeclineApplicantRow declines the applicant shown at a row
// @Summary Decline applicant by row
// @Tags applicants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param row path int true "0-based row in the listing filtered by search"
// @Param request body dto.RowActionRequest true "Search the row was taken from; confirm must be true"
// @Success 200 {object} dto.APIResponse{data=dto.ActionResult} "applied=false when the row no longer exists"
// @Failure 400 {object} dto.ErrorResponse "Confirmation required"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Router /organizations/{id}/applicant-rows/{row}/decline [post]
func (c *MembershipController) DeclineApplicantRow(ctx *gin.Context) {
	c.applicantRowAction(ctx, services.ActionDecline, c.membershipService.DeclineApplicantRow)
}

type applicantRowFn func(ctx context.Context, principal models.Principal, orgID int64, row int, search string, confirm bool) (*dto.ActionResult, error)

func (c *MembershipController) applicantRowAction(ctx *gin.Context, action string, fn applicantRowFn) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}
	row, ok := rowParam(ctx)
	if !ok {
		return
	}

	var req dto.RowActionRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	result, err := fn(ctx.Request.Context(), principal, id, row, req.Search, confirmed(ctx, req.Confirm))
	c.respondAction(ctx, action, result, err)
}

// AcceptApplicant accepts an applicant by id
// @Summary Accept applicant
// @Tags applicants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param applicantId path string true "Applicant ID"
// @Param request body dto.ConfirmRequest true "confirm must be true"
// @Success 200 {object} dto.APIResponse{data=dto.ActionResult} "Applicant accepted"
// @Failure 400 {object} dto.ErrorResponse "Confirmation required"
// @Failure 404 {object} dto.ErrorResponse "Applicant not found"
// @Router /organizations/{id}/applicants/{applicantId}/accept [post]
func (c *MembershipController) AcceptApplicant(ctx *gin.Context) {
	c.applicantAction(ctx, services.ActionAccept, c.membershipService.AcceptApplicant)
}

// DeclineApplicant declines an applicant by id
// @Summary Decline applicant
// @Tags applicants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param applicantId path string true "Applicant ID"
// @Param request body dto.ConfirmRequest true "confirm must be true"
// @Success 200 {object} dto.APIResponse{data=dto.ActionResult} "Applicant declined"
// @Failure 400 {object} dto.ErrorResponse "Confirmation required"
// @Failure 404 {object} dto.ErrorResponse "Applicant not found"
// @Router /organizations/{id}/applicants/{applicantId}/decline [post]
func (c *MembershipController) DeclineApplicant(ctx *gin.Context) {
	c.applicantAction(ctx, services.ActionDecline, c.membershipService.DeclineApplicant)
}

type applicantFn func(ctx context.Context, principal models.Principal, orgID int64, applicantID string, confirm bool) (*dto.ActionResult, error)

func (c *MembershipController) applicantAction(ctx *gin.Context, action string, fn applicantFn) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	var req dto.ConfirmRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	result, err := fn(ctx.Request.Context(), principal, id, ctx.Param("applicantId"), confirmed(ctx, req.Confirm))
	c.respondAction(ctx, action, result, err)
}

// Apply submits the caller's application
// @Summary Apply to an organization
// @Description Students who are not yet members or applicants may apply
// @Tags applicants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization or branch ID"
// @Param request body dto.ApplyRequest false "Desired position, Member by default"
// @Success 201 {object} dto.APIResponse{data=dto.ActionResult} "Application submitted"
// @Failure 403 {object} dto.ErrorResponse "Faculty cannot apply"
// @Failure 409 {object} dto.ErrorResponse "Already a member or applicant"
// @Router /organizations/{id}/applications [post]
func (c *MembershipController) Apply(ctx *gin.Context) {
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := organizationIDParam(ctx)
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	result, err := c.membershipService.Apply(ctx.Request.Context(), principal, id, req.Position)
	if err != nil {
		c.metrics.TableAction(services.ActionApply, "error")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.metrics.TableAction(services.ActionApply, "applied")
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(result, "Application submitted"))
}
